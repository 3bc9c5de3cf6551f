package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scooplog/scooplog/internal/models"
)

type MenuRepository struct {
	pool *pgxpool.Pool
}

func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

func (r *MenuRepository) BulkCreate(ctx context.Context, entries []*models.DailyMenuEntry) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"daily_menu_entries"},
		[]string{
			"id", "flavor_id", "menu_date", "appearance_number",
			"days_since_last", "sold_out_at",
		},
		pgx.CopyFromSlice(len(entries), func(i int) ([]interface{}, error) {
			return []interface{}{
				entries[i].ID,
				entries[i].FlavorID,
				entries[i].Date,
				entries[i].AppearanceNumber,
				entries[i].DaysSinceLast,
				entries[i].SoldOutAt,
			}, nil
		}),
	)
	return err
}

func (r *MenuRepository) GetAll(ctx context.Context) ([]*models.DailyMenuEntry, error) {
	query := `
        SELECT id, flavor_id, menu_date, appearance_number, days_since_last, sold_out_at
        FROM daily_menu_entries
        ORDER BY menu_date, id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.DailyMenuEntry
	for rows.Next() {
		entry := &models.DailyMenuEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.FlavorID,
			&entry.Date,
			&entry.AppearanceNumber,
			&entry.DaysSinceLast,
			&entry.SoldOutAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *MenuRepository) GetByDate(ctx context.Context, date time.Time) ([]*models.DailyMenuEntry, error) {
	query := `
        SELECT id, flavor_id, menu_date, appearance_number, days_since_last, sold_out_at
        FROM daily_menu_entries
        WHERE menu_date = $1
        ORDER BY id
    `
	rows, err := r.pool.Query(ctx, query, models.ToDate(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.DailyMenuEntry
	for rows.Next() {
		entry := &models.DailyMenuEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.FlavorID,
			&entry.Date,
			&entry.AppearanceNumber,
			&entry.DaysSinceLast,
			&entry.SoldOutAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *MenuRepository) ReplaceForDate(ctx context.Context, date time.Time, entries []*models.DailyMenuEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	day := models.ToDate(date)
	if _, err := tx.Exec(ctx, `DELETE FROM daily_menu_entries WHERE menu_date = $1`, day); err != nil {
		return fmt.Errorf("failed to clear entries for %s: %w", day.Format(time.DateOnly), err)
	}

	for _, entry := range entries {
		_, err := tx.Exec(ctx, `
            INSERT INTO daily_menu_entries (
                id, flavor_id, menu_date, appearance_number, days_since_last, sold_out_at
            ) VALUES ($1, $2, $3, $4, $5, $6)
        `,
			entry.ID,
			entry.FlavorID,
			entry.Date,
			entry.AppearanceNumber,
			entry.DaysSinceLast,
			entry.SoldOutAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry for flavor %s: %w", entry.FlavorID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *MenuRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM daily_menu_entries").Scan(&count)
	return count, err
}

func (r *MenuRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE daily_menu_entries")
	return err
}
