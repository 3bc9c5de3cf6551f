package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/scooplog/scooplog/internal/models"
)

type FlavorRepository struct {
	pool *pgxpool.Pool
}

func NewFlavorRepository(pool *pgxpool.Pool) *FlavorRepository {
	return &FlavorRepository{pool: pool}
}

func (r *FlavorRepository) BulkCreate(ctx context.Context, flavors []*models.FlavorRecord) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"flavors"},
		[]string{
			"id", "name", "description", "category", "tags",
			"vegan", "gluten_free", "first_appeared", "last_appeared",
			"total_appearances", "total_days_available", "rarity_score",
		},
		pgx.CopyFromSlice(len(flavors), func(i int) ([]interface{}, error) {
			return []interface{}{
				flavors[i].ID,
				flavors[i].Name,
				flavors[i].Description,
				flavors[i].Category,
				flavors[i].Tags,
				flavors[i].Vegan,
				flavors[i].GlutenFree,
				flavors[i].FirstAppeared,
				flavors[i].LastAppeared,
				flavors[i].TotalAppearances,
				flavors[i].TotalDaysAvailable,
				flavors[i].RarityScore,
			}, nil
		}),
	)
	return err
}

func (r *FlavorRepository) Create(ctx context.Context, flavor *models.FlavorRecord) error {
	query := `
        INSERT INTO flavors (
            id, name, description, category, tags, vegan, gluten_free,
            first_appeared, last_appeared, total_appearances,
            total_days_available, rarity_score
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
        )
    `

	_, err := r.pool.Exec(ctx, query,
		flavor.ID,
		flavor.Name,
		flavor.Description,
		flavor.Category,
		flavor.Tags,
		flavor.Vegan,
		flavor.GlutenFree,
		flavor.FirstAppeared,
		flavor.LastAppeared,
		flavor.TotalAppearances,
		flavor.TotalDaysAvailable,
		flavor.RarityScore,
	)
	return err
}

const flavorColumns = `
        id, name, description, category, tags, vegan, gluten_free,
        first_appeared, last_appeared, total_appearances,
        total_days_available, rarity_score
`

func scanFlavor(row pgx.Row) (*models.FlavorRecord, error) {
	flavor := &models.FlavorRecord{}
	var lastAppeared *time.Time
	err := row.Scan(
		&flavor.ID,
		&flavor.Name,
		&flavor.Description,
		&flavor.Category,
		&flavor.Tags,
		&flavor.Vegan,
		&flavor.GlutenFree,
		&flavor.FirstAppeared,
		&lastAppeared,
		&flavor.TotalAppearances,
		&flavor.TotalDaysAvailable,
		&flavor.RarityScore,
	)
	if err != nil {
		return nil, err
	}
	flavor.LastAppeared = lastAppeared
	return flavor, nil
}

func (r *FlavorRepository) GetAll(ctx context.Context) ([]*models.FlavorRecord, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+flavorColumns+` FROM flavors ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flavors []*models.FlavorRecord
	for rows.Next() {
		flavor, err := scanFlavor(rows)
		if err != nil {
			return nil, err
		}
		flavors = append(flavors, flavor)
	}
	return flavors, rows.Err()
}

func (r *FlavorRepository) GetByID(ctx context.Context, id string) (*models.FlavorRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+flavorColumns+` FROM flavors WHERE id = $1`, id)
	flavor, err := scanFlavor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("flavor %s: %w", id, models.ErrNotFound)
	}
	return flavor, err
}

func (r *FlavorRepository) GetByName(ctx context.Context, name string) (*models.FlavorRecord, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+flavorColumns+` FROM flavors WHERE lower(name) = lower($1)`, name)
	flavor, err := scanFlavor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("flavor %q: %w", name, models.ErrNotFound)
	}
	return flavor, err
}

func (r *FlavorRepository) UpdateAppearance(ctx context.Context, id string, expectedAppearances int, update models.AppearanceUpdate) error {
	query := `
        UPDATE flavors
        SET
            total_appearances = $3,
            total_days_available = $4,
            last_appeared = $5,
            rarity_score = $6,
            updated_at = NOW()
        WHERE id = $1 AND total_appearances = $2
    `

	tag, err := r.pool.Exec(ctx, query,
		id,
		expectedAppearances,
		update.TotalAppearances,
		update.TotalDaysAvailable,
		update.LastAppeared,
		update.RarityScore,
	)
	if err != nil {
		return fmt.Errorf("failed to update appearance for flavor %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a lost race from a missing row.
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM flavors WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("flavor %s: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("flavor %s: %w", id, models.ErrConflict)
	}
	return nil
}

func (r *FlavorRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM flavors").Scan(&count)
	return count, err
}

func (r *FlavorRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE flavors CASCADE")
	return err
}
