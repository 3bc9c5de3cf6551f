package repositories

import (
	"context"
	"time"

	"github.com/scooplog/scooplog/internal/models"
)

type FlavorRepository interface {
	BulkCreate(ctx context.Context, flavors []*models.FlavorRecord) error
	Create(ctx context.Context, flavor *models.FlavorRecord) error
	GetAll(ctx context.Context) ([]*models.FlavorRecord, error)
	GetByID(ctx context.Context, id string) (*models.FlavorRecord, error)
	GetByName(ctx context.Context, name string) (*models.FlavorRecord, error)
	// UpdateAppearance applies the publication-time counter update only if
	// the flavor's total_appearances still equals expectedAppearances;
	// otherwise it returns models.ErrConflict so the caller can re-read and
	// retry.
	UpdateAppearance(ctx context.Context, id string, expectedAppearances int, update models.AppearanceUpdate) error
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type MenuRepository interface {
	BulkCreate(ctx context.Context, entries []*models.DailyMenuEntry) error
	GetAll(ctx context.Context) ([]*models.DailyMenuEntry, error)
	GetByDate(ctx context.Context, date time.Time) ([]*models.DailyMenuEntry, error)
	// ReplaceForDate discards any existing entries for the date and inserts
	// the new batch in a single transaction.
	ReplaceForDate(ctx context.Context, date time.Time, entries []*models.DailyMenuEntry) error
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
