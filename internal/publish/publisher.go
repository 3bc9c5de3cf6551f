// Package publish applies a confirmed daily flavor list to the catalog and
// menu stores: creating new flavors, bumping appearance counters, and
// recomputing rarity. Publication is the only point where a flavor's stored
// rarity score is overwritten.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lucsky/cuid"
	"github.com/scooplog/scooplog/internal/models"
	"github.com/scooplog/scooplog/internal/rarity"
	"github.com/scooplog/scooplog/internal/repositories"
)

type Publisher struct {
	flavors repositories.FlavorRepository
	menus   repositories.MenuRepository

	// Clock supplies "now" for rarity computation; injectable for tests.
	Clock func() time.Time
	// Retries bounds per-flavor compare-and-swap attempts.
	Retries int
}

func NewPublisher(flavors repositories.FlavorRepository, menus repositories.MenuRepository) *Publisher {
	return &Publisher{
		flavors: flavors,
		menus:   menus,
		Clock:   time.Now,
		Retries: 3,
	}
}

// PublishedFlavor is one per-flavor outcome, shaped for the notification
// boundary: name plus the gap since the flavor was last seen.
type PublishedFlavor struct {
	FlavorID         string `json:"flavor_id"`
	Name             string `json:"name"`
	IsNew            bool   `json:"is_new"`
	AppearanceNumber int    `json:"appearance_number"`
	DaysSinceLast    *int   `json:"days_since_last,omitempty"`
}

type FailedFlavor struct {
	Name string
	Err  error
}

// Result reports a publication run. A single flavor's failure lands in
// Failed without disturbing the accounting of the others.
type Result struct {
	Date      time.Time
	Published []PublishedFlavor
	Failed    []FailedFlavor
	Entries   []*models.DailyMenuEntry
}

// RareCount returns how many published flavors had an appearance number at
// or below the cutoff, the externally chosen notion of "rare enough to
// announce".
func (r *Result) RareCount(maxAppearance int) int {
	n := 0
	for _, p := range r.Published {
		if p.AppearanceNumber <= maxAppearance {
			n++
		}
	}
	return n
}

// Publish applies the confirmed flavor list for a calendar date, in input
// order. Counter updates are idempotent per (flavor, date): a flavor that
// already has a menu entry for the date, from an earlier run or from an
// earlier line of the same batch, keeps its recorded appearance number
// instead of being incremented again, so republishing the same batch is
// safe and a duplicated line yields a single entry. The date's menu
// entries are replaced wholesale at the end.
func (p *Publisher) Publish(ctx context.Context, date time.Time, confirmed []models.ConfirmedFlavor) (*Result, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("menu date is unset: %w", models.ErrInvalidDate)
	}
	day := models.ToDate(date)
	result := &Result{Date: day}

	existing, err := p.menus.GetByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing entries for %s: %w", day.Format(time.DateOnly), err)
	}
	recorded := make(map[string]*models.DailyMenuEntry, len(existing))
	for _, entry := range existing {
		recorded[entry.FlavorID] = entry
	}

	appended := make(map[string]bool, len(confirmed))
	for _, cf := range confirmed {
		entry, published, err := p.publishOne(ctx, day, cf, recorded)
		if err != nil {
			log.Printf("publish %s: flavor %q failed: %v", day.Format(time.DateOnly), cf.Name, err)
			result.Failed = append(result.Failed, FailedFlavor{Name: cf.Name, Err: err})
			continue
		}
		// Later lines for the same flavor must see this entry's accounting.
		recorded[entry.FlavorID] = entry
		if appended[entry.FlavorID] {
			log.Printf("publish %s: flavor %q listed more than once, keeping the first entry", day.Format(time.DateOnly), cf.Name)
			continue
		}
		appended[entry.FlavorID] = true
		result.Entries = append(result.Entries, entry)
		result.Published = append(result.Published, published)
	}

	if err := p.menus.ReplaceForDate(ctx, day, result.Entries); err != nil {
		return result, fmt.Errorf("failed to replace menu entries for %s: %w", day.Format(time.DateOnly), err)
	}
	return result, nil
}

func (p *Publisher) publishOne(ctx context.Context, day time.Time, cf models.ConfirmedFlavor, recorded map[string]*models.DailyMenuEntry) (*models.DailyMenuEntry, PublishedFlavor, error) {
	rec, err := p.resolveFlavor(ctx, cf)
	if err != nil {
		return nil, PublishedFlavor{}, err
	}

	if rec == nil {
		return p.createNew(ctx, day, cf)
	}

	// Already recorded for this date: reuse the entry's accounting instead
	// of incrementing the counters a second time.
	if prior, ok := recorded[rec.ID]; ok {
		entry := &models.DailyMenuEntry{
			ID:               cuid.New(),
			FlavorID:         rec.ID,
			Date:             day,
			AppearanceNumber: prior.AppearanceNumber,
			DaysSinceLast:    prior.DaysSinceLast,
			SoldOutAt:        cf.SoldOutAt,
		}
		published := PublishedFlavor{
			FlavorID:         rec.ID,
			Name:             rec.Name,
			AppearanceNumber: prior.AppearanceNumber,
			DaysSinceLast:    prior.DaysSinceLast,
		}
		return entry, published, nil
	}

	return p.recordAppearance(ctx, day, cf, rec)
}

// resolveFlavor finds the catalog record a confirmed flavor refers to. A
// nil record with nil error means the flavor is genuinely new. Name lookup
// covers the case where a new flavor from an earlier run is republished
// without its assigned id.
func (p *Publisher) resolveFlavor(ctx context.Context, cf models.ConfirmedFlavor) (*models.FlavorRecord, error) {
	if cf.FlavorID != "" {
		return p.flavors.GetByID(ctx, cf.FlavorID)
	}
	rec, err := p.flavors.GetByName(ctx, cf.Name)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	return rec, err
}

func (p *Publisher) createNew(ctx context.Context, day time.Time, cf models.ConfirmedFlavor) (*models.DailyMenuEntry, PublishedFlavor, error) {
	lastAppeared := day
	rec := &models.FlavorRecord{
		ID:                 cuid.New(),
		Name:               cf.Name,
		FirstAppeared:      day,
		LastAppeared:       &lastAppeared,
		TotalAppearances:   1,
		TotalDaysAvailable: 1,
		// One data point is not a meaningful frequency; new flavors start
		// unclassified rather than computed.
		RarityScore: rarity.UnclassifiedScore,
	}
	if err := p.flavors.Create(ctx, rec); err != nil {
		return nil, PublishedFlavor{}, fmt.Errorf("failed to create flavor %q: %w", cf.Name, err)
	}

	entry := &models.DailyMenuEntry{
		ID:               cuid.New(),
		FlavorID:         rec.ID,
		Date:             day,
		AppearanceNumber: 1,
		SoldOutAt:        cf.SoldOutAt,
	}
	published := PublishedFlavor{
		FlavorID:         rec.ID,
		Name:             rec.Name,
		IsNew:            true,
		AppearanceNumber: 1,
	}
	return entry, published, nil
}

func (p *Publisher) recordAppearance(ctx context.Context, day time.Time, cf models.ConfirmedFlavor, rec *models.FlavorRecord) (*models.DailyMenuEntry, PublishedFlavor, error) {
	for attempt := 0; ; attempt++ {
		var daysSinceLast *int
		if rec.LastAppeared != nil {
			gap := models.DaysBetween(*rec.LastAppeared, day)
			daysSinceLast = &gap
		}

		updated := *rec
		updated.TotalAppearances = rec.TotalAppearances + 1
		updated.TotalDaysAvailable = rec.TotalDaysAvailable + 1
		lastAppeared := day
		updated.LastAppeared = &lastAppeared

		// Rarity is freshly derived from the post-increment counts.
		score, err := rarity.Score(&updated, p.Clock())
		if err != nil {
			return nil, PublishedFlavor{}, err
		}

		err = p.flavors.UpdateAppearance(ctx, rec.ID, rec.TotalAppearances, models.AppearanceUpdate{
			TotalAppearances:   updated.TotalAppearances,
			TotalDaysAvailable: updated.TotalDaysAvailable,
			LastAppeared:       day,
			RarityScore:        score,
		})
		if errors.Is(err, models.ErrConflict) && attempt < p.Retries {
			rec, err = p.flavors.GetByID(ctx, rec.ID)
			if err != nil {
				return nil, PublishedFlavor{}, err
			}
			continue
		}
		if err != nil {
			return nil, PublishedFlavor{}, err
		}

		entry := &models.DailyMenuEntry{
			ID:               cuid.New(),
			FlavorID:         rec.ID,
			Date:             day,
			AppearanceNumber: updated.TotalAppearances,
			DaysSinceLast:    daysSinceLast,
			SoldOutAt:        cf.SoldOutAt,
		}
		published := PublishedFlavor{
			FlavorID:         rec.ID,
			Name:             rec.Name,
			AppearanceNumber: updated.TotalAppearances,
			DaysSinceLast:    daysSinceLast,
		}
		return entry, published, nil
	}
}
