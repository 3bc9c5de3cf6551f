package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/scooplog/scooplog/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

type fakeFlavorRepo struct {
	flavors map[string]*models.FlavorRecord

	createErr     error
	conflictsLeft int
	updateCalls   int
}

func newFakeFlavorRepo() *fakeFlavorRepo {
	return &fakeFlavorRepo{flavors: make(map[string]*models.FlavorRecord)}
}

func (r *fakeFlavorRepo) BulkCreate(ctx context.Context, flavors []*models.FlavorRecord) error {
	for _, f := range flavors {
		dup := *f
		r.flavors[f.ID] = &dup
	}
	return nil
}

func (r *fakeFlavorRepo) Create(ctx context.Context, flavor *models.FlavorRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	dup := *flavor
	r.flavors[flavor.ID] = &dup
	return nil
}

func (r *fakeFlavorRepo) GetAll(ctx context.Context) ([]*models.FlavorRecord, error) {
	out := make([]*models.FlavorRecord, 0, len(r.flavors))
	for _, f := range r.flavors {
		dup := *f
		out = append(out, &dup)
	}
	return out, nil
}

func (r *fakeFlavorRepo) GetByID(ctx context.Context, id string) (*models.FlavorRecord, error) {
	f, ok := r.flavors[id]
	if !ok {
		return nil, fmt.Errorf("flavor %s: %w", id, models.ErrNotFound)
	}
	dup := *f
	return &dup, nil
}

func (r *fakeFlavorRepo) GetByName(ctx context.Context, name string) (*models.FlavorRecord, error) {
	for _, f := range r.flavors {
		if strings.EqualFold(f.Name, name) {
			dup := *f
			return &dup, nil
		}
	}
	return nil, fmt.Errorf("flavor %q: %w", name, models.ErrNotFound)
}

func (r *fakeFlavorRepo) UpdateAppearance(ctx context.Context, id string, expectedAppearances int, update models.AppearanceUpdate) error {
	r.updateCalls++
	f, ok := r.flavors[id]
	if !ok {
		return fmt.Errorf("flavor %s: %w", id, models.ErrNotFound)
	}
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		// Simulate a concurrent run winning the race.
		f.TotalAppearances++
		return fmt.Errorf("flavor %s: %w", id, models.ErrConflict)
	}
	if f.TotalAppearances != expectedAppearances {
		return fmt.Errorf("flavor %s: %w", id, models.ErrConflict)
	}
	f.TotalAppearances = update.TotalAppearances
	f.TotalDaysAvailable = update.TotalDaysAvailable
	last := update.LastAppeared
	f.LastAppeared = &last
	f.RarityScore = update.RarityScore
	return nil
}

func (r *fakeFlavorRepo) Count(ctx context.Context) (int, error) { return len(r.flavors), nil }
func (r *fakeFlavorRepo) DeleteAll(ctx context.Context) error {
	r.flavors = make(map[string]*models.FlavorRecord)
	return nil
}

type fakeMenuRepo struct {
	byDate     map[string][]*models.DailyMenuEntry
	replaceErr error
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{byDate: make(map[string][]*models.DailyMenuEntry)}
}

func (r *fakeMenuRepo) BulkCreate(ctx context.Context, entries []*models.DailyMenuEntry) error {
	for _, e := range entries {
		key := e.Date.Format(time.DateOnly)
		r.byDate[key] = append(r.byDate[key], e)
	}
	return nil
}

func (r *fakeMenuRepo) GetAll(ctx context.Context) ([]*models.DailyMenuEntry, error) {
	var out []*models.DailyMenuEntry
	for _, entries := range r.byDate {
		out = append(out, entries...)
	}
	return out, nil
}

func (r *fakeMenuRepo) GetByDate(ctx context.Context, date time.Time) ([]*models.DailyMenuEntry, error) {
	return r.byDate[models.ToDate(date).Format(time.DateOnly)], nil
}

func (r *fakeMenuRepo) ReplaceForDate(ctx context.Context, date time.Time, entries []*models.DailyMenuEntry) error {
	if r.replaceErr != nil {
		return r.replaceErr
	}
	r.byDate[models.ToDate(date).Format(time.DateOnly)] = entries
	return nil
}

func (r *fakeMenuRepo) Count(ctx context.Context) (int, error) {
	n := 0
	for _, entries := range r.byDate {
		n += len(entries)
	}
	return n, nil
}

func (r *fakeMenuRepo) DeleteAll(ctx context.Context) error {
	r.byDate = make(map[string][]*models.DailyMenuEntry)
	return nil
}

func newTestPublisher(flavors *fakeFlavorRepo, menus *fakeMenuRepo) *Publisher {
	p := NewPublisher(flavors, menus)
	p.Clock = func() time.Time { return testNow }
	return p
}

func TestPublishNewFlavor(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)

	date := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	result, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{
		{Name: "Ube Horchata"},
	})
	require.NoError(t, err)
	require.Len(t, result.Published, 1)
	require.Empty(t, result.Failed)

	published := result.Published[0]
	assert.True(t, published.IsNew)
	assert.Equal(t, 1, published.AppearanceNumber)
	assert.Nil(t, published.DaysSinceLast)

	rec, err := flavors.GetByID(context.Background(), published.FlavorID)
	require.NoError(t, err)
	assert.Equal(t, "Ube Horchata", rec.Name)
	assert.Equal(t, 1, rec.TotalAppearances)
	assert.Equal(t, 1, rec.TotalDaysAvailable)
	assert.Equal(t, date, rec.FirstAppeared)
	require.NotNil(t, rec.LastAppeared)
	assert.Equal(t, date, *rec.LastAppeared)
	assert.Equal(t, 5.0, rec.RarityScore)

	entries, err := menus.GetByDate(context.Background(), date)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].AppearanceNumber)
	assert.Nil(t, entries[0].DaysSinceLast)
	assert.Nil(t, entries[0].SoldOutAt)
}

func TestPublishExistingFlavor(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)

	date := models.ToDate(testNow)
	last := date.AddDate(0, 0, -30)
	first := date.AddDate(0, 0, -365)
	flavors.flavors["fl-1"] = &models.FlavorRecord{
		ID:                 "fl-1",
		Name:               "Black Sesame",
		FirstAppeared:      first,
		LastAppeared:       &last,
		TotalAppearances:   9,
		TotalDaysAvailable: 9,
		RarityScore:        4.0,
	}

	result, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{
		{Name: "Black Sesame", FlavorID: "fl-1"},
	})
	require.NoError(t, err)
	require.Len(t, result.Published, 1)

	published := result.Published[0]
	assert.False(t, published.IsNew)
	assert.Equal(t, 10, published.AppearanceNumber)
	require.NotNil(t, published.DaysSinceLast)
	assert.Equal(t, 30, *published.DaysSinceLast)

	rec, _ := flavors.GetByID(context.Background(), "fl-1")
	assert.Equal(t, 10, rec.TotalAppearances)
	assert.Equal(t, 10, rec.TotalDaysAvailable)
	assert.Equal(t, date, *rec.LastAppeared)
	// 10 appearances over 365 days is ten per year.
	assert.Equal(t, 4.0, rec.RarityScore)
}

func TestRepublishDoesNotDoubleIncrement(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)

	date := models.ToDate(testNow)
	first := date.AddDate(0, 0, -365)
	last := date.AddDate(0, 0, -7)
	flavors.flavors["fl-1"] = &models.FlavorRecord{
		ID:               "fl-1",
		Name:             "Matcha",
		FirstAppeared:    first,
		LastAppeared:     &last,
		TotalAppearances: 4, TotalDaysAvailable: 4,
	}
	batch := []models.ConfirmedFlavor{{Name: "Matcha", FlavorID: "fl-1"}}

	_, err := p.Publish(context.Background(), date, batch)
	require.NoError(t, err)
	result, err := p.Publish(context.Background(), date, batch)
	require.NoError(t, err)

	rec, _ := flavors.GetByID(context.Background(), "fl-1")
	assert.Equal(t, 5, rec.TotalAppearances, "second publish of the same date must not increment again")

	require.Len(t, result.Published, 1)
	assert.Equal(t, 5, result.Published[0].AppearanceNumber)
	require.NotNil(t, result.Published[0].DaysSinceLast)
	assert.Equal(t, 7, *result.Published[0].DaysSinceLast)

	entries, _ := menus.GetByDate(context.Background(), date)
	require.Len(t, entries, 1, "entries for the date are replaced, not appended")
}

func TestDuplicateLineInBatchCountsOnce(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)

	date := models.ToDate(testNow)
	first := date.AddDate(0, 0, -365)
	last := date.AddDate(0, 0, -7)
	flavors.flavors["fl-1"] = &models.FlavorRecord{
		ID:               "fl-1",
		Name:             "Matcha",
		FirstAppeared:    first,
		LastAppeared:     &last,
		TotalAppearances: 4, TotalDaysAvailable: 4,
	}

	result, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{
		{Name: "Matcha", FlavorID: "fl-1"},
		{Name: "Matcha", FlavorID: "fl-1"},
	})
	require.NoError(t, err)

	rec, _ := flavors.GetByID(context.Background(), "fl-1")
	assert.Equal(t, 5, rec.TotalAppearances, "a flavor listed twice in one batch must count once")

	require.Len(t, result.Entries, 1, "one menu entry per flavor and date")
	require.Len(t, result.Published, 1)
	assert.Equal(t, 5, result.Published[0].AppearanceNumber)

	entries, _ := menus.GetByDate(context.Background(), date)
	require.Len(t, entries, 1)
}

func TestDuplicateNewFlavorInBatchCreatedOnce(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)

	date := models.ToDate(testNow)
	result, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{
		{Name: "Thai Tea"},
		{Name: "Thai Tea"},
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)

	count, _ := flavors.Count(context.Background())
	assert.Equal(t, 1, count)
	rec, err := flavors.GetByName(context.Background(), "Thai Tea")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.TotalAppearances)
}

func TestRepublishResolvesNewFlavorsByName(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)

	date := models.ToDate(testNow)
	batch := []models.ConfirmedFlavor{{Name: "Thai Tea"}}

	_, err := p.Publish(context.Background(), date, batch)
	require.NoError(t, err)
	// Same batch again, still without an id for the (now created) flavor.
	_, err = p.Publish(context.Background(), date, batch)
	require.NoError(t, err)

	count, _ := flavors.Count(context.Background())
	assert.Equal(t, 1, count, "republish must not create a duplicate flavor")
}

func TestPublishPartialFailure(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)
	flavors.createErr = errors.New("disk full")

	date := models.ToDate(testNow)
	first := date.AddDate(0, 0, -100)
	flavors.flavors["fl-1"] = &models.FlavorRecord{
		ID: "fl-1", Name: "Espresso", FirstAppeared: first,
		TotalAppearances: 2, TotalDaysAvailable: 2,
	}

	result, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{
		{Name: "Brand New Thing"},
		{Name: "Espresso", FlavorID: "fl-1"},
	})
	require.NoError(t, err)

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Brand New Thing", result.Failed[0].Name)
	require.Len(t, result.Published, 1)
	assert.Equal(t, "Espresso", result.Published[0].Name)

	rec, _ := flavors.GetByID(context.Background(), "fl-1")
	assert.Equal(t, 3, rec.TotalAppearances, "one flavor's failure must not disturb the others")
}

func TestPublishRetriesOnConflict(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)
	flavors.conflictsLeft = 1

	date := models.ToDate(testNow)
	first := date.AddDate(0, 0, -200)
	flavors.flavors["fl-1"] = &models.FlavorRecord{
		ID: "fl-1", Name: "Pistachio", FirstAppeared: first,
		TotalAppearances: 5, TotalDaysAvailable: 5,
	}

	result, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{
		{Name: "Pistachio", FlavorID: "fl-1"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Failed)
	assert.Equal(t, 2, flavors.updateCalls)

	// The conflicting run bumped the counter to 6; ours lands on 7.
	rec, _ := flavors.GetByID(context.Background(), "fl-1")
	assert.Equal(t, 7, rec.TotalAppearances)
}

func TestPublishConflictExhaustsRetries(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)
	p.Retries = 2
	flavors.conflictsLeft = 10

	date := models.ToDate(testNow)
	first := date.AddDate(0, 0, -200)
	flavors.flavors["fl-1"] = &models.FlavorRecord{
		ID: "fl-1", Name: "Pistachio", FirstAppeared: first,
		TotalAppearances: 5, TotalDaysAvailable: 5,
	}

	result, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{
		{Name: "Pistachio", FlavorID: "fl-1"},
	})
	require.NoError(t, err)
	require.Len(t, result.Failed, 1)
	assert.ErrorIs(t, result.Failed[0].Err, models.ErrConflict)
}

func TestPublishSoldOutPassthrough(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)

	date := models.ToDate(testNow)
	soldOut := testNow.Add(-2 * time.Hour)
	result, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{
		{Name: "Mango", SoldOutAt: &soldOut},
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	require.NotNil(t, result.Entries[0].SoldOutAt)
	assert.Equal(t, soldOut, *result.Entries[0].SoldOutAt)
}

func TestPublishZeroDate(t *testing.T) {
	p := newTestPublisher(newFakeFlavorRepo(), newFakeMenuRepo())
	_, err := p.Publish(context.Background(), time.Time{}, nil)
	assert.ErrorIs(t, err, models.ErrInvalidDate)
}

func TestPublishEmptyBatchClearsDate(t *testing.T) {
	flavors := newFakeFlavorRepo()
	menus := newFakeMenuRepo()
	p := newTestPublisher(flavors, menus)

	date := models.ToDate(testNow)
	_, err := p.Publish(context.Background(), date, []models.ConfirmedFlavor{{Name: "Coconut"}})
	require.NoError(t, err)

	result, err := p.Publish(context.Background(), date, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Published)

	entries, _ := menus.GetByDate(context.Background(), date)
	assert.Empty(t, entries)
}

func TestRareCount(t *testing.T) {
	result := &Result{Published: []PublishedFlavor{
		{AppearanceNumber: 1},
		{AppearanceNumber: 5},
		{AppearanceNumber: 6},
		{AppearanceNumber: 40},
	}}
	assert.Equal(t, 2, result.RareCount(5))
	assert.Equal(t, 0, result.RareCount(0))
}
