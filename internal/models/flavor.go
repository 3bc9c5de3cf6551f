package models

import (
	"fmt"
	"time"
)

// FlavorRecord is one distinct flavor ever offered by the shop.
// FirstAppeared is immutable once set; the appearance counters only ever
// grow. RarityScore holds the value computed at the most recent
// publication, in [0, 10].
type FlavorRecord struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Tags               []string   `json:"tags"`
	Vegan              bool       `json:"vegan"`
	GlutenFree         bool       `json:"gluten_free"`
	FirstAppeared      time.Time  `json:"first_appeared"`
	LastAppeared       *time.Time `json:"last_appeared,omitempty"`
	TotalAppearances   int        `json:"total_appearances"`
	TotalDaysAvailable int        `json:"total_days_available"`
	RarityScore        float64    `json:"rarity_score"`
}

// Validate checks the date and counter invariants that the rarity and
// publication logic depend on. now bounds FirstAppeared.
func (f *FlavorRecord) Validate(now time.Time) error {
	if f.FirstAppeared.IsZero() {
		return fmt.Errorf("flavor %q: first_appeared is unset: %w", f.Name, ErrInvalidDate)
	}
	if ToDate(f.FirstAppeared).After(ToDate(now)) {
		return fmt.Errorf("flavor %q: first_appeared %s is in the future: %w",
			f.Name, f.FirstAppeared.Format(time.DateOnly), ErrInvalidDate)
	}
	if f.LastAppeared != nil && f.LastAppeared.Before(f.FirstAppeared) {
		return fmt.Errorf("flavor %q: last_appeared before first_appeared: %w", f.Name, ErrInvalidDate)
	}
	if f.TotalAppearances < 1 {
		return fmt.Errorf("flavor %q: total_appearances %d < 1: %w", f.Name, f.TotalAppearances, ErrInvalidDate)
	}
	return nil
}

// AppearanceUpdate carries the fields touched when a flavor appears on a
// published menu.
type AppearanceUpdate struct {
	TotalAppearances   int
	TotalDaysAvailable int
	LastAppeared       time.Time
	RarityScore        float64
}

// ToDate truncates a timestamp to its UTC calendar day.
func ToDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole calendar days from one date to another,
// negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return int(ToDate(to).Sub(ToDate(from)) / (24 * time.Hour))
}
