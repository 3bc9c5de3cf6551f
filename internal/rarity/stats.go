package rarity

import (
	"math"
	"time"

	"github.com/scooplog/scooplog/internal/models"
)

// Stats are the descriptive figures shown alongside a flavor's rarity.
// LongestGap needs the full appearance history, which the summary counters
// cannot provide, so it is always nil here.
type Stats struct {
	YearsTracking         int     `json:"years_tracking"`
	AvgAppearancesPerYear float64 `json:"avg_appearances_per_year"`
	DaysSinceLastSeen     *int    `json:"days_since_last_seen,omitempty"`
	LongestGap            *int    `json:"longest_gap,omitempty"`
}

// DeriveStats computes tracking duration and per-year averages as of now.
// YearsTracking is floored at 1 so day-one flavors do not report inflated
// per-year rates.
func DeriveStats(f *models.FlavorRecord, now time.Time) (Stats, error) {
	if err := f.Validate(now); err != nil {
		return Stats{}, err
	}

	ageInDays := models.DaysBetween(f.FirstAppeared, now)
	years := ageInDays / 365
	if years < 1 {
		years = 1
	}

	avg := float64(f.TotalAppearances) / float64(years)
	avg = math.Round(avg*10) / 10

	stats := Stats{
		YearsTracking:         years,
		AvgAppearancesPerYear: avg,
	}
	if f.LastAppeared != nil {
		days := models.DaysBetween(*f.LastAppeared, now)
		stats.DaysSinceLastSeen = &days
	}
	return stats, nil
}
