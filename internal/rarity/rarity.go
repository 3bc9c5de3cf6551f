// Package rarity converts a flavor's appearance history into a 0-10 rarity
// score and one of four levels. Scores are recomputed only at menu
// publication time; every other read trusts the stored value, so all
// date-dependent functions take an explicit "now" instead of touching the
// wall clock.
package rarity

import (
	"fmt"
	"time"

	"github.com/scooplog/scooplog/internal/models"
)

type Level string

const (
	LevelLegendary Level = "legendary"
	LevelRare      Level = "rare"
	LevelUncommon  Level = "uncommon"
	LevelRegular   Level = "regular"
)

// UnclassifiedScore is assigned when a flavor has no usable history: first
// seen today, or just created with a single data point.
const UnclassifiedScore = 5.0

// Info bundles a score with its level and display metadata.
type Info struct {
	Score       float64 `json:"score"`
	Level       Level   `json:"level"`
	Label       string  `json:"label"`
	Emoji       string  `json:"emoji"`
	Description string  `json:"description"`
}

// scoreBands maps appearances-per-year to a score, rarest first. The first
// band whose bound exceeds the rate wins.
var scoreBands = []struct {
	perYearBelow float64
	score        float64
}{
	{0.5, 9.5},
	{1, 9.0},
	{2, 8.0},
	{4, 7.0},
	{6, 6.0},
	{12, 4.0},
	{26, 3.0},
	{52, 2.0},
}

// Score derives a flavor's rarity score from its appearance rate as of now.
// A flavor first seen today (or with an inconsistent clock) scores
// UnclassifiedScore rather than dividing by zero age.
func Score(f *models.FlavorRecord, now time.Time) (float64, error) {
	if err := f.Validate(now); err != nil {
		return 0, err
	}

	ageInDays := models.DaysBetween(f.FirstAppeared, now)
	if ageInDays <= 0 {
		return UnclassifiedScore, nil
	}

	perYear := float64(f.TotalAppearances) / float64(ageInDays) * 365
	for _, band := range scoreBands {
		if perYear < band.perYearBelow {
			return band.score, nil
		}
	}
	return 1.0, nil
}

// Classify maps a score to its level, highest threshold first.
func Classify(score float64) Level {
	switch {
	case score >= 8:
		return LevelLegendary
	case score >= 5:
		return LevelRare
	case score >= 3:
		return LevelUncommon
	default:
		return LevelRegular
	}
}

// Describe returns the rarity info for a flavor. A stored score wins over
// recomputation: once a score has been persisted at publication time, reads
// do not silently rederive it from possibly stale history.
func Describe(f *models.FlavorRecord, now time.Time) (Info, error) {
	score := f.RarityScore
	if score == 0 {
		var err error
		score, err = Score(f, now)
		if err != nil {
			return Info{}, err
		}
	}

	level := Classify(score)
	info := levelInfo[level]
	info.Score = score
	return info, nil
}

var levelInfo = map[Level]Info{
	LevelLegendary: {
		Level:       LevelLegendary,
		Label:       "Legendary",
		Emoji:       "💎",
		Description: "Appears less than twice a year. Drop everything.",
	},
	LevelRare: {
		Level:       LevelRare,
		Label:       "Rare",
		Emoji:       "⭐",
		Description: "A handful of appearances per year.",
	},
	LevelUncommon: {
		Level:       LevelUncommon,
		Label:       "Uncommon",
		Emoji:       "🍦",
		Description: "Shows up every few weeks.",
	},
	LevelRegular: {
		Level:       LevelRegular,
		Label:       "Regular",
		Emoji:       "🗓️",
		Description: "On the board most weeks.",
	},
}

// LevelFor is a convenience for callers that only need the level name.
func LevelFor(f *models.FlavorRecord, now time.Time) (Level, error) {
	info, err := Describe(f, now)
	if err != nil {
		return "", fmt.Errorf("classify %q: %w", f.Name, err)
	}
	return info.Level, nil
}
