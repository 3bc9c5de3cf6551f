// Package reconcile matches freshly observed flavor names, typically
// photo-derived text, against the existing flavor catalog using edit
// distance. It is a detection tool: every observed name produces exactly
// one result, and duplicate or conflicting matches are left for human
// review rather than merged.
package reconcile

import (
	"sort"

	"github.com/scooplog/scooplog/internal/models"
)

// DefaultThreshold is the edit-distance cutoff for treating a catalog entry
// as a plausible match.
const DefaultThreshold = 3

// Candidate is one catalog entry annotated with its distance from an
// observed name. Matched means the distance cleared the threshold.
type Candidate struct {
	Flavor   *models.FlavorRecord
	Distance int
	Matched  bool
}

// FuzzyMatch scores every catalog entry against an observed name and
// returns all of them, closest first. Equal distances order by flavor name
// so the ranking is deterministic across runs.
func FuzzyMatch(name string, catalog []*models.FlavorRecord, threshold int) []Candidate {
	out := make([]Candidate, 0, len(catalog))
	for _, f := range catalog {
		d := Levenshtein(name, f.Name)
		out = append(out, Candidate{Flavor: f, Distance: d, Matched: d <= threshold})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Flavor.Name < out[j].Flavor.Name
	})
	return out
}

// Reconcile decides, for each observed name, whether it refers to an
// existing catalog flavor. Distance 0 is a high-confidence match, anything
// below the threshold a medium-confidence match expected to get human
// confirmation, anything at or beyond it (or an empty catalog) means a new
// flavor. A threshold <= 0 falls back to DefaultThreshold. The sold-out
// flag passes through untouched.
func Reconcile(observed []models.ObservedFlavor, catalog []*models.FlavorRecord, threshold int) []models.MatchResult {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	results := make([]models.MatchResult, 0, len(observed))
	for _, obs := range observed {
		result := models.MatchResult{
			Observed:   obs.Name,
			IsNew:      true,
			Confidence: models.ConfidenceLow,
			SoldOut:    obs.SoldOut,
		}

		candidates := FuzzyMatch(obs.Name, catalog, threshold)
		if len(candidates) > 0 {
			best := candidates[0]
			result.Distance = best.Distance
			switch {
			case best.Distance == 0:
				result.Flavor = best.Flavor
				result.IsNew = false
				result.Confidence = models.ConfidenceHigh
			case best.Distance < threshold:
				result.Flavor = best.Flavor
				result.IsNew = false
				result.Confidence = models.ConfidenceMedium
			}
		}

		results = append(results, result)
	}
	return results
}

// AutoAccepted reports whether a match may be applied without human
// confirmation under the given policy. High confidence always passes;
// medium only when the caller opted in.
func AutoAccepted(r models.MatchResult, acceptMedium bool) bool {
	switch r.Confidence {
	case models.ConfidenceHigh:
		return true
	case models.ConfidenceMedium:
		return acceptMedium
	default:
		return false
	}
}
