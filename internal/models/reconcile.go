package models

// ObservedFlavor is one candidate flavor name extracted from a photographed
// menu board, plus its sold-out flag. It is never persisted; it exists only
// for the duration of one reconciliation pass.
type ObservedFlavor struct {
	Name    string `json:"name"`
	SoldOut bool   `json:"sold_out"`
}

type MatchConfidence string

const (
	ConfidenceHigh   MatchConfidence = "high"
	ConfidenceMedium MatchConfidence = "medium"
	ConfidenceLow    MatchConfidence = "low"
)

// MatchResult is the reconciler's verdict for one observed name. Flavor is
// nil when the name matched nothing in the catalog, in which case IsNew is
// true and Confidence is low. Medium-confidence matches are expected to go
// through human review before publication.
type MatchResult struct {
	Observed   string          `json:"observed"`
	Flavor     *FlavorRecord   `json:"flavor,omitempty"`
	Distance   int             `json:"distance"`
	IsNew      bool            `json:"is_new"`
	Confidence MatchConfidence `json:"confidence"`
	SoldOut    bool            `json:"sold_out"`
}
