package models

import "time"

// DailyMenuEntry records one flavor's presence on one calendar day's menu.
// AppearanceNumber is the flavor's cumulative appearance count as of this
// entry. DaysSinceLast is nil on a flavor's first appearance. SoldOutAt is
// nil while the flavor is still available.
type DailyMenuEntry struct {
	ID               string     `json:"id"`
	FlavorID         string     `json:"flavor_id"`
	Date             time.Time  `json:"date"`
	AppearanceNumber int        `json:"appearance_number"`
	DaysSinceLast    *int       `json:"days_since_last,omitempty"`
	SoldOutAt        *time.Time `json:"sold_out_at,omitempty"`
}

// ConfirmedFlavor is one line of a confirmed publication batch: either a
// reference to an existing catalog flavor or, with an empty FlavorID, a
// brand-new flavor name.
type ConfirmedFlavor struct {
	Name      string     `json:"name"`
	FlavorID  string     `json:"flavor_id,omitempty"`
	SoldOutAt *time.Time `json:"sold_out_at,omitempty"`
}
