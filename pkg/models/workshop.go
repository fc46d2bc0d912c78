// Package models contains domain models for identitymap.
package models

// Workshop represents one facilitated session that participants join with a
// shared code.
type Workshop struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	JoinCode       string `json:"join_code"`
	CreatedAt      string `json:"created_at"`
	CreatedAtEpoch int64  `json:"created_at_epoch"`
}

// Participant is one attendee of a workshop.
type Participant struct {
	ID             string `json:"id"`
	WorkshopID     int64  `json:"workshop_id"`
	DisplayName    string `json:"display_name"`
	CreatedAt      string `json:"created_at"`
	CreatedAtEpoch int64  `json:"created_at_epoch"`
}
