package models

import "time"

// Acta is a recorded meeting/minutes document with its own
// draft -> approved -> archived lifecycle.
type Acta struct {
	ID        string    `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Summary   string    `json:"summary,omitempty" db:"summary"`
	MeetingAt time.Time `json:"meeting_at" db:"meeting_at"`
	CreatedBy string    `json:"created_by" db:"created_by"`
	Status    Status    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ActaListResponse wraps an acta listing for the HTTP surface.
type ActaListResponse struct {
	Actas []Acta `json:"actas"`
	Total int    `json:"total"`
}
