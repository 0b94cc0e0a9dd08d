package models

// Status is the lifecycle state of a controlled record. Transitions are
// monotone: draft -> approved -> archived, with archived terminal.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusArchived Status = "archived"
)
