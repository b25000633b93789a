// Package booking is the guarded appointment surface of the application.
// The handlers here are deliberately thin: the interesting behavior is the
// permission enforcement and audit tagging wrapped around them.
package booking

import "time"

// Appointment statuses.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Appointment represents a booked slot.
type Appointment struct {
	ID           int64
	BranchID     *int64
	CustomerName string
	ServiceName  string
	StartsAt     time.Time
	EndsAt       time.Time
	Status       string
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Summary aggregates appointment counts for the dashboard.
type Summary struct {
	Upcoming  int64
	Today     int64
	Cancelled int64
}
