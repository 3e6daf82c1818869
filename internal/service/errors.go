package service

import "fmt"

// Admission and lifecycle rejections are expected outcomes the caller
// branches on, carried as typed errors with the concrete limiting values so
// user-facing messages can be specific.

// NotFoundError reports a missing user, place or booking.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// VenueClosedError reports an admission attempt outside operating hours.
type VenueClosedError struct {
	OpenHours  string
	CloseHours string
}

func (e *VenueClosedError) Error() string {
	return fmt.Sprintf("tempat sedang tutup, buka %s - %s", e.OpenHours, e.CloseHours)
}

// CapacityExceededError reports a party size above the place's limit.
type CapacityExceededError struct {
	Limit int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("kapasitas maksimal %d orang", e.Limit)
}

// InvalidTransitionError reports a status change the lifecycle forbids.
type InvalidTransitionError struct {
	From      string
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition status from %s to %s", e.From, e.Attempted)
}
