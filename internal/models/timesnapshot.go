package models

import (
	"fmt"
	"time"
)

// TimeSource identifies which provider produced a snapshot.
type TimeSource string

const (
	SourceTimeAPI       TimeSource = "timeapi"
	SourceWorldTimeAPI  TimeSource = "worldtimeapi"
	SourceLocalFallback TimeSource = "local_fallback"
)

// TimeSnapshot is the result of one time resolution. It is created fresh per
// call and never persisted; callers that need a stable "now" within a request
// resolve once and pass the snapshot along.
type TimeSnapshot struct {
	Instant   time.Time  `json:"instant"`
	TimeOfDay string     `json:"time_of_day"` // HH:MM in the target zone
	Source    TimeSource `json:"source"`
}

// NewTimeSnapshot builds a snapshot from an instant already expressed in the
// target zone, truncating seconds.
func NewTimeSnapshot(instant time.Time, source TimeSource) TimeSnapshot {
	return TimeSnapshot{
		Instant:   instant,
		TimeOfDay: fmt.Sprintf("%02d:%02d", instant.Hour(), instant.Minute()),
		Source:    source,
	}
}

// Authoritative reports whether the snapshot came from an external provider
// rather than the local clock.
func (s TimeSnapshot) Authoritative() bool {
	return s.Source != SourceLocalFallback
}
