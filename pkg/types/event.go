package types

import "time"

// Event is one normalized calendar event as produced by a source collaborator.
// The window core treats events as value objects: it filters and reorders them
// but never mutates their fields.
type Event struct {
	// MeetingID is the stable identifier for the event (iCalendar UID, or
	// UID plus occurrence suffix for expanded recurrences).
	MeetingID string `json:"meeting_id"`
	// SourceID identifies the calendar source this event came from.
	SourceID string `json:"source_id,omitempty"`

	Summary     string `json:"summary,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// AllDay marks date-only events.
	AllDay bool `json:"all_day,omitempty"`
	// Floating marks a start time that carried no zone information in the
	// source payload. Floating starts are interpreted in the configured
	// server timezone when the window is filtered.
	Floating bool `json:"floating,omitempty"`

	// Extra carries source fields the core does not interpret.
	Extra map[string]string `json:"extra,omitempty"`
}
