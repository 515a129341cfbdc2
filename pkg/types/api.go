package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	Error string `json:"error"`
	// HTTP status code.
	Code int `json:"code"`
}

// UpcomingResponse is returned by GET /events/upcoming.
type UpcomingResponse struct {
	// Events in the current window, earliest start first.
	Events []Event `json:"events"`
	// Number of events returned.
	Count int `json:"count"`
	// Window version the response was computed against.
	WindowVersion uint64 `json:"window_version"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Number of events currently in the window.
	WindowCount int `json:"window_count"`
	// Configured window bound.
	WindowSize int `json:"window_size"`
	// Current window version (cache epoch).
	WindowVersion uint64 `json:"window_version"`
	// Overall state: "waiting" until the first refresh cycle completes, then "ready".
	State string `json:"state"`
	// Outcome of the last refresh cycle ("updated", "preserved", "no_data").
	LastOutcome string `json:"last_outcome,omitempty"`
	// Human-readable explanation of the last outcome.
	LastReason string `json:"last_reason,omitempty"`
	// Unix time of the last completed refresh cycle.
	LastRefreshUnix int64 `json:"last_refresh_unix,omitempty"`
	// Total refresh cycles observed.
	CyclesTotal uint64 `json:"cycles_total"`
	// Cycles that replaced the window.
	UpdatesTotal uint64 `json:"updates_total"`
	// Cycles that preserved the previous window on an empty parse.
	PreservedTotal uint64 `json:"preserved_total"`
	// Cycles with no parsed events and no prior window.
	NoDataTotal uint64 `json:"no_data_total"`
	// Timezone used to interpret floating start times.
	Timezone string `json:"timezone"`
	// Uptime of the daemon in seconds.
	UptimeSeconds int64 `json:"uptime_seconds"`
	// Server time in unix seconds.
	ServerTimeUnix int64 `json:"server_time_unix"`
}

// CacheStats is the diagnostic surface of the response cache,
// returned by GET /cache/stats.
type CacheStats struct {
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	HitRate       float64 `json:"hit_rate"`
	Evictions     uint64  `json:"evictions"`
	Invalidations uint64  `json:"invalidations"`
	CurrentSize   int     `json:"current_size"`
	MaxSize       int     `json:"max_size"`
	WindowVersion uint64  `json:"window_version"`
}

// SkipRequest is the body of POST /skips.
type SkipRequest struct {
	// MeetingID of the event to hide from the window.
	MeetingID string `json:"meeting_id"`
}

// SkipsResponse wraps the skip list returned by GET /skips.
type SkipsResponse struct {
	Skips []string `json:"skips"`
}

// RefreshResponse is returned by POST /refresh.
type RefreshResponse struct {
	// Outcome of the cycle ("updated", "preserved", "no_data").
	Outcome string `json:"outcome"`
	// Whether the window was replaced.
	Updated bool `json:"updated"`
	// Number of events in the window after the cycle.
	FinalCount int `json:"final_count"`
	// Human-readable explanation.
	Reason string `json:"reason"`
	// Window version after the cycle.
	WindowVersion uint64 `json:"window_version"`
}
