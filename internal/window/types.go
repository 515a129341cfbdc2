package window

// SkipChecker reports whether a user has dismissed a specific event.
// Implementations may be backed by a file, a database, or a remote store;
// failures are tolerated at the call site (the window never empties out
// because a secondary checker is broken).
type SkipChecker interface {
	IsSkipped(meetingID string) (bool, error)
}

// Invalidator couples the window to its dependent response cache: every
// successful window replacement bumps the cache version so entries computed
// against the old window become unreachable. The manager invokes it itself,
// right after the swap, so there is no two-step protocol for callers to get
// wrong.
type Invalidator interface {
	// InvalidateAll advances the version and clears cached entries,
	// returning the new version.
	InvalidateAll() uint64
	// Version returns the current version without modifying state.
	Version() uint64
}

// Outcome tags the result of an update cycle.
type Outcome string

const (
	// OutcomeUpdated: the window was replaced with freshly filtered events.
	OutcomeUpdated Outcome = "updated"
	// OutcomePreserved: the fetched batch was empty while the window was
	// not, so the last-known-good window was kept.
	OutcomePreserved Outcome = "preserved"
	// OutcomeNoData: nothing was fetched and nothing was held; the window
	// stays empty.
	OutcomeNoData Outcome = "no_data"
)

// UpdateResult describes what UpdateWindow did. "No events anywhere" and
// "sources down" are normal outcomes carried here, never errors.
type UpdateResult struct {
	Outcome Outcome `json:"outcome"`
	// Updated is true only when the window contents were replaced.
	Updated bool `json:"updated"`
	// FinalCount is the window length after the cycle.
	FinalCount int `json:"final_count"`
	// Reason is a human-readable explanation for logs and diagnostics.
	Reason string `json:"reason"`
	// Version is the cache version after the cycle (unchanged unless Updated).
	Version uint64 `json:"window_version"`
}
