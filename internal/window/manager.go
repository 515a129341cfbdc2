package window

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"calbotd/pkg/types"
)

// Manager is the only writer of the shared event window. Readers take brief
// RLock snapshots; UpdateWindow replaces the window wholesale under the
// write lock.
type Manager struct {
	mu     sync.RWMutex
	window []types.Event

	// updateMu serializes UpdateWindow callers end to end. The fallback
	// decision is made against the window size read at the top of the call;
	// interleaving a second writer between that read and the swap could
	// install a result no serial ordering of the two calls can produce.
	updateMu sync.Mutex

	windowSize int
	tzName     string
	loc        *time.Location

	logger      zerolog.Logger
	publisher   EventPublisher
	invalidator Invalidator

	startTime time.Time

	// Cycle bookkeeping, guarded by mu.
	lastCycle      time.Time
	lastOutcome    Outcome
	lastReason     string
	cyclesTotal    uint64
	updatesTotal   uint64
	preservedTotal uint64
	noDataTotal    uint64
}

// New constructs a Manager with the given window bound and timezone names.
func New(windowSize int, serverTZ, fallbackTZ string) *Manager {
	return NewWithConfig(ManagerConfig{
		WindowSize:       windowSize,
		ServerTimezone:   serverTZ,
		FallbackTimezone: fallbackTZ,
	})
}

// Ready reports whether at least one refresh cycle has completed. An empty
// window is still ready; "no upcoming events" is a normal state.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cyclesTotal > 0
}

// Upcoming returns a copy of the current window, earliest start first.
func (m *Manager) Upcoming() []types.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Event, len(m.window))
	copy(out, m.window)
	return out
}

// WindowCount returns the number of events currently held.
func (m *Manager) WindowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.window)
}
