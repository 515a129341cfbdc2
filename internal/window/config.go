package window

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultWindowSize       = 8
	defaultServerTimezone   = "UTC"
	defaultFallbackTimezone = "UTC"
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	// WindowSize caps the number of events held in the window.
	WindowSize int
	// ServerTimezone interprets floating (zone-less) start times.
	ServerTimezone string
	// FallbackTimezone is tried when ServerTimezone does not resolve.
	FallbackTimezone string
	// Logger receives filter warnings and cycle outcomes. Optional.
	Logger *zerolog.Logger
	// Publisher receives lifecycle events. Optional; defaults to a noop.
	Publisher EventPublisher
	// Invalidator is bumped on every successful window replacement. Optional.
	Invalidator Invalidator
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{}
	if cfg.WindowSize <= 0 {
		m.windowSize = defaultWindowSize
	} else {
		m.windowSize = cfg.WindowSize
	}
	serverTZ := cfg.ServerTimezone
	if serverTZ == "" {
		serverTZ = defaultServerTimezone
	}
	fallbackTZ := cfg.FallbackTimezone
	if fallbackTZ == "" {
		fallbackTZ = defaultFallbackTimezone
	}
	if cfg.Logger != nil {
		m.logger = *cfg.Logger
	} else {
		m.logger = zerolog.Nop()
	}
	if cfg.Publisher != nil {
		m.publisher = cfg.Publisher
	} else {
		m.publisher = noopPublisher{}
	}
	m.invalidator = cfg.Invalidator
	m.tzName, m.loc = resolveLocation(serverTZ, fallbackTZ, m.logger)
	m.startTime = time.Now()
	return m
}
