package window

import (
	"time"

	"calbotd/pkg/types"
)

// UpdateWindow is the sole mutation entry point for the shared window.
//
// Calls serialize against each other: each one consults the fallback policy
// against the current window size, runs the filter stages outside the read
// lock (pure compute; readers are never blocked on it), then atomically swaps
// in the new window. On a successful replacement
// the configured Invalidator is bumped before returning, from this single
// call path, so cached responses can never outlive the window they were
// computed against.
//
// "No events" and "all sources down" are normal outcomes encoded in the
// result; the only errors surfaced are upstream contract violations from the
// skip-filtering stage.
func (m *Manager) UpdateWindow(parsed []types.Event, now time.Time, checker SkipChecker, sourceCount int) (UpdateResult, error) {
	m.updateMu.Lock()
	defer m.updateMu.Unlock()

	m.mu.RLock()
	existing := len(m.window)
	m.mu.RUnlock()

	d := ShouldPreserve(len(parsed), existing, sourceCount)
	if d.Preserve {
		m.finishCycle(now, OutcomePreserved, d.Reason)
		m.publisher.Publish(Event{Name: "window_preserved", Fields: map[string]any{
			"preserved_count": existing,
			"source_count":    sourceCount,
		}})
		m.logger.Info().Int("preserved_count", existing).Int("source_count", sourceCount).Msg(d.Reason)
		return UpdateResult{
			Outcome:    OutcomePreserved,
			FinalCount: existing,
			Reason:     d.Reason,
			Version:    m.version(),
		}, nil
	}

	upcoming := filterUpcoming(parsed, now, m.loc, m.logger)
	kept, err := filterSkipped(upcoming, checker, m.logger)
	if err != nil {
		return UpdateResult{}, err
	}
	next := sortAndLimit(kept, m.windowSize, m.loc)

	if d.NoData {
		// Nothing fetched and nothing held: install the empty result but
		// report the distinct no-data condition. The window is unchanged in
		// content, so the cache version stays put.
		m.mu.Lock()
		m.window = next
		m.mu.Unlock()
		m.finishCycle(now, OutcomeNoData, d.Reason)
		m.publisher.Publish(Event{Name: "window_no_data", Fields: map[string]any{
			"source_count": sourceCount,
		}})
		m.logger.Info().Int("source_count", sourceCount).Msg(d.Reason)
		return UpdateResult{
			Outcome: OutcomeNoData,
			Reason:  d.Reason,
			Version: m.version(),
		}, nil
	}

	m.mu.Lock()
	m.window = next
	m.mu.Unlock()

	version := m.version()
	if m.invalidator != nil {
		version = m.invalidator.InvalidateAll()
	}
	m.finishCycle(now, OutcomeUpdated, d.Reason)
	m.publisher.Publish(Event{Name: "window_updated", Fields: map[string]any{
		"final_count":  len(next),
		"parsed_count": len(parsed),
		"version":      version,
	}})
	m.logger.Info().Int("final_count", len(next)).Int("parsed_count", len(parsed)).Uint64("version", version).Msg(d.Reason)
	return UpdateResult{
		Outcome:    OutcomeUpdated,
		Updated:    true,
		FinalCount: len(next),
		Reason:     d.Reason,
		Version:    version,
	}, nil
}

func (m *Manager) finishCycle(now time.Time, outcome Outcome, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastCycle = now
	m.lastOutcome = outcome
	m.lastReason = reason
	m.cyclesTotal++
	switch outcome {
	case OutcomeUpdated:
		m.updatesTotal++
	case OutcomePreserved:
		m.preservedTotal++
	case OutcomeNoData:
		m.noDataTotal++
	}
}

func (m *Manager) version() uint64 {
	if m.invalidator == nil {
		return 0
	}
	return m.invalidator.Version()
}
