package window

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"calbotd/pkg/types"
)

// resolveLocation resolves the zone used to interpret floating start times.
// Resolution degrades in three tiers and never fails: configured server zone,
// then the fallback zone, then UTC.
func resolveLocation(serverTZ, fallbackTZ string, logger zerolog.Logger) (string, *time.Location) {
	if loc, err := time.LoadLocation(serverTZ); err == nil {
		return serverTZ, loc
	} else {
		logger.Warn().Err(err).Str("timezone", serverTZ).Msg("server timezone not resolvable, trying fallback")
	}
	if loc, err := time.LoadLocation(fallbackTZ); err == nil {
		return fallbackTZ, loc
	} else {
		logger.Warn().Err(err).Str("timezone", fallbackTZ).Msg("fallback timezone not resolvable, assuming UTC")
	}
	return "UTC", time.UTC
}

// normalizeStart returns the event's start as a comparable instant. Floating
// starts are reinterpreted as wall-clock time in loc.
func normalizeStart(ev types.Event, loc *time.Location) time.Time {
	if !ev.Floating {
		return ev.Start
	}
	t := ev.Start
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// filterUpcoming keeps events whose normalized start is at or after now.
// Events without a valid start time are dropped with a warning, never an error.
func filterUpcoming(events []types.Event, now time.Time, loc *time.Location, logger zerolog.Logger) []types.Event {
	out := make([]types.Event, 0, len(events))
	for _, ev := range events {
		if ev.Start.IsZero() {
			logger.Warn().Str("meeting_id", ev.MeetingID).Str("summary", ev.Summary).Msg("event has no valid start time, dropping")
			continue
		}
		if normalizeStart(ev, loc).Before(now) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// filterSkipped removes events the checker affirmatively reports as skipped.
// A nil checker passes everything through. A failing checker is logged and
// ignored (fail open). An event with no meeting ID while skip filtering is
// active is a contract violation returned to the caller.
func filterSkipped(events []types.Event, checker SkipChecker, logger zerolog.Logger) ([]types.Event, error) {
	if checker == nil {
		return events, nil
	}
	out := make([]types.Event, 0, len(events))
	for _, ev := range events {
		if ev.MeetingID == "" {
			return nil, ErrContractViolation("event without meeting_id while skip filtering is active")
		}
		skipped, err := checker.IsSkipped(ev.MeetingID)
		if err != nil {
			logger.Warn().Err(err).Str("meeting_id", ev.MeetingID).Msg("skip checker failed, keeping event")
			out = append(out, ev)
			continue
		}
		if skipped {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// sortAndLimit stable-sorts ascending by normalized start time and truncates
// to windowSize. Equal starts keep their input order.
func sortAndLimit(events []types.Event, windowSize int, loc *time.Location) []types.Event {
	out := make([]types.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return normalizeStart(out[i], loc).Before(normalizeStart(out[j], loc))
	})
	if windowSize > 0 && len(out) > windowSize {
		out = out[:windowSize]
	}
	return out
}
