package source

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/teambition/rrule-go"

	"calbotd/pkg/types"
)

// maxOccurrencesPerEvent caps recurrence expansion so a pathological rule
// cannot flood the window pipeline.
const maxOccurrencesPerEvent = 500

// Expand turns parsed events into concrete occurrences within [from, until].
// Non-recurring events pass through when they start before the horizon end;
// recurring events are expanded through the rrule library, which owns the
// recurrence semantics. A rule that fails to parse degrades to the base
// event rather than dropping it.
func Expand(parsed []ParsedEvent, from, until time.Time, logger zerolog.Logger) []types.Event {
	out := make([]types.Event, 0, len(parsed))
	for _, pe := range parsed {
		if pe.RRule == "" {
			if pe.Event.Start.After(until) {
				continue
			}
			out = append(out, pe.Event)
			continue
		}
		out = append(out, expandRecurring(pe, from, until, logger)...)
	}
	return out
}

func expandRecurring(pe ParsedEvent, from, until time.Time, logger zerolog.Logger) []types.Event {
	opt, err := rrule.StrToROption(pe.RRule)
	if err != nil {
		logger.Warn().Err(err).Str("meeting_id", pe.Event.MeetingID).Msg("unparseable RRULE, keeping base event")
		return []types.Event{pe.Event}
	}
	opt.Dtstart = pe.Event.Start
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		logger.Warn().Err(err).Str("meeting_id", pe.Event.MeetingID).Msg("invalid RRULE, keeping base event")
		return []types.Event{pe.Event}
	}

	dur := pe.Event.End.Sub(pe.Event.Start)
	starts := rule.Between(from, until, true)
	if len(starts) > maxOccurrencesPerEvent {
		logger.Warn().Str("meeting_id", pe.Event.MeetingID).Int("count", len(starts)).Msg("recurrence expansion truncated")
		starts = starts[:maxOccurrencesPerEvent]
	}

	out := make([]types.Event, 0, len(starts))
	for _, s := range starts {
		occ := pe.Event
		occ.Start = s
		if dur > 0 {
			occ.End = s.Add(dur)
		} else {
			occ.End = s
		}
		// Occurrences need distinct identities so one dismissed instance
		// does not hide its siblings.
		occ.MeetingID = pe.Event.MeetingID + "#" + s.UTC().Format("20060102T150405Z")
		out = append(out, occ)
	}
	return out
}
