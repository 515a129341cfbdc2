package source

import (
	"bytes"
	"errors"
	"strings"

	ical "github.com/arran4/golang-ical"
	"github.com/rs/zerolog"

	"calbotd/pkg/types"
)

// ParsedEvent is one VEVENT mapped to the normalized event model, plus the
// raw recurrence rule when present. Recurrence expansion happens in
// expand.go; parsing never interprets the rule itself.
type ParsedEvent struct {
	Event types.Event
	RRule string
}

// Parse maps a single ICS payload to ParsedEvents. VEVENTs that fail to map
// are logged and skipped; the rest of the payload still parses.
func Parse(src Source, body []byte, logger zerolog.Logger) ([]ParsedEvent, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	out := make([]ParsedEvent, 0, len(cal.Events()))
	for _, ve := range cal.Events() {
		pe, perr := parseVEvent(src, ve)
		if perr != nil {
			logger.Warn().Err(perr).Str("id", src.ID).Msg("vevent skipped")
			continue
		}
		out = append(out, pe)
	}
	logger.Debug().Str("id", src.ID).Int("event_count", len(out)).Msg("ics parsed")
	return out, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (ParsedEvent, error) {
	var pe ParsedEvent
	pe.Event.SourceID = src.ID

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return pe, errors.New("missing UID")
	}
	pe.Event.MeetingID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		pe.Event.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		pe.Event.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		pe.Event.Location = p.Value
	}

	// The library's helpers own VTIMEZONE/TZID resolution.
	start, _ := ve.GetStartAt()
	end, _ := ve.GetEndAt()
	pe.Event.Start = start
	pe.Event.End = end

	if dtStart := ve.GetProperty(ical.ComponentPropertyDtStart); dtStart != nil {
		val := dtStart.Value
		allDay := !strings.Contains(val, "T")
		hasTZID := false
		if params := dtStart.ICalParameters; params != nil {
			if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
				allDay = true
			}
			if tzs, ok := params["TZID"]; ok && len(tzs) > 0 {
				hasTZID = true
			}
		}
		pe.Event.AllDay = allDay
		// Zone-less local times float; the window reinterprets them in the
		// configured server timezone.
		pe.Event.Floating = !allDay && !hasTZID && !strings.HasSuffix(val, "Z")
	}

	if rr := ve.GetProperty(ical.ComponentPropertyRrule); rr != nil {
		pe.RRule = rr.Value
	}
	return pe, nil
}
