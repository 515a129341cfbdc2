package refresh

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"calbotd/internal/source"
	"calbotd/internal/window"
)

func icsServer(t *testing.T, events string) *httptest.Server {
	t.Helper()
	body := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" + events + "END:VCALENDAR\r\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func veventAt(uid string, start time.Time) string {
	return fmt.Sprintf(
		"BEGIN:VEVENT\r\nUID:%s\r\nSUMMARY:%s\r\nDTSTART:%s\r\nDTEND:%s\r\nEND:VEVENT\r\n",
		uid, uid,
		start.UTC().Format("20060102T150405Z"),
		start.Add(30*time.Minute).UTC().Format("20060102T150405Z"),
	)
}

func TestRunOnceUpdatesWindowFromICS(t *testing.T) {
	now := time.Now()
	srv := icsServer(t,
		veventAt("m1", now.Add(2*time.Hour))+
			veventAt("m2", now.Add(1*time.Hour))+
			veventAt("past", now.Add(-2*time.Hour)))

	mgr := window.NewWithConfig(window.ManagerConfig{WindowSize: 10})
	loop := New(Config{
		Fetcher: source.NewFetcher(t.TempDir(), zerolog.Nop()),
		Sources: []source.Source{{ID: "s1", URL: srv.URL}},
		Manager: mgr,
		Logger:  zerolog.Nop(),
	})

	res, err := loop.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if !res.Updated || res.FinalCount != 2 {
		t.Fatalf("expected 2 upcoming events, got %+v", res)
	}
	win := mgr.Upcoming()
	if win[0].MeetingID != "m2" || win[1].MeetingID != "m1" {
		t.Fatalf("window not ordered by start: %+v", win)
	}
}

func TestRunOncePreservesOnUnreachableSources(t *testing.T) {
	now := time.Now()
	srv := icsServer(t, veventAt("m1", now.Add(time.Hour)))

	mgr := window.NewWithConfig(window.ManagerConfig{WindowSize: 10})
	fetcher := source.NewFetcher(t.TempDir(), zerolog.Nop())
	loop := New(Config{
		Fetcher: fetcher,
		Sources: []source.Source{{ID: "s1", URL: srv.URL}},
		Manager: mgr,
		Logger:  zerolog.Nop(),
	})
	if _, err := loop.RunOnce(context.Background()); err != nil {
		t.Fatalf("prime cycle: %v", err)
	}

	// Unreachable sources with no disk cache produce an empty batch; the
	// existing window must survive.
	dead := New(Config{
		Fetcher: source.NewFetcher(t.TempDir(), zerolog.Nop()),
		Sources: []source.Source{{ID: "s1", URL: "http://127.0.0.1:1/ics"}},
		Manager: mgr,
		Logger:  zerolog.Nop(),
	})
	res, err := dead.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("degraded cycle: %v", err)
	}
	if res.Updated || res.Outcome != window.OutcomePreserved {
		t.Fatalf("expected preserved outcome, got %+v", res)
	}
	if mgr.WindowCount() != 1 {
		t.Fatalf("window lost during outage: %d", mgr.WindowCount())
	}
}

func TestRunOnceNoDataOnEmptyCalendars(t *testing.T) {
	srv := icsServer(t, "")
	mgr := window.NewWithConfig(window.ManagerConfig{WindowSize: 10})
	loop := New(Config{
		Fetcher: source.NewFetcher(t.TempDir(), zerolog.Nop()),
		Sources: []source.Source{{ID: "s1", URL: srv.URL}},
		Manager: mgr,
		Logger:  zerolog.Nop(),
	})
	res, err := loop.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if res.Outcome != window.OutcomeNoData {
		t.Fatalf("expected no-data outcome, got %+v", res)
	}
}

func TestRunOnceExpandsRecurrences(t *testing.T) {
	now := time.Now()
	base := now.Add(time.Hour).UTC().Truncate(time.Second)
	events := fmt.Sprintf(
		"BEGIN:VEVENT\r\nUID:daily\r\nSUMMARY:Daily\r\nDTSTART:%s\r\nDTEND:%s\r\nRRULE:FREQ=DAILY;COUNT=3\r\nEND:VEVENT\r\n",
		base.Format("20060102T150405Z"),
		base.Add(15*time.Minute).Format("20060102T150405Z"))
	srv := icsServer(t, events)

	mgr := window.NewWithConfig(window.ManagerConfig{WindowSize: 10})
	loop := New(Config{
		Fetcher: source.NewFetcher(t.TempDir(), zerolog.Nop()),
		Sources: []source.Source{{ID: "s1", URL: srv.URL}},
		Manager: mgr,
		Logger:  zerolog.Nop(),
	})
	res, err := loop.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if res.FinalCount != 3 {
		t.Fatalf("expected 3 occurrences, got %+v", res)
	}
	seen := map[string]bool{}
	for _, e := range mgr.Upcoming() {
		if seen[e.MeetingID] {
			t.Fatalf("duplicate occurrence id %q", e.MeetingID)
		}
		seen[e.MeetingID] = true
	}
}

func TestStartRejectsBadCronSpec(t *testing.T) {
	loop := New(Config{
		Fetcher: source.NewFetcher(t.TempDir(), zerolog.Nop()),
		Manager: window.NewWithConfig(window.ManagerConfig{}),
		Logger:  zerolog.Nop(),
	})
	if err := loop.Start("not a cron spec"); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
}

func TestStopWithoutStartReturnsBackground(t *testing.T) {
	loop := New(Config{Logger: zerolog.Nop()})
	ctx := loop.Stop()
	select {
	case <-ctx.Done():
		t.Fatalf("background context must not be done")
	default:
	}
}
