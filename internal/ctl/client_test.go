package ctl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"calbotd/pkg/types"
)

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/status" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(types.StatusResponse{State: "ready", WindowCount: 3})
	}))
	defer srv.Close()

	var st types.StatusResponse
	if err := newClient(srv.URL).getJSON("/status", &st); err != nil {
		t.Fatalf("getJSON: %v", err)
	}
	if st.State != "ready" || st.WindowCount != 3 {
		t.Fatalf("decoded status wrong: %+v", st)
	}
}

func TestClientSurfacesAPIErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(types.ErrorResponse{Error: "limit must be a non-negative integer"})
	}))
	defer srv.Close()

	err := newClient(srv.URL).getJSON("/events/upcoming", &map[string]any{})
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := err.Error(); got != "400 Bad Request: limit must be a non-negative integer" {
		t.Fatalf("error message wrong: %q", got)
	}
}

func TestClientPostAndDelete(t *testing.T) {
	var added, removed string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/skips":
			var req types.SkipRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			added = req.MeetingID
			w.WriteHeader(http.StatusNoContent)
		case r.Method == http.MethodDelete && r.URL.Path == "/skips/m1":
			removed = "m1"
			w.WriteHeader(http.StatusNoContent)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cl := newClient(srv.URL)
	if err := cl.postJSON("/skips", types.SkipRequest{MeetingID: "m1"}, nil); err != nil {
		t.Fatalf("postJSON: %v", err)
	}
	if err := cl.delete("/skips/m1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if added != "m1" || removed != "m1" {
		t.Fatalf("server saw add=%q remove=%q", added, removed)
	}
}

func TestMainSkipsAddAgainstServer(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req types.SkipRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		got = req.MeetingID
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	if err := Main([]string{"--addr", srv.URL, "skips", "add", "m42"}); err != nil {
		t.Fatalf("main: %v", err)
	}
	if got != "m42" {
		t.Fatalf("server saw %q", got)
	}
}

func TestMainUpcomingDecodesTypedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events/upcoming" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(types.UpcomingResponse{
			Events:        []types.Event{{MeetingID: "m1", Summary: "Standup"}},
			Count:         1,
			WindowVersion: 3,
		})
	}))
	defer srv.Close()

	if err := Main([]string{"--addr", srv.URL, "upcoming"}); err != nil {
		t.Fatalf("main: %v", err)
	}
}

func TestMainRejectsBareSubcommandGroups(t *testing.T) {
	if err := Main([]string{"skips"}); err == nil {
		t.Fatalf("bare skips should require a subcommand")
	}
	if err := Main([]string{"cache"}); err == nil {
		t.Fatalf("bare cache should require a subcommand")
	}
}
