package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"calbotd/internal/respcache"
	"calbotd/internal/window"
	"calbotd/pkg/types"
)

// Service defines the methods the HTTP layer needs from the window manager.
type Service interface {
	Upcoming() []types.Event
	Status() types.StatusResponse
	Ready() bool
}

// SkipStore manages the dismissed-event list.
type SkipStore interface {
	Add(meetingID string) error
	Remove(meetingID string) error
	List() []string
}

// Refresher triggers an immediate fetch cycle.
type Refresher interface {
	RunOnce(ctx context.Context) (window.UpdateResult, error)
}

// Deps wires the handlers to their collaborators. Skips and Refresher are
// optional; the corresponding routes answer 404/503 when absent.
type Deps struct {
	Service   Service
	Cache     *respcache.Cache
	Skips     SkipStore
	Refresher Refresher
}

func NewMux(d Deps) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/events/upcoming", func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeJSONError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			limit = n
		}

		w.Header().Set("Content-Type", "application/json")
		key := d.Cache.GenerateKey("upcoming", map[string]any{"limit": limit})
		if payload, ok := d.Cache.Get(key); ok {
			w.Header().Set("X-Cache", "hit")
			if err := json.NewEncoder(w).Encode(payload); err != nil {
				writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			}
			return
		}

		events := d.Service.Upcoming()
		if limit > 0 && len(events) > limit {
			events = events[:limit]
		}
		payload := respcache.Payload{
			"events":         events,
			"count":          len(events),
			"window_version": d.Cache.Version(),
		}
		d.Cache.Set(key, payload)
		w.Header().Set("X-Cache", "miss")
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d.Service.Status()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/cache/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(d.Cache.Stats()); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Get("/skips", func(w http.ResponseWriter, r *http.Request) {
		if d.Skips == nil {
			writeJSONError(w, http.StatusNotFound, "skip store not configured")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.SkipsResponse{Skips: d.Skips.List()}); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
		}
	})

	r.Post("/skips", func(w http.ResponseWriter, r *http.Request) {
		if d.Skips == nil {
			writeJSONError(w, http.StatusNotFound, "skip store not configured")
			return
		}
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.SkipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.MeetingID) == "" {
			writeJSONError(w, http.StatusBadRequest, "meeting_id is required")
			return
		}
		if err := d.Skips.Add(req.MeetingID); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		triggerBackgroundRefresh(d.Refresher)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Delete("/skips/{id}", func(w http.ResponseWriter, r *http.Request) {
		if d.Skips == nil {
			writeJSONError(w, http.StatusNotFound, "skip store not configured")
			return
		}
		id := chi.URLParam(r, "id")
		if id == "" {
			writeJSONError(w, http.StatusBadRequest, "meeting id is required")
			return
		}
		if err := d.Skips.Remove(id); err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		triggerBackgroundRefresh(d.Refresher)
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/refresh", func(w http.ResponseWriter, r *http.Request) {
		if d.Refresher == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "refresh loop not configured")
			return
		}
		start := time.Now()
		logRefreshStart(r)
		// Join server base context with request context so shutdown cancels work too.
		joinedCtx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		res, err := d.Refresher.RunOnce(joinedCtx)
		if err != nil {
			// If context was canceled (client disconnect), just return.
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			if window.IsContractViolation(err) {
				// Upstream data broke its contract; that is a gateway-side fault.
				writeJSONError(w, http.StatusBadGateway, err.Error())
				logRefreshEnd(r, http.StatusBadGateway, time.Since(start), err)
				return
			}
			if he, ok := err.(HTTPError); ok {
				writeJSONError(w, he.StatusCode(), he.Error())
				logRefreshEnd(r, he.StatusCode(), time.Since(start), err)
				return
			}
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			logRefreshEnd(r, http.StatusInternalServerError, time.Since(start), err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		resp := types.RefreshResponse{
			Outcome:       string(res.Outcome),
			Updated:       res.Updated,
			FinalCount:    res.FinalCount,
			Reason:        res.Reason,
			WindowVersion: res.Version,
		}
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		logRefreshEnd(r, http.StatusOK, time.Since(start), nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Service.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("waiting"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// triggerBackgroundRefresh kicks off an async cycle after a skip-list change
// so the window catches up without the client waiting on source fetches.
// Shutdown still cancels it through serverBaseCtx.
func triggerBackgroundRefresh(ref Refresher) {
	if ref == nil {
		return
	}
	go func() {
		_, _ = ref.RunOnce(serverBaseCtx)
	}()
}
