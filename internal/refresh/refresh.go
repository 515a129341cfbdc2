// Package refresh orchestrates the periodic fetch cycle: fetch every ICS
// source, parse and expand the payloads, and hand the batch to the window
// manager. It is the single writer driving UpdateWindow; cache invalidation
// happens inside the manager, so this loop never has to sequence it.
package refresh

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"calbotd/internal/source"
	"calbotd/internal/window"
)

// defaultHorizon bounds recurrence expansion when the caller does not.
const defaultHorizon = 7 * 24 * time.Hour

// Config wires a Loop.
type Config struct {
	Fetcher *source.Fetcher
	Sources []source.Source
	Manager *window.Manager
	// Skips is consulted during filtering; may be nil.
	Skips window.SkipChecker
	// Horizon bounds how far ahead recurrences are expanded.
	Horizon time.Duration
	Logger  zerolog.Logger
}

// Loop runs refresh cycles, either on demand (RunOnce) or on a cron schedule.
type Loop struct {
	fetcher *source.Fetcher
	sources []source.Source
	mgr     *window.Manager
	skips   window.SkipChecker
	horizon time.Duration
	logger  zerolog.Logger
	cron    *cron.Cron
}

// New constructs a Loop from Config.
func New(cfg Config) *Loop {
	h := cfg.Horizon
	if h <= 0 {
		h = defaultHorizon
	}
	return &Loop{
		fetcher: cfg.Fetcher,
		sources: cfg.Sources,
		mgr:     cfg.Manager,
		skips:   cfg.Skips,
		horizon: h,
		logger:  cfg.Logger,
	}
}

// RunOnce performs a single fetch-parse-update cycle. Fetch and parse
// failures of individual sources are tolerated; only a contract violation
// from the window core is returned as an error.
func (l *Loop) RunOnce(ctx context.Context) (window.UpdateResult, error) {
	start := time.Now()
	now := start

	results, errs := l.fetcher.FetchAll(ctx, l.sources)
	sourceErrors.Add(float64(len(errs)))

	parsed := make([]source.ParsedEvent, 0)
	for _, res := range results {
		evs, err := source.Parse(res.Source, res.Body, l.logger)
		if err != nil {
			sourceErrors.Inc()
			l.logger.Error().Err(err).Str("id", res.Source.ID).Msg("ics parse failed")
			continue
		}
		parsed = append(parsed, evs...)
	}
	batch := source.Expand(parsed, now, now.Add(l.horizon), l.logger)

	res, err := l.mgr.UpdateWindow(batch, now, l.skips, len(l.sources))
	cycleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		cyclesTotal.WithLabelValues("error").Inc()
		return res, err
	}
	cyclesTotal.WithLabelValues(string(res.Outcome)).Inc()
	windowEvents.Set(float64(res.FinalCount))
	return res, nil
}

// Start schedules RunOnce on the given cron spec (e.g. "*/5 * * * *").
func (l *Loop) Start(spec string) error {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if _, err := l.RunOnce(context.Background()); err != nil {
			l.logger.Error().Err(err).Msg("refresh cycle failed")
		}
	})
	if err != nil {
		return err
	}
	l.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule and returns a context that is done once any
// in-flight cycle completes.
func (l *Loop) Stop() context.Context {
	if l.cron == nil {
		return context.Background()
	}
	return l.cron.Stop()
}
