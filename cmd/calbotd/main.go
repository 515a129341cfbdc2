package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"calbotd/internal/common/fsutil"
	"calbotd/internal/config"
	"calbotd/internal/httpapi"
	"calbotd/internal/refresh"
	"calbotd/internal/respcache"
	"calbotd/internal/skipstore"
	"calbotd/internal/source"
	"calbotd/internal/window"
)

func main() {
	// Flags with environment variable defaults
	defaultConfig := "/etc/calbotd/config.yaml"
	if v := os.Getenv("CALBOTD_CONFIG"); v != "" {
		defaultConfig = v
	}
	configPath := flag.String("config", defaultConfig, "Path to config file (yaml/json/toml)")
	addr := flag.String("addr", "", "HTTP listen address (overrides config if set)")
	once := flag.Bool("once", false, "Run one refresh cycle, print the outcome, and exit")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins (enables CORS)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// A missing config is tolerable for local runs: fall back to defaults.
		cfg = config.Config{}
		cfg.Normalize()
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	logger := newLogger(cfg.LogLevel)
	if err != nil {
		if fsutil.PathExists(*configPath) {
			logger.Fatal().Err(err).Str("config", *configPath).Msg("config file exists but failed to load")
		}
		logger.Warn().Str("config", *configPath).Msg("config file not found, using defaults")
	}

	cache := respcache.New(cfg.CacheMaxSize)
	skips, err := skipstore.Load(cfg.SkipFile)
	if err != nil {
		logger.Fatal().Err(err).Str("skip_file", cfg.SkipFile).Msg("failed to load skip store")
	}

	mgr := window.NewWithConfig(window.ManagerConfig{
		WindowSize:       cfg.WindowSize,
		ServerTimezone:   cfg.ServerTimezone,
		FallbackTimezone: cfg.FallbackTimezone,
		Logger:           &logger,
		Invalidator:      cache,
	})

	sources := make([]source.Source, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		sources = append(sources, source.Source{ID: s.ID, URL: s.URL})
	}
	loop := refresh.New(refresh.Config{
		Fetcher: source.NewFetcher(cfg.ICSCacheDir, logger),
		Sources: sources,
		Manager: mgr,
		Skips:   skips,
		Horizon: time.Duration(cfg.HorizonDays) * 24 * time.Hour,
		Logger:  logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		res, err := loop.RunOnce(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("refresh cycle failed")
		}
		logger.Info().Str("outcome", string(res.Outcome)).Int("final_count", res.FinalCount).Msg(res.Reason)
		return
	}

	// Prime the window before serving, then hand the schedule to cron.
	if _, err := loop.RunOnce(ctx); err != nil {
		logger.Error().Err(err).Msg("initial refresh failed")
	}
	if err := loop.Start(cfg.RefreshCron); err != nil {
		logger.Fatal().Err(err).Str("refresh", cfg.RefreshCron).Msg("invalid refresh schedule")
	}

	httpapi.SetLogger(logger)
	httpapi.SetBaseContext(ctx)
	corsEnabled := cfg.CORSEnabled
	origins := cfg.CORSOrigins
	if *corsOrigins != "" {
		corsEnabled = true
		origins = splitCSV(*corsOrigins)
	}
	if corsEnabled {
		httpapi.SetCORSOptions(true, origins,
			[]string{"GET", "POST", "DELETE", "OPTIONS"},
			[]string{"Content-Type", "X-Log-Level"})
	}

	mux := httpapi.NewMux(httpapi.Deps{
		Service:   mgr,
		Cache:     cache,
		Skips:     skips,
		Refresher: loop,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Int("sources", len(sources)).Msg("calbotd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	cancel()
	<-loop.Stop().Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

// newLogger builds the process logger; console output on a TTY, JSON otherwise.
func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	var w = zerolog.New(os.Stderr)
	if fi, statErr := os.Stderr.Stat(); statErr == nil && fi.Mode()&os.ModeCharDevice != 0 {
		w = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return w.Level(lvl).With().Timestamp().Logger()
}

// splitCSV splits a comma-separated flag value, trimming blanks.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
