package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quickcalc/quickcalc/pkg/calc"
	"github.com/quickcalc/quickcalc/pkg/types"
	"github.com/quickcalc/quickcalc/server/internal/api"
	"github.com/quickcalc/quickcalc/server/internal/auth"
	"github.com/quickcalc/quickcalc/server/internal/config"
	"github.com/quickcalc/quickcalc/server/internal/kv"
	"github.com/quickcalc/quickcalc/server/internal/metrics"
	"github.com/quickcalc/quickcalc/server/internal/notes"
	"github.com/quickcalc/quickcalc/server/internal/store"
	"github.com/quickcalc/quickcalc/server/internal/ws"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	uiDir := flag.String("ui-dir", "", "serve a static web front end from this directory; leave empty to disable")
	flag.Parse()

	var level slog.LevelVar
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: &level}))
	slog.SetDefault(logger)

	slog.Info("quickcalc-server starting", "config", *configPath)

	cfg, watch, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Log.SlogLevel())

	slog.Info("config loaded",
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
		"session_ttl", cfg.Server.SessionTTL,
		"notes_dir", cfg.Notes.Dir,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reg := metrics.New()

	// Notes: file store on disk, in-memory backup when a write fails.
	primary, err := kv.NewFile(cfg.Notes.Dir)
	if err != nil {
		slog.Error("failed to open notes store", "dir", cfg.Notes.Dir, "err", err)
		os.Exit(1)
	}
	repo := notes.New(primary, notes.Options{
		Backup:    kv.NewMemory(),
		OnPersist: reg.ObserveNoteSave,
	})
	if err := repo.Load(); err != nil {
		// A corrupt document leaves the repository empty; keep serving.
		slog.Error("failed to load notes", "err", err)
	}
	saver := notes.NewAutoSaver(repo, cfg.Notes.AutosaveDelay)
	defer saver.Stop()

	// Calculator sessions with background idle eviction.
	st := store.New(cfg.Server.SessionTTL, calc.Options{
		MaxInputLength: cfg.Calculator.MaxInputLength,
		HistoryLimit:   cfg.Calculator.HistoryLimit,
	})

	// WebSocket hub: pushes calculator views to every client of a session.
	hub := ws.New(st, reg)
	go hub.Run(ctx)
	go st.Run(ctx, hub.CloseSession)

	reg.AddGauge(metrics.SessionsActive, "Live calculator sessions.", func() float64 { return float64(st.Count()) })
	reg.AddGauge(metrics.NotesStored, "Stored notes.", func() float64 { return float64(repo.Count()) })
	reg.AddGauge(metrics.WSClients, "Connected WebSocket clients.", func() float64 { return float64(hub.Count()) })

	if watch {
		go func() {
			err := config.Watch(ctx, *configPath, func(next *config.Config) {
				// Only the log level is applied live; everything else needs a restart.
				level.Set(next.Log.SlogLevel())
				slog.Info("config reloaded", "log_level", next.Log.Level)
			})
			if err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	// Combined HTTP server: REST API + WebSocket hub + metrics on HTTPPort.
	httpMux := http.NewServeMux()
	httpMux.Handle("/api/", api.New(st, repo, saver, api.Options{
		Metrics: reg,
		OnInput: func(id string, view types.CalculatorView, err error) {
			hub.Publish(id, view, err)
		},
	}))
	httpMux.Handle(ws.PathPrefix, hub)
	httpMux.Handle("/metrics", reg)

	// Optional: serve a pre-built web front end from a local directory.
	// The "/" catch-all serves index.html for any unknown path (SPA routing).
	if *uiDir != "" {
		httpMux.Handle("/", uiHandler(*uiDir))
		slog.Info("serving UI static files", "dir", *uiDir)
	}

	requireKey := auth.APIKey(
		cfg.Server.Auth.Mode,
		cfg.Server.Auth.EffectiveHeader(),
		cfg.Server.Auth.Key(),
		"/api/v1/health", "/metrics",
	)

	httpSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           requireKey(httpMux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Server.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("quickcalc-server shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	httpSrv.Shutdown(shutdownCtx) //nolint:errcheck
	if n := saver.Flush(); n > 0 {
		slog.Info("notes: flushed pending edits", "count", n)
	}
}

// loadConfig loads file. A missing file is not an error: the defaults are
// used and the file is not watched.
func loadConfig(file string) (cfg *config.Config, watch bool, err error) {
	if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config file not found, using defaults", "path", file)
		return config.Default(), false, nil
	}
	cfg, err = config.Load(file)
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// uiHandler serves static files from dir and falls back to index.html for
// any path that does not name a file, so client-side routes resolve. The
// request path is cleaned as a rooted path first and cannot leave dir.
func uiHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// http.ServeFile refuses paths containing "..", so both branches see
		// the cleaned path.
		r = r.Clone(r.Context())
		r.URL.Path = path.Clean("/" + r.URL.Path)

		name := filepath.Join(dir, filepath.FromSlash(r.URL.Path))
		if _, err := os.Stat(name); os.IsNotExist(err) {
			http.ServeFile(w, r, index)
			return
		}
		files.ServeHTTP(w, r)
	})
}
