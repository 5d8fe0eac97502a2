package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/superleague-points/internal/api"
	"github.com/charleschow/superleague-points/internal/config"
	"github.com/charleschow/superleague-points/internal/core/display"
	"github.com/charleschow/superleague-points/internal/events"
	"github.com/charleschow/superleague-points/internal/fanout"
	"github.com/charleschow/superleague-points/internal/store"
	"github.com/charleschow/superleague-points/internal/telemetry"
)

func main() {
	cfg := config.Load()
	level := telemetry.ParseLogLevel(cfg.LogLevel)
	telemetry.Init(level)
	telemetry.Infof("Starting scenario server")

	bus := events.NewBus()

	// ── Presets ─────────────────────────────────────────────────
	presets, err := config.LoadPresets(cfg.PresetsPath)
	if err != nil {
		telemetry.Errorf("Failed to load presets: %v", err)
		os.Exit(1)
	}
	telemetry.Infof("Loaded %d presets", len(presets.Matches))

	// ── Scenario log ────────────────────────────────────────────
	var scenarioStore *store.Store
	if cfg.ScenarioStorePath != "" {
		scenarioStore, err = store.Open(cfg.ScenarioStorePath, cfg.ScenarioStoreMax)
		if err != nil {
			telemetry.Warnf("Scenario store disabled: %v", err)
			scenarioStore = nil
		} else {
			scenarioStore.Attach(bus)
		}
	}

	// ── Console tables ──────────────────────────────────────────
	if level <= slog.LevelDebug {
		display.NewObserver(os.Stderr).Attach(bus)
	}

	// ── HTTP API + fanout ───────────────────────────────────────
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	handler := api.NewHandler(bus, presets, limiter)
	if scenarioStore != nil {
		handler.WithHistory(scenarioStore)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	fanoutServer := fanout.NewServer(bus)
	fanoutServer.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("Listening on %q  rate=%.0f/s burst=%d", addr, cfg.RateLimitPerSec, cfg.RateLimitBurst)

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	telemetry.Infof("Shutting down...")
	fanoutServer.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if scenarioStore != nil {
		scenarioStore.Close()
	}

	snap := telemetry.Snapshot()
	telemetry.Infof("Shutdown complete  requests=%d  computed=%d  coalesced=%d  limited=%d  dropped=%d  stored=%d",
		snap["requests_received"],
		snap["scenarios_computed"],
		snap["coalesced_requests"],
		snap["rate_limited"],
		snap["fanout_dropped"],
		snap["store_writes"],
	)
}
