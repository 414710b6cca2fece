package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fandial/callboard/internal/api"
	"github.com/fandial/callboard/internal/cache"
	"github.com/fandial/callboard/internal/config"
	"github.com/fandial/callboard/internal/control"
	"github.com/fandial/callboard/internal/dashboard"
	"github.com/fandial/callboard/internal/metrics"
	"github.com/fandial/callboard/internal/poller"
	"github.com/fandial/callboard/internal/simulator"
	"github.com/fandial/callboard/internal/types"
	"github.com/fandial/callboard/internal/vapi"
	"github.com/fandial/callboard/internal/websocket"
	"github.com/fandial/callboard/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("metrics_mode", string(cfg.MetricsMode)).
		Dur("poll_interval", cfg.PollInterval).
		Msg("starting callboard server")

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger)
	go hub.Run()

	// Create WebSocket handler
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	// Create dashboard state and call log
	state := dashboard.NewState()
	callLog := cache.NewCallLog()

	// Pick the metrics source
	var source simulator.Source
	switch cfg.MetricsMode {
	case config.ModeRemote:
		source = simulator.NewRemote(cfg.StatsAPIBaseURL, log.Logger)
	default:
		source = simulator.NewSim()
	}

	// Create polling coordinator; the dashboard state is the first subscriber
	// so REST reads and the broadcast below always agree
	coordinator := poller.NewCoordinator(source, cfg.PollInterval, log.Logger)
	coordinator.Subscribe(state.Apply)
	coordinator.Subscribe(func(types.CallStats, types.RevenueData) {
		snap := state.Snapshot()
		data, err := json.Marshal(snap)
		if err != nil {
			log.Error().Err(err).Msg("failed to marshal snapshot")
			return
		}
		hub.Broadcast(data)
	})

	// Create call session and run-state controller
	vapiClient := vapi.NewClient(cfg.Vapi)
	session := vapi.NewSession(vapiClient, cfg.Vapi, cfg.CallPollInterval, callLog, log.Logger)
	controller := control.NewController(coordinator, session, log.Logger)
	controller.OnStateChange(state.SetRunState)

	// Create API handlers
	statsHandler := api.NewStatsHandler(state, callLog, log.Logger)
	agentHandler := api.NewAgentHandler(controller, state, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register routes
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())
	r.Get("/ws", wsHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats/calls", statsHandler.GetCallStats)
		r.Get("/stats/revenue", statsHandler.GetRevenue)
		r.Get("/stats/snapshot", statsHandler.GetSnapshot)
		r.Get("/calls/recent", statsHandler.GetRecentCalls)

		r.Get("/agent/status", agentHandler.GetStatus)
		r.Post("/agent/start", agentHandler.Start)
		r.Post("/agent/stop", agentHandler.Stop)
		r.Post("/agent/pause", agentHandler.Pause)
		r.Get("/agent/config", agentHandler.GetConfig)
		r.Put("/agent/config", agentHandler.UpdateConfig)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the agent first so no snapshot lands mid-shutdown
	controller.Stop()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"callboard"}`)
}
