/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the reward points server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (defaults, rewards.yaml, REWARDS_* env)
  2. Apply command-line flag overrides
  3. Initialize SQLite store and seed it from the data file, if any
  4. Build the rewards engine from the configured tiers
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides server.port)
  -db      SQLite database path (overrides database.path)
           Use ":memory:" for in-memory database
  -data    JSON transactions file to seed on startup (overrides data.file)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database, seeded from a JSON export
  ./server -db="./data/rewards.db" -data="./data/transactions.json"

  # Simulate a slow backend
  REWARDS_DATA_DELAY=1500ms ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/reward-points/api"
	"github.com/warp/reward-points/config"
	"github.com/warp/reward-points/logging"
	"github.com/warp/reward-points/rewards"
	"github.com/warp/reward-points/source"
	"github.com/warp/reward-points/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// Flags
	port := flag.Int("port", cfg.Server.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	dataFile := flag.String("data", cfg.Data.File, "JSON transactions file to seed on startup")
	flag.Parse()

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("failed to initialize database")
	}
	defer store.Close()

	if *dataFile != "" {
		n, err := source.Seed(context.Background(), source.File{Path: *dataFile}, store)
		if err != nil {
			log.Warn().Err(err).Str("file", *dataFile).Msg("failed to seed transactions")
		} else {
			log.Info().Int("transactions", n).Str("file", *dataFile).Msg("seeded transactions")
		}
	}

	engine := rewards.NewEngine(
		rewards.WithTiers(cfg.Tiers()),
		rewards.WithObserver(logging.RewardsObserver(log)),
	)

	// Initialize handler
	handler := api.NewHandler(store, api.HandlerConfig{
		Engine:          engine,
		Source:          source.Delayed{Source: store, Delay: cfg.Data.Delay},
		ItemsPerPage:    cfg.Pagination.ItemsPerPage,
		MaxPagesDisplay: cfg.Pagination.MaxPagesDisplay,
		SeedFile:        *dataFile,
	})

	// Create router
	router := api.NewRouter(handler, api.RouterConfig{
		Logger:         log,
		StaticDir:      cfg.Server.StaticDir,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Int("port", *port).Msgf("server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}
