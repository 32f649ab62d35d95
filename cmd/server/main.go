// Package main runs the HTTP API server:
// - Graph queries: snapshots, countries, history, partners, stats
// - Simulation: single runs and the websocket stream
// - Prometheus metrics on the API port and optionally a separate port
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-trade-twin/internal/api"
	"food-trade-twin/internal/config"
	"food-trade-twin/internal/observability"
	"food-trade-twin/internal/simulation"
	"food-trade-twin/internal/stores"
)

func main() {
	// Load .env file if exists
	if err := config.LoadEnvFile(".env"); err != nil {
		log.Printf("Warning: failed to read .env: %v", err)
	}

	// Parse flags (env vars as defaults)
	addr := flag.String("addr", config.Env("API_ADDR", ":8000"), "HTTP listen address")
	apiPrefix := flag.String("api-prefix", config.Env("API_PREFIX", "/api"), "Route prefix for API endpoints")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (optional analytics backend)")
	sqlitePath := flag.String("sqlite-path", os.Getenv("SQLITE_PATH"), "SQLite database file")
	useMemory := flag.Bool("use-memory", config.EnvBool("USE_MEMORY", false), "Use in-memory storage")
	useFixtures := flag.Bool("fixtures", config.EnvBool("FIXTURES", false), "Seed the in-memory store with the synthetic fixture graph")
	fetchTimeout := flag.Duration("fetch-timeout", config.EnvDuration("FETCH_TIMEOUT", 10*time.Second), "Timeout for each graph store call")
	corsOrigin := flag.String("cors-origin", config.Env("CORS_ALLOWED_ORIGIN", "*"), "Allowed CORS origin")
	metricsAddr := flag.String("metrics-addr", os.Getenv("METRICS_ADDR"), "Separate Prometheus metrics address (optional)")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *useFixtures && !*useMemory {
		logger.Fatal("--fixtures requires --use-memory")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create stores
	st, err := stores.Open(ctx, stores.Config{
		UseMemory:     *useMemory,
		Fixtures:      *useFixtures,
		FixtureSeed:   42,
		PostgresDSN:   *postgresDSN,
		SQLitePath:    *sqlitePath,
		ClickhouseDSN: *clickhouseDSN,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer st.Close()

	engine := simulation.NewEngine(simulation.EngineOptions{
		Fetcher:      st.Primary,
		FetchTimeout: *fetchTimeout,
		Logger:       log.New(os.Stdout, "[simulation] ", log.LstdFlags|log.Lshortfile),
	})

	apiServer := api.NewServer(api.Options{
		Simulator:    engine,
		Graph:        st.Primary,
		Analytics:    st.Analytics,
		Prefix:       *apiPrefix,
		CORSOrigin:   *corsOrigin,
		StoreTimeout: *fetchTimeout,
		Logger:       log.New(os.Stdout, "[api] ", log.LstdFlags),
	})

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if *metricsAddr != "" {
		go startMetricsServer(*metricsAddr, logger)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Starting %s v%s on %s (prefix %q)", api.AppName, api.AppVersion, *addr, *apiPrefix)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server error: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Graceful shutdown failed: %v", err)
	}

	logger.Println("Shutdown complete")
}

// startMetricsServer serves Prometheus metrics on a dedicated address.
func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Starting metrics server on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}
