// Package api exposes the trade graph and the simulation engine over HTTP.
package api

import (
	"context"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/observability"
	"food-trade-twin/internal/storage"
)

// Application identity reported by the root and health endpoints.
const (
	AppName    = "Temporal Graph Food Trade Simulator"
	AppVersion = "0.1.0"
)

// Simulator runs perturbations and renders unmodified snapshots.
type Simulator interface {
	RunSimulation(ctx context.Context, p domain.Perturbation) (*domain.SimulationResult, error)
	Snapshot(ctx context.Context, year int) (*domain.SimulationResult, error)
}

// Server holds the HTTP handlers and their dependencies.
type Server struct {
	sim          Simulator
	graph        storage.GraphStore
	analytics    storage.TradeAnalytics
	prefix       string
	corsOrigin   string
	storeTimeout time.Duration
	upgrader     websocket.Upgrader
	logger       *log.Logger
}

// Options contains configuration for creating a Server.
type Options struct {
	Simulator    Simulator
	Graph        storage.GraphStore
	Analytics    storage.TradeAnalytics // defaults to Graph when it implements TradeAnalytics
	Prefix       string                 // route prefix, e.g. "/api"
	CORSOrigin   string                 // allowed origin, empty means "*"
	StoreTimeout time.Duration          // bounds each store call, 0 means none
	Logger       *log.Logger
}

// NewServer creates a new Server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	analytics := opts.Analytics
	if analytics == nil {
		if a, ok := opts.Graph.(storage.TradeAnalytics); ok {
			analytics = a
		}
	}

	origin := opts.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	s := &Server{
		sim:          opts.Simulator,
		graph:        opts.Graph,
		analytics:    analytics,
		prefix:       "/" + strings.Trim(opts.Prefix, "/"),
		corsOrigin:   origin,
		storeTimeout: opts.StoreTimeout,
		logger:       logger,
	}
	if s.prefix == "/" {
		s.prefix = ""
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Handler returns the root HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", observability.Handler())

	p := s.prefix
	mux.HandleFunc("GET "+p+"/graph/snapshot/{year}", s.handleSnapshot)
	mux.HandleFunc("GET "+p+"/graph/countries", s.handleCountries)
	mux.HandleFunc("GET "+p+"/graph/stats", s.handleStats)
	mux.HandleFunc("GET "+p+"/graph/country/{name}/history", s.handleHistory)
	mux.HandleFunc("GET "+p+"/graph/country/{name}/partners", s.handlePartners)
	mux.HandleFunc("POST "+p+"/simulation/run", s.handleRun)
	mux.HandleFunc("GET "+p+"/simulation/stream", s.handleStream)

	return s.cors(s.logRequests(mux))
}

// storeContext bounds a store call by the configured timeout.
func (s *Server) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout > 0 {
		return context.WithTimeout(ctx, s.storeTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if s.corsOrigin == "*" {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.corsOrigin
}
