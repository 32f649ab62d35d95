package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/storage"
)

// DefaultPartnerYear is used when the partners query has no year.
const DefaultPartnerYear = 2021

// maxPartnerLimit caps the partners limit parameter.
const maxPartnerLimit = 100

// runRequest is the body of a simulation run.
type runRequest struct {
	Area              string  `json:"area"`
	Year              int     `json:"year"`
	Commodity         string  `json:"commodity"`
	ProductionChange  float64 `json:"production_change"`
	ImportChange      float64 `json:"import_change"`
	ClimateStress     float64 `json:"climate_stress"`
	PolicyRestriction bool    `json:"policy_restriction"`
}

// perturbation validates the request and converts it to an engine input.
func (req runRequest) perturbation() (domain.Perturbation, error) {
	if req.Area == "" {
		return domain.Perturbation{}, fmt.Errorf("%w: area is required", storage.ErrInvalidInput)
	}
	if req.Year <= 0 {
		return domain.Perturbation{}, fmt.Errorf("%w: year is required", storage.ErrInvalidInput)
	}
	commodity := req.Commodity
	if commodity == "" {
		commodity = domain.AllCommodities
	}
	return domain.Perturbation{
		Area:                req.Area,
		Year:                req.Year,
		Commodity:           commodity,
		ProductionChangePct: req.ProductionChange,
		ImportChangePct:     req.ImportChange,
		ClimateStress:       req.ClimateStress,
		PolicyRestriction:   req.PolicyRestriction,
	}, nil
}

// decodeRunRequest parses and validates a run request body.
func decodeRunRequest(r io.Reader) (domain.Perturbation, error) {
	var req runRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return domain.Perturbation{}, fmt.Errorf("%w: malformed request body: %v", storage.ErrInvalidInput, err)
	}
	return req.perturbation()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"name":    AppName,
		"version": AppVersion,
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": AppVersion,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil {
		badRequest(w, "year must be an integer")
		return
	}

	result, err := s.sim.Snapshot(r.Context(), year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	names, err := s.graph.ListCountries(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.analytics == nil {
		s.writeError(w, r, fmt.Errorf("%w: no analytics store configured", storage.ErrUnavailable))
		return
	}

	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	stats, err := s.analytics.Stats(ctx)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	states, err := s.graph.CountryHistory(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Country not found"})
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	history := make([]domain.CountryYear, 0, len(states))
	for _, st := range states {
		history = append(history, st.History())
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handlePartners(w http.ResponseWriter, r *http.Request) {
	if s.analytics == nil {
		s.writeError(w, r, fmt.Errorf("%w: no analytics store configured", storage.ErrUnavailable))
		return
	}

	name := r.PathValue("name")
	q := r.URL.Query()

	year := DefaultPartnerYear
	if v := q.Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			badRequest(w, "year must be an integer")
			return
		}
		year = y
	}

	limit := storage.DefaultPartnerLimit
	if v := q.Get("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 || l > maxPartnerLimit {
			badRequest(w, fmt.Sprintf("limit must be an integer between 1 and %d", maxPartnerLimit))
			return
		}
		limit = l
	}

	ctx, cancel := s.storeContext(r.Context())
	defer cancel()

	partners, err := s.analytics.Partners(ctx, name, year, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if partners == nil {
		partners = []*domain.PartnerSummary{}
	}
	writeJSON(w, http.StatusOK, partners)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	p, err := decodeRunRequest(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.sim.RunSimulation(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
