package api

import (
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
)

// scoreRequest is the body of POST /v1/performance/score.
type scoreRequest struct {
	Metrics model.PerformanceMetrics `json:"metrics"`
	model.ScoringRequest
}

type samplesRequest struct {
	Context model.ScoringContext       `json:"context"`
	Samples []model.PerformanceMetrics `json:"samples"`
}

// handleScore handles POST /v1/performance/score.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.CalculatePerformanceScore(r.Context(), req.Metrics, req.ScoringRequest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleValidateMetrics handles POST /v1/performance/validate. The body is
// decoded loosely so missing and unknown fields are reported, not rejected.
func (s *Server) handleValidateMetrics(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		writeError(w, errors.Mark(errors.Wrap(err, "decode request body"), ErrBadRequest))
		return
	}
	writeJSON(w, http.StatusOK, s.deps.ValidateRawMetrics(r.Context(), raw))
}

// handleAnalytics handles POST /v1/performance/analytics.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	var req samplesRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.GetPerformanceAnalytics(r.Context(), req.Samples)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleOptimize handles POST /v1/performance/optimize.
func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	var req samplesRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.OptimizeWeights(r.Context(), req.Context, req.Samples)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
