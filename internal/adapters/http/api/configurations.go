package api

import (
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/weights"
)

// createConfigurationRequest is the body of POST /v1/weight-configurations.
type createConfigurationRequest struct {
	Name         string                   `json:"name"`
	Description  string                   `json:"description"`
	Weights      model.PerformanceWeights `json:"weights"`
	ContextRules []model.ContextRule      `json:"contextRules"`
	Active       *bool                    `json:"active"`
	Priority     int                      `json:"priority"`
	ValidFrom    *time.Time               `json:"validFrom"`
	ValidUntil   *time.Time               `json:"validUntil"`
	CreatedBy    string                   `json:"createdBy"`
}

func (c createConfigurationRequest) input() weights.CreateInput {
	in := weights.CreateInput{
		Name:         c.Name,
		Description:  c.Description,
		Weights:      c.Weights,
		ContextRules: c.ContextRules,
		Active:       c.Active,
		Priority:     c.Priority,
		ValidUntil:   c.ValidUntil,
		CreatedBy:    c.CreatedBy,
	}
	if c.ValidFrom != nil {
		in.ValidFrom = *c.ValidFrom
	}
	return in
}

// updateConfigurationRequest is the body of PATCH /v1/weight-configurations/{id}.
// Absent fields are left unchanged.
type updateConfigurationRequest struct {
	Name         *string                   `json:"name"`
	Description  *string                   `json:"description"`
	Weights      *model.PerformanceWeights `json:"weights"`
	ContextRules *[]model.ContextRule      `json:"contextRules"`
	Active       *bool                     `json:"active"`
	Priority     *int                      `json:"priority"`
	ValidFrom    *time.Time                `json:"validFrom"`
	ValidUntil   *time.Time                `json:"validUntil"`
}

func (u updateConfigurationRequest) input() weights.UpdateInput {
	return weights.UpdateInput(u)
}

// handleListConfigurations handles GET /v1/weight-configurations.
func (s *Server) handleListConfigurations(w http.ResponseWriter, r *http.Request) {
	configs, err := s.deps.GetWeightConfigurations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, configs)
}

// handleCreateConfiguration handles POST /v1/weight-configurations.
func (s *Server) handleCreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req createConfigurationRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := s.deps.CreateWeightConfiguration(r.Context(), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// handleGetConfiguration handles GET /v1/weight-configurations/{id}.
func (s *Server) handleGetConfiguration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	cfg, err := s.deps.GetWeightConfiguration(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if cfg == nil {
		writeError(w, errors.Wrapf(ErrNotFound, "weight configuration %s", id))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

// handleUpdateConfiguration handles PATCH /v1/weight-configurations/{id}.
func (s *Server) handleUpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req updateConfigurationRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	cfg, err := s.deps.UpdateWeightConfiguration(r.Context(), id, req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	if cfg == nil {
		writeError(w, errors.Wrapf(ErrNotFound, "weight configuration %s", id))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
