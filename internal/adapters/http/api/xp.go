package api

import (
	"net/http"

	"github.com/okian/supportxp/internal/domain/model"
)

type maxXPResponse struct {
	Type       model.ActivityType `json:"type"`
	Difficulty model.Difficulty   `json:"difficulty"`
	MaxXP      int                `json:"maxXP"`
}

// handleCalculateXP handles POST /v1/xp/calculate.
func (s *Server) handleCalculateXP(w http.ResponseWriter, r *http.Request) {
	var a model.ActivityData
	if err := decodeJSON(r, w, &a); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.deps.CalculateXP(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleXPRanges handles GET /v1/xp/ranges.
func (s *Server) handleXPRanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.GetXPRanges(r.Context()))
}

// handleMaxXP handles GET /v1/xp/max?type=T&difficulty=D.
func (s *Server) handleMaxXP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t := model.ActivityType(q.Get("type"))
	d := model.Difficulty(q.Get("difficulty"))
	maxXP, err := s.deps.CalculateMaxPossibleXP(r.Context(), t, d)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, maxXPResponse{Type: t, Difficulty: d, MaxXP: maxXP})
}
