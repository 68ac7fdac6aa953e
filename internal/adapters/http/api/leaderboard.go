package api

import (
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
)

const defaultLeaderboardLimit = 10

type standingResponse struct {
	Standing     model.XPStanding `json:"standing"`
	RecentAwards []model.Award    `json:"recentAwards"`
}

// handleGetLeaderboard handles GET /v1/leaderboard?limit=N.
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := defaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, errors.Mark(errors.Newf("invalid limit %q", raw), ErrBadRequest))
			return
		}
		n = v
	}
	if n > s.leaderboardMaxLimit {
		writeError(w, errors.Mark(errors.Newf("limit exceeds %d", s.leaderboardMaxLimit), ErrBadRequest))
		return
	}

	entries, err := s.deps.GetXPLeaderboard(r.Context(), n)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetStanding handles GET /v1/users/{id}/xp.
func (s *Server) handleGetStanding(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	st, err := s.deps.GetXPStanding(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standingResponse{
		Standing:     st,
		RecentAwards: s.deps.GetUserAwards(r.Context(), id),
	})
}
