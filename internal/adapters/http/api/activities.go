package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
)

// activityRequest is the body of POST /v1/activities.
type activityRequest struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	Activity    model.ActivityData `json:"activity"`
	SubmittedAt *time.Time         `json:"submittedAt,omitempty"`
}

func (a activityRequest) validate() error {
	switch {
	case strings.TrimSpace(a.ID) == "":
		return errors.Mark(errors.New("missing id"), ErrBadRequest)
	case strings.TrimSpace(a.UserID) == "":
		return errors.Mark(errors.New("missing userId"), ErrBadRequest)
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// handleSubmitActivity handles POST /v1/activities. The XP award happens
// asynchronously; a repeated id is acknowledged without a second award.
func (s *Server) handleSubmitActivity(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := decodeJSON(r, w, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	sub := model.ActivitySubmission{ID: req.ID, UserID: req.UserID, Activity: req.Activity}
	if req.SubmittedAt != nil {
		sub.SubmittedAt = *req.SubmittedAt
	}

	duplicate, err := s.deps.SubmitActivity(r.Context(), sub)
	if err != nil {
		writeError(w, err)
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// handleValidateActivity handles POST /v1/activities/validate.
func (s *Server) handleValidateActivity(w http.ResponseWriter, r *http.Request) {
	var a model.ActivityData
	if err := decodeJSON(r, w, &a); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.ValidateActivityData(r.Context(), a))
}
