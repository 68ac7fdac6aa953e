// Package api exposes the scoring engine over JSON HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/weights"
)

// maxBodyBytes bounds request bodies; analytics batches are the largest.
const maxBodyBytes = 4 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine implementation.
type Dependencies interface {
	// Intake
	SubmitActivity(ctx context.Context, s model.ActivitySubmission) (bool, error)
	GetXPStanding(ctx context.Context, userID string) (model.XPStanding, error)
	GetUserAwards(ctx context.Context, userID string) []model.Award
	GetXPLeaderboard(ctx context.Context, n int) ([]model.XPStanding, error)
	GetIntakeStats(ctx context.Context) model.IntakeStats

	// Scoring
	CalculatePerformanceScore(ctx context.Context, m model.PerformanceMetrics, req model.ScoringRequest) (model.PerformanceCalculationResult, error)
	ValidateRawMetrics(ctx context.Context, raw map[string]any) model.ValidationResult
	ValidateActivityData(ctx context.Context, a model.ActivityData) model.ValidationResult
	GetPerformanceAnalytics(ctx context.Context, samples []model.PerformanceMetrics) (model.PerformanceAnalytics, error)
	OptimizeWeights(ctx context.Context, sc model.ScoringContext, samples []model.PerformanceMetrics) (model.WeightOptimizationResult, error)

	// XP
	CalculateXP(ctx context.Context, a model.ActivityData) (model.XPCalculationResult, error)
	GetXPRanges(ctx context.Context) map[model.ActivityType]model.XPRange
	CalculateMaxPossibleXP(ctx context.Context, t model.ActivityType, d model.Difficulty) (int, error)

	// Weight configurations
	GetWeightConfigurations(ctx context.Context) ([]model.WeightConfiguration, error)
	GetWeightConfiguration(ctx context.Context, id string) (*model.WeightConfiguration, error)
	CreateWeightConfiguration(ctx context.Context, in weights.CreateInput) (model.WeightConfiguration, error)
	UpdateWeightConfiguration(ctx context.Context, id string, in weights.UpdateInput) (*model.WeightConfiguration, error)
}

// Server wires HTTP routes for the engine API.
type Server struct {
	deps                Dependencies
	intakeLimiter       rateLimiter
	leaderboardMaxLimit int
}

// NewServer creates an API server over deps.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{deps: deps, leaderboardMaxLimit: defaultLeaderboardMaxLimit}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.Handle("GET /metrics", metricsHandler())
	mux.HandleFunc("GET /v1/stats", MetricsMiddleware(s.handleStats, "stats"))

	mux.HandleFunc("POST /v1/activities", MetricsMiddleware(RateLimit(s.handleSubmitActivity, s.intakeLimiter), "activities"))
	mux.HandleFunc("POST /v1/activities/validate", MetricsMiddleware(s.handleValidateActivity, "activities_validate"))
	mux.HandleFunc("GET /v1/users/{id}/xp", MetricsMiddleware(s.handleGetStanding, "user_xp"))
	mux.HandleFunc("GET /v1/leaderboard", MetricsMiddleware(s.handleGetLeaderboard, "leaderboard"))

	mux.HandleFunc("POST /v1/xp/calculate", MetricsMiddleware(s.handleCalculateXP, "xp_calculate"))
	mux.HandleFunc("GET /v1/xp/ranges", MetricsMiddleware(s.handleXPRanges, "xp_ranges"))
	mux.HandleFunc("GET /v1/xp/max", MetricsMiddleware(s.handleMaxXP, "xp_max"))

	mux.HandleFunc("POST /v1/performance/score", MetricsMiddleware(s.handleScore, "performance_score"))
	mux.HandleFunc("POST /v1/performance/validate", MetricsMiddleware(s.handleValidateMetrics, "performance_validate"))
	mux.HandleFunc("POST /v1/performance/analytics", MetricsMiddleware(s.handleAnalytics, "performance_analytics"))
	mux.HandleFunc("POST /v1/performance/optimize", MetricsMiddleware(s.handleOptimize, "performance_optimize"))

	mux.HandleFunc("GET /v1/weight-configurations", MetricsMiddleware(s.handleListConfigurations, "weight_configurations"))
	mux.HandleFunc("POST /v1/weight-configurations", MetricsMiddleware(s.handleCreateConfiguration, "weight_configurations"))
	mux.HandleFunc("GET /v1/weight-configurations/{id}", MetricsMiddleware(s.handleGetConfiguration, "weight_configuration"))
	mux.HandleFunc("PATCH /v1/weight-configurations/{id}", MetricsMiddleware(s.handleUpdateConfiguration, "weight_configuration"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	// internal details stay out of the response
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decodeJSON reads a single JSON document into v, rejecting unknown fields.
func decodeJSON(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Mark(errors.Wrap(err, "decode request body"), ErrBadRequest)
	}
	return nil
}
