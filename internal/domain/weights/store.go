package weights

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/validation"
)

// Repository persists weight configurations. Get returns an error matching
// ErrNotFound for unknown ids. Implementations must be safe for concurrent
// use and must never expose a partially applied Save to readers.
type Repository interface {
	Get(ctx context.Context, id string) (model.WeightConfiguration, error)
	Save(ctx context.Context, cfg model.WeightConfiguration) error
	List(ctx context.Context) ([]model.WeightConfiguration, error)
}

// CreateInput describes a new weight configuration. Active defaults to true.
type CreateInput struct {
	Name         string
	Description  string
	Weights      model.PerformanceWeights
	ContextRules []model.ContextRule
	Active       *bool
	Priority     int
	ValidFrom    time.Time
	ValidUntil   *time.Time
	CreatedBy    string
}

// UpdateInput holds the fields to change; nil fields are kept.
type UpdateInput struct {
	Name         *string
	Description  *string
	Weights      *model.PerformanceWeights
	ContextRules *[]model.ContextRule
	Active       *bool
	Priority     *int
	ValidFrom    *time.Time
	ValidUntil   *time.Time
}

// StoreOption applies a configuration option to the Store.
type StoreOption func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how configuration and rule ids are minted.
func WithIDGenerator(newID func() string) StoreOption {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// Store validates and records weight configurations.
type Store struct {
	// mu serializes read-modify-write mutations; reads go straight to the repository.
	mu        sync.Mutex
	repo      Repository
	validator *validation.Validator
	now       func() time.Time
	newID     func() string
}

// NewStore creates a Store over repo.
func NewStore(repo Repository, v *validation.Validator, opts ...StoreOption) *Store {
	if v == nil {
		v = validation.New()
	}
	s := &Store{
		repo:      repo,
		validator: v,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in and stores it under a freshly minted id.
func (s *Store) Create(ctx context.Context, in CreateInput) (model.WeightConfiguration, error) {
	now := s.now().UTC()
	cfg := model.WeightConfiguration{
		ID:           s.newID(),
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Weights:      in.Weights,
		ContextRules: append([]model.ContextRule(nil), in.ContextRules...),
		Active:       in.Active == nil || *in.Active,
		Priority:     in.Priority,
		ValidFrom:    in.ValidFrom,
		ValidUntil:   in.ValidUntil,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if cfg.ValidFrom.IsZero() {
		cfg.ValidFrom = now
	}
	if err := s.check(cfg); err != nil {
		return model.WeightConfiguration{}, err
	}
	s.assignRuleIDs(cfg.ContextRules)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.repo.Save(ctx, cfg); err != nil {
		return model.WeightConfiguration{}, errors.Wrap(err, "save weight configuration")
	}
	return cfg, nil
}

// Update merges in into the configuration with the given id. It returns
// (nil, nil) when id is unknown.
func (s *Store) Update(ctx context.Context, id string, in UpdateInput) (*model.WeightConfiguration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load weight configuration %s", id)
	}

	if in.Name != nil {
		cfg.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		cfg.Description = *in.Description
	}
	if in.Weights != nil {
		cfg.Weights = *in.Weights
	}
	if in.ContextRules != nil {
		cfg.ContextRules = append([]model.ContextRule(nil), (*in.ContextRules)...)
	}
	if in.Active != nil {
		cfg.Active = *in.Active
	}
	if in.Priority != nil {
		cfg.Priority = *in.Priority
	}
	if in.ValidFrom != nil {
		cfg.ValidFrom = *in.ValidFrom
	}
	if in.ValidUntil != nil {
		until := *in.ValidUntil
		cfg.ValidUntil = &until
	}
	cfg.UpdatedAt = s.now().UTC()

	if err := s.check(cfg); err != nil {
		return nil, err
	}
	s.assignRuleIDs(cfg.ContextRules)

	if err := s.repo.Save(ctx, cfg); err != nil {
		return nil, errors.Wrapf(err, "save weight configuration %s", id)
	}
	return &cfg, nil
}

// Get returns the configuration with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*model.WeightConfiguration, error) {
	cfg, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load weight configuration %s", id)
	}
	return &cfg, nil
}

// List returns the active configurations, highest priority first.
func (s *Store) List(ctx context.Context) ([]model.WeightConfiguration, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list weight configurations")
	}
	active := lo.Filter(all, func(c model.WeightConfiguration, _ int) bool { return c.Active })
	SortByPriority(active)
	return active, nil
}

// Effective returns the configurations selectable at now, highest priority first.
func (s *Store) Effective(ctx context.Context, now time.Time) ([]model.WeightConfiguration, error) {
	active, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Filter(active, func(c model.WeightConfiguration, _ int) bool { return c.IsEffective(now) }), nil
}

func (s *Store) check(cfg model.WeightConfiguration) error {
	if !cfg.Weights.IsNormalized() {
		return errors.WithDetailf(ErrInvalidWeightSum, "weights sum to %.3f", cfg.Weights.Sum())
	}
	if res := s.validator.ValidateWeights(cfg.Weights); !res.Valid {
		return invalid("%s", strings.Join(res.Errors, "; "))
	}
	if cfg.Name == "" {
		return invalid("name is required")
	}
	if cfg.ValidUntil != nil && !cfg.ValidUntil.After(cfg.ValidFrom) {
		return invalid("validUntil must be after validFrom")
	}
	for i, rule := range cfg.ContextRules {
		if strings.TrimSpace(rule.Name) == "" {
			return invalid("context rule %d: name is required", i)
		}
		if rule.Weights == nil && rule.Adjustment == nil {
			return invalid("context rule %q: needs a weight override or an adjustment", rule.Name)
		}
		if rule.Weights != nil {
			if res := s.validator.ValidateOverride(*rule.Weights); !res.Valid {
				return invalid("context rule %q: %s", rule.Name, strings.Join(res.Errors, "; "))
			}
		}
	}
	return nil
}

func (s *Store) assignRuleIDs(rules []model.ContextRule) {
	for i := range rules {
		if rules[i].ID == "" {
			rules[i].ID = s.newID()
		}
	}
}

func invalid(format string, args ...any) error {
	return errors.Mark(errors.Newf("%s: %s", ErrInvalidConfiguration.Error(), fmt.Sprintf(format, args...)), ErrInvalidConfiguration)
}
