package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/copystructure"
	"github.com/samber/lo"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/weights"
)

var _ weights.Repository = (*ConfigStore)(nil)

// snapshot is an immutable view of all stored configurations.
type snapshot struct {
	byID  map[string]model.WeightConfiguration
	order []string // insertion order of ids
}

// ConfigStore is a copy-on-write, in-memory weights.Repository.
//
// Writers build a new snapshot under mu and publish it with a single atomic
// store, so readers always observe either the old or the new configuration
// set in full. Values are deep-copied on the way in and out, so callers can
// never mutate shared state through the pointer fields of a configuration.
type ConfigStore struct {
	mu        sync.Mutex
	snap      atomic.Pointer[snapshot]
	seed      []model.WeightConfiguration
	onPublish func(total, active int)
}

// NewConfigStore creates an empty store, applying options and seeding.
func NewConfigStore(opts ...Option) (*ConfigStore, error) {
	s := &ConfigStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(&snapshot{byID: map[string]model.WeightConfiguration{}})
	for _, cfg := range s.seed {
		if err := s.Save(context.Background(), cfg); err != nil {
			return nil, err
		}
	}
	s.seed = nil
	return s, nil
}

// Get returns a copy of the configuration with id.
func (s *ConfigStore) Get(_ context.Context, id string) (model.WeightConfiguration, error) {
	cfg, ok := s.snap.Load().byID[id]
	if !ok {
		return model.WeightConfiguration{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return clone(cfg)
}

// Save inserts or replaces cfg.
func (s *ConfigStore) Save(_ context.Context, cfg model.WeightConfiguration) error {
	if cfg.ID == "" {
		return ErrEmptyID
	}
	stored, err := clone(cfg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := &snapshot{
		byID:  make(map[string]model.WeightConfiguration, len(cur.byID)+1),
		order: cur.order,
	}
	for id, c := range cur.byID {
		next.byID[id] = c
	}
	if _, exists := cur.byID[cfg.ID]; !exists {
		next.order = append(append([]string(nil), cur.order...), cfg.ID)
	}
	next.byID[cfg.ID] = stored
	s.snap.Store(next)

	if s.onPublish != nil {
		s.onPublish(len(next.byID), lo.CountBy(lo.Values(next.byID), func(c model.WeightConfiguration) bool { return c.Active }))
	}
	return nil
}

// List returns copies of every configuration in insertion order.
func (s *ConfigStore) List(_ context.Context) ([]model.WeightConfiguration, error) {
	cur := s.snap.Load()
	out := make([]model.WeightConfiguration, 0, len(cur.order))
	for _, id := range cur.order {
		c, err := clone(cur.byID[id])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Count returns the number of stored configurations.
func (s *ConfigStore) Count(_ context.Context) int {
	return len(s.snap.Load().byID)
}

// IDs returns the stored ids sorted lexically.
func (s *ConfigStore) IDs(_ context.Context) []string {
	ids := lo.Keys(s.snap.Load().byID)
	sort.Strings(ids)
	return ids
}

func clone(cfg model.WeightConfiguration) (model.WeightConfiguration, error) {
	v, err := copystructure.Copy(cfg)
	if err != nil {
		return model.WeightConfiguration{}, errors.Wrap(errors.Mark(err, ErrCopyState), "clone weight configuration")
	}
	return v.(model.WeightConfiguration), nil
}
