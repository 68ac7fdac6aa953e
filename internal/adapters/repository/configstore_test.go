package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
	"github.com/okian/supportxp/internal/domain/weights"
)

func testConfiguration(id string, active bool) model.WeightConfiguration {
	until := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	override := model.WeightOverride{}
	override.Set(model.TechnicalAccuracy, 0.5)
	return model.WeightConfiguration{
		ID:         id,
		Name:       "cfg " + id,
		Weights:    model.EqualWeights(),
		Active:     active,
		ValidUntil: &until,
		ContextRules: []model.ContextRule{{
			ID:        id + "-rule",
			Name:      "rule",
			Condition: model.RuleCondition{ActivityTypes: []model.ActivityType{model.ActivityVerification}},
			Weights:   &override,
		}},
	}
}

func TestConfigStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store, err := NewConfigStore()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if n := store.Count(ctx); n != 0 {
		t.Errorf("expected empty store, got %d", n)
	}

	if err := store.Save(ctx, testConfiguration("a", true)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "cfg a" || len(got.ContextRules) != 1 {
		t.Errorf("unexpected configuration %+v", got)
	}

	// Mutating the returned copy must not leak into the store.
	got.ContextRules[0].Weights.Set(model.TechnicalAccuracy, 0.9)
	*got.ValidUntil = time.Time{}
	again, _ := store.Get(ctx, "a")
	if v, _ := again.ContextRules[0].Weights.Lookup(model.TechnicalAccuracy); v != 0.5 {
		t.Errorf("stored override changed through a copy: %v", v)
	}
	if again.ValidUntil.IsZero() {
		t.Error("stored validity window changed through a copy")
	}
}

func TestConfigStore_Errors(t *testing.T) {
	ctx := context.Background()
	store, _ := NewConfigStore()

	if err := store.Save(ctx, model.WeightConfiguration{Name: "no id"}); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID, got %v", err)
	}

	_, err := store.Get(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !errors.Is(err, weights.ErrNotFound) {
		t.Errorf("expected weights.ErrNotFound to match, got %v", err)
	}
}

func TestConfigStore_ListOrderAndReplace(t *testing.T) {
	ctx := context.Background()
	var total, active int
	store, err := NewConfigStore(
		WithSeed(testConfiguration("b", true), testConfiguration("a", false)),
		WithSnapshotHook(func(tot, act int) { total, active = tot, act }),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	replaced := testConfiguration("b", false)
	replaced.Name = "renamed"
	if err := store.Save(ctx, replaced); err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Fatalf("expected insertion order [b a], got %v", list)
	}
	if list[0].Name != "renamed" {
		t.Errorf("expected replacement in place, got %q", list[0].Name)
	}
	if total != 2 || active != 0 {
		t.Errorf("hook saw total=%d active=%d", total, active)
	}
	if ids := store.IDs(ctx); fmt.Sprint(ids) != "[a b]" {
		t.Errorf("expected sorted ids, got %v", ids)
	}
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store, _ := NewConfigStore()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				id := fmt.Sprintf("cfg-%d-%d", w, i)
				if err := store.Save(ctx, testConfiguration(id, true)); err != nil {
					t.Errorf("save %s: %v", id, err)
				}
				if _, err := store.List(ctx); err != nil {
					t.Errorf("list: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	if n := store.Count(ctx); n != 200 {
		t.Errorf("expected 200 configurations, got %d", n)
	}
}
