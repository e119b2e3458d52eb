// ABOUTME: Tests for the AI model registry
// ABOUTME: Covers the single-active invariant, self-healing reads, and concurrent switches

package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// activeCount checks the invariant directly against the table.
func activeCount(t *testing.T, s *SQLiteStore) int {
	t.Helper()
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM models WHERE active = 1`).Scan(&count); err != nil {
		t.Fatalf("counting active rows: %v", err)
	}
	return count
}

func TestListModels_OrderedByID(t *testing.T) {
	s := newSeededStore(t)

	models, err := s.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 3 {
		t.Fatalf("expected 3 models, got %d", len(models))
	}
	for i, m := range models {
		if m.ID != int64(i+1) {
			t.Errorf("expected id %d at position %d, got %d", i+1, i, m.ID)
		}
	}
}

func TestGetModelByID_NotFound(t *testing.T) {
	s := newSeededStore(t)

	_, err := s.GetModelByID(context.Background(), 999)
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetActiveModel_SelfHealing(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	// Fresh registry has no active row; the read activates the lowest id.
	m, err := s.GetActiveModel(ctx)
	if err != nil {
		t.Fatalf("GetActiveModel failed: %v", err)
	}
	if m.ID != 1 {
		t.Errorf("expected lowest-id model 1, got %d", m.ID)
	}
	if !m.Active {
		t.Error("expected returned model to be marked active")
	}
	if got := activeCount(t, s); got != 1 {
		t.Errorf("expected exactly 1 active row, got %d", got)
	}

	// Idempotent on repeated calls: no flapping.
	again, err := s.GetActiveModel(ctx)
	if err != nil {
		t.Fatalf("GetActiveModel failed: %v", err)
	}
	if again.ID != m.ID {
		t.Errorf("active model flapped: %d then %d", m.ID, again.ID)
	}
	if got := activeCount(t, s); got != 1 {
		t.Errorf("expected exactly 1 active row, got %d", got)
	}
}

func TestGetActiveModel_EmptyRegistry(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetActiveModel(context.Background())
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound on empty registry, got %v", err)
	}
}

func TestSetActiveModel_ExactlyOneActive(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	for _, id := range []int64{1, 3, 2, 2, 1} {
		m, err := s.SetActiveModel(ctx, id)
		if err != nil {
			t.Fatalf("SetActiveModel(%d) failed: %v", id, err)
		}
		if m.ID != id {
			t.Errorf("expected active model %d, got %d", id, m.ID)
		}
		if got := activeCount(t, s); got != 1 {
			t.Errorf("after SetActiveModel(%d): expected 1 active row, got %d", id, got)
		}
	}
}

func TestSetActiveModel_SwitchToLowerID(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	// Switching down in id order updates the new row before the old one in
	// id order, which the partial unique index must not reject.
	if _, err := s.SetActiveModel(ctx, 3); err != nil {
		t.Fatalf("SetActiveModel(3) failed: %v", err)
	}
	m, err := s.SetActiveModel(ctx, 1)
	if err != nil {
		t.Fatalf("SetActiveModel(1) failed: %v", err)
	}
	if m.ID != 1 {
		t.Errorf("expected active model 1, got %d", m.ID)
	}
	if got := activeCount(t, s); got != 1 {
		t.Errorf("expected 1 active row, got %d", got)
	}
}

func TestSetActiveModel_UnknownID(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	if _, err := s.SetActiveModel(ctx, 2); err != nil {
		t.Fatalf("SetActiveModel failed: %v", err)
	}

	_, err := s.SetActiveModel(ctx, 999)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	// The previously active model is unchanged.
	m, err := s.GetActiveModel(ctx)
	if err != nil {
		t.Fatalf("GetActiveModel failed: %v", err)
	}
	if m.ID != 2 {
		t.Errorf("expected active model 2 after failed switch, got %d", m.ID)
	}
}

func TestSetActiveModel_Concurrent(t *testing.T) {
	s := newSeededStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range []int64{1, 2, 3, 1, 2, 3, 1, 2} {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := s.SetActiveModel(ctx, id); err != nil {
				t.Errorf("SetActiveModel(%d): %v", id, err)
			}
		}(id)
	}
	wg.Wait()

	// Exactly one winner, never zero or two.
	if got := activeCount(t, s); got != 1 {
		t.Errorf("expected exactly 1 active row after concurrent switches, got %d", got)
	}
}
