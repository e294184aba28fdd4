package store

import (
	"context"
	"testing"
	"time"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

func testPlan(target string) *plan.Plan {
	return &plan.Plan{
		TargetID:   target,
		TargetRate: 4,
		Needs: map[string]plan.Need{
			target: {ItemID: target, Rate: 4, Target: true},
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := NewPlanRecord("cat1", testPlan("iron_plate"), map[string]int{"iron_plate": 0})
	if rec.ID == "" {
		t.Fatal("NewPlanRecord() returned empty ID")
	}
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TargetID != "iron_plate" || got.CatalogHash != "cat1" {
		t.Errorf("Get() = %q/%q, want iron_plate/cat1", got.TargetID, got.CatalogHash)
	}
}

func TestMemoryStoreMissing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	if err == nil {
		t.Fatal("Get() of missing record succeeded")
	}
	if code := errors.GetCode(err); code != errors.ErrCodePlanNotFound {
		t.Errorf("GetCode() = %q, want %q", code, errors.ErrCodePlanNotFound)
	}
}

func TestMemoryStoreListOrder(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	old := NewPlanRecord("cat1", testPlan("iron_plate"), nil)
	old.CreatedAt = time.Now().Add(-time.Hour)
	recent := NewPlanRecord("cat1", testPlan("gear"), nil)

	for _, rec := range []*PlanRecord{old, recent} {
		if err := s.Put(ctx, rec); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	recs, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("List() returned %d records, want 2", len(recs))
	}
	if recs[0].ID != recent.ID {
		t.Errorf("List()[0] = %s, want newest record %s", recs[0].ID, recent.ID)
	}

	limited, err := s.List(ctx, 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("List(1) returned %d records, want 1", len(limited))
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	rec := NewPlanRecord("cat1", testPlan("iron_plate"), nil)
	if err := s.Put(ctx, rec); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, rec.ID); err == nil {
		t.Error("Get() after Delete succeeded")
	}
	if err := s.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of missing record error = %v", err)
	}
}
