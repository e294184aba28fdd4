package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	key := "plan:abc123"
	value := []byte(`{"target":"iron_plate"}`)

	if _, hit, _ := c.Get(ctx, key); hit {
		t.Error("Get() before Set reported a hit")
	}

	if err := c.Set(ctx, key, value, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, hit, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() after Set reported a miss")
	}
	if string(got) != string(value) {
		t.Errorf("Get() = %q, want %q", got, value)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), -time.Second); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() returned expired entry")
	}
}

func TestFileCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("Get() after Delete reported a hit")
	}
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestNullCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("NullCache reported a hit")
	}
}

func TestPlanKeyDeterministic(t *testing.T) {
	k := NewDefaultKeyer()

	a := k.PlanKey("cat1", PlanKeyOpts{
		TargetID:   "iron_plate",
		TargetRate: 4,
		Selections: map[string]int{"iron_plate": 1, "iron_ore": 0},
	})
	b := k.PlanKey("cat1", PlanKeyOpts{
		TargetID:   "iron_plate",
		TargetRate: 4,
		Selections: map[string]int{"iron_ore": 0, "iron_plate": 1},
	})
	if a != b {
		t.Errorf("PlanKey not deterministic across map order: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "plan:") {
		t.Errorf("PlanKey = %q, want plan: prefix", a)
	}
}

func TestPlanKeyVariesWithInputs(t *testing.T) {
	k := NewDefaultKeyer()
	base := PlanKeyOpts{TargetID: "iron_plate", TargetRate: 4}

	baseKey := k.PlanKey("cat1", base)

	tests := []struct {
		name string
		hash string
		opts PlanKeyOpts
	}{
		{"different catalog", "cat2", base},
		{"different target", "cat1", PlanKeyOpts{TargetID: "gear", TargetRate: 4}},
		{"different rate", "cat1", PlanKeyOpts{TargetID: "iron_plate", TargetRate: 8}},
		{"strict mode", "cat1", PlanKeyOpts{TargetID: "iron_plate", TargetRate: 4, Strict: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := k.PlanKey(tt.hash, tt.opts); got == baseKey {
				t.Errorf("PlanKey collided with base key for %s", tt.name)
			}
		})
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user42")

	opts := PlanKeyOpts{TargetID: "iron_plate", TargetRate: 4}
	got := scoped.PlanKey("cat1", opts)
	want := "user42:" + inner.PlanKey("cat1", opts)
	if got != want {
		t.Errorf("PlanKey() = %q, want %q", got, want)
	}
}

func TestHash(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	c := Hash([]byte("world"))

	if a != b {
		t.Error("Hash not deterministic")
	}
	if a == c {
		t.Error("Hash collision on different inputs")
	}
	if len(a) != 64 {
		t.Errorf("Hash length = %d, want 64", len(a))
	}
}
