package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/cache"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]catalog.Item{
			{ID: "iron_ore", Transport: "belt"},
			{ID: "iron_plate", Transport: "belt"},
		},
		[]catalog.Building{{ID: "smelter"}},
		[]catalog.Recipe{
			{
				Building:    "smelter",
				Time:        30,
				Ingredients: []catalog.Stack{{ItemID: "iron_ore", Amount: 2}},
				Products:    []catalog.Stack{{ItemID: "iron_plate", Amount: 1}},
			},
		},
		nil,
	)
	if err != nil {
		t.Fatalf("catalog.New() error = %v", err)
	}
	return cat
}

func TestOptionsValidation(t *testing.T) {
	cat := testCatalog(t)

	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"valid", Options{Catalog: cat, TargetID: "iron_plate", TargetRate: 4}, false},
		{"missing catalog", Options{TargetID: "iron_plate", TargetRate: 4}, true},
		{"missing target", Options{Catalog: cat, TargetRate: 4}, true},
		{"zero rate", Options{Catalog: cat, TargetID: "iron_plate"}, true},
		{"negative rate", Options{Catalog: cat, TargetID: "iron_plate", TargetRate: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Catalog: testCatalog(t), TargetID: "iron_plate", TargetRate: 4}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if opts.Frames != DefaultPhysicsFrames {
		t.Errorf("Frames = %d, want %d", opts.Frames, DefaultPhysicsFrames)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatDOT {
		t.Errorf("Formats = %v, want [dot]", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"dot", "svg", "png", "json"}); err != nil {
		t.Errorf("ValidateFormats() error = %v", err)
	}
	if err := ValidateFormats([]string{"pdf"}); err == nil {
		t.Error("ValidateFormats() accepted unsupported format")
	}
}

func TestRunnerSolve(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	p, hit, err := r.SolveWithCacheInfo(ctx, Options{
		Catalog:    testCatalog(t),
		TargetID:   "iron_plate",
		TargetRate: 4,
	})
	if err != nil {
		t.Fatalf("SolveWithCacheInfo() error = %v", err)
	}
	if hit {
		t.Error("first solve reported a cache hit with NullCache")
	}

	plate, ok := p.Needs["iron_plate"]
	if !ok {
		t.Fatal("plan missing target need")
	}
	if plate.Rate != 4 {
		t.Errorf("iron_plate rate = %v, want 4", plate.Rate)
	}
	ore, ok := p.Needs["iron_ore"]
	if !ok {
		t.Fatal("plan missing iron_ore need")
	}
	if ore.Rate != 8 {
		t.Errorf("iron_ore rate = %v, want 8", ore.Rate)
	}
	if !ore.Raw {
		t.Error("iron_ore not marked raw")
	}
}

func TestRunnerSolveCaching(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Catalog: testCatalog(t), TargetID: "iron_plate", TargetRate: 4}

	if _, hit, err := r.SolveWithCacheInfo(ctx, opts); err != nil || hit {
		t.Fatalf("first solve: hit = %v, err = %v", hit, err)
	}
	p, hit, err := r.SolveWithCacheInfo(ctx, opts)
	if err != nil {
		t.Fatalf("second solve error = %v", err)
	}
	if !hit {
		t.Error("second solve missed the cache")
	}
	if p.Needs["iron_ore"].Rate != 8 {
		t.Errorf("cached plan iron_ore rate = %v, want 8", p.Needs["iron_ore"].Rate)
	}

	// Refresh bypasses the cache.
	refreshOpts := opts
	refreshOpts.Refresh = true
	if _, hit, err := r.SolveWithCacheInfo(ctx, refreshOpts); err != nil || hit {
		t.Errorf("refresh solve: hit = %v, err = %v", hit, err)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	result, err := r.Execute(ctx, Options{
		Catalog:    testCatalog(t),
		TargetID:   "iron_plate",
		TargetRate: 4,
		ShowRaw:    true,
		Formats:    []string{FormatDOT, FormatJSON},
		Detailed:   true,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if result.Stats.NeedCount != 2 {
		t.Errorf("NeedCount = %d, want 2", result.Stats.NeedCount)
	}
	if result.PlanHash == "" {
		t.Error("PlanHash not set")
	}
	if len(result.Layout.Nodes) != 2 {
		t.Errorf("layout has %d nodes, want 2", len(result.Layout.Nodes))
	}

	dot := string(result.Artifacts[FormatDOT])
	if !strings.Contains(dot, "iron_plate") || !strings.Contains(dot, "iron_ore") {
		t.Errorf("DOT artifact missing nodes:\n%s", dot)
	}
	if len(result.Artifacts[FormatJSON]) == 0 {
		t.Error("JSON artifact empty")
	}
}

func TestRunnerLayoutHidesRaw(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	opts := Options{Catalog: testCatalog(t), TargetID: "iron_plate", TargetRate: 4}
	p, err := r.Solve(ctx, opts)
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}

	layout, err := r.ComputeLayout(ctx, p, opts)
	if err != nil {
		t.Fatalf("ComputeLayout() error = %v", err)
	}
	for _, n := range layout.Nodes {
		if n.ItemID == "iron_ore" {
			t.Error("raw node present in layout with ShowRaw=false")
		}
	}
}
