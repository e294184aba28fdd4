package cli

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

func TestParseSelections(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    map[string]int
		wantErr bool
	}{
		{"empty", nil, nil, false},
		{"single", []string{"iron_plate=1"}, map[string]int{"iron_plate": 1}, false},
		{"multiple", []string{"iron_plate=1", "copper_wire=2"}, map[string]int{"iron_plate": 1, "copper_wire": 2}, false},
		{"missing equals", []string{"iron_plate"}, nil, true},
		{"missing item", []string{"=1"}, nil, true},
		{"bad index", []string{"iron_plate=abc"}, nil, true},
		{"negative index", []string{"iron_plate=-1"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSelections(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseSelections(%v) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSelections(%v) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	if got := parseFormats(""); len(got) != 1 || got[0] != "dot" {
		t.Errorf("parseFormats(\"\") = %v, want [dot]", got)
	}
	want := []string{"svg", "png"}
	if got := parseFormats("svg,png"); !reflect.DeepEqual(got, want) {
		t.Errorf("parseFormats(\"svg,png\") = %v, want %v", got, want)
	}
}

func TestParseRate(t *testing.T) {
	if got, err := parseRate("4.5"); err != nil || got != 4.5 {
		t.Errorf("parseRate(\"4.5\") = %v, %v", got, err)
	}
	if _, err := parseRate("fast"); err == nil {
		t.Error("parseRate(\"fast\") expected error")
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		target string
		format string
		multi  bool
		want   string
	}{
		{"no output", "", "iron_plate", "svg", false, "iron_plate.svg"},
		{"single with extension", "chain.svg", "iron_plate", "svg", false, "chain.svg"},
		{"single without extension", "chain", "iron_plate", "svg", false, "chain.svg"},
		{"multi strips extension", "chain.svg", "iron_plate", "png", true, "chain.png"},
		{"multi bare base", "out/chain", "iron_plate", "dot", true, "out/chain.dot"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.target, tt.format, tt.multi); got != tt.want {
				t.Errorf("outputPath(%q, %q, %q, %v) = %q, want %q", tt.output, tt.target, tt.format, tt.multi, got, tt.want)
			}
		})
	}
}

func TestCacheDirHonorsXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	got, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error = %v", err)
	}
	if want := filepath.Join(dir, appName); got != want {
		t.Errorf("cacheDir() = %q, want %q", got, want)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"solve", "layout", "render", "view", "serve", "session", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()
	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read captured output: %v", err)
	}
	return string(data)
}

func TestPrintPlanSummaryLiteralPercent(t *testing.T) {
	// Item IDs are free-form catalog strings and may contain percent signs;
	// the summary must print them verbatim.
	p := &plan.Plan{
		TargetID:   "acid_50%",
		TargetRate: 4,
		Needs: map[string]plan.Need{
			"acid_50%": {ItemID: "acid_50%", Rate: 4, Machines: 2, Target: true},
		},
		Warnings: []string{"waste sludge_10% dropped: no disposal recipe"},
	}

	out := captureStdout(t, func() { printPlanSummary(p, false) })
	if !strings.Contains(out, "acid_50%") {
		t.Errorf("summary missing item ID, got %q", out)
	}
	if !strings.Contains(out, "sludge_10%") {
		t.Errorf("summary missing warning text, got %q", out)
	}
	if strings.Contains(out, "%!") {
		t.Errorf("summary contains format artifacts: %q", out)
	}
}

func TestLoadCatalogRequiresPath(t *testing.T) {
	if _, err := loadCatalog(""); err == nil {
		t.Error("loadCatalog(\"\") expected error")
	}
}
