package plan

import (
	"path/filepath"
	"testing"
)

func fixture() *Plan {
	return &Plan{
		TargetID:   "iron_plate",
		TargetRate: 4,
		Needs: map[string]Need{
			"iron_plate": {ItemID: "iron_plate", Rate: 4, Target: true, Machines: 2},
			"iron_ore":   {ItemID: "iron_ore", Rate: 8, Raw: true, Level: 1},
			DisposalID("slag"): {
				ItemID:         DisposalID("slag"),
				OriginalItemID: "slag",
				Rate:           2,
				Level:          2,
				Disposal:       true,
				Machines:       1.0 / 3.0,
			},
		},
		Edges: []Edge{
			{From: "iron_ore", To: "iron_plate", Rate: 8},
			{From: "iron_plate", To: DisposalID("slag"), Rate: 2, Disposal: true},
		},
		Warnings: []string{"waste goo dropped: no disposal recipe"},
	}
}

func TestDisposalID(t *testing.T) {
	if got := DisposalID("slag"); got != "disposal_slag" {
		t.Errorf("DisposalID() = %q, want disposal_slag", got)
	}
	if !IsDisposalID("disposal_slag") {
		t.Error("IsDisposalID(disposal_slag) = false")
	}
	if IsDisposalID("slag") {
		t.Error("IsDisposalID(slag) = true")
	}
}

func TestNeedIDsSorted(t *testing.T) {
	p := fixture()
	ids := p.NeedIDs()
	want := []string{"disposal_slag", "iron_ore", "iron_plate"}
	if len(ids) != len(want) {
		t.Fatalf("NeedIDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("NeedIDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestMaxLevel(t *testing.T) {
	p := fixture()
	if got := p.MaxLevel(); got != 2 {
		t.Errorf("MaxLevel() = %d, want 2", got)
	}
	empty := &Plan{}
	if got := empty.MaxLevel(); got != 0 {
		t.Errorf("empty MaxLevel() = %d, want 0", got)
	}
}

func TestTotalMachines(t *testing.T) {
	p := fixture()
	want := 2 + 1.0/3.0
	if got := p.TotalMachines(); got != want {
		t.Errorf("TotalMachines() = %v, want %v", got, want)
	}
}

func TestPlanRoundTrip(t *testing.T) {
	p := fixture()

	data, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if back.TargetID != p.TargetID || back.TargetRate != p.TargetRate {
		t.Errorf("target = %q/%v, want %q/%v", back.TargetID, back.TargetRate, p.TargetID, p.TargetRate)
	}
	if len(back.Needs) != len(p.Needs) {
		t.Errorf("got %d needs, want %d", len(back.Needs), len(p.Needs))
	}
	if back.Needs["iron_ore"].Rate != 8 || !back.Needs["iron_ore"].Raw {
		t.Error("iron_ore need corrupted in round trip")
	}
	d := back.Needs[DisposalID("slag")]
	if !d.Disposal || d.OriginalItemID != "slag" {
		t.Error("disposal need corrupted in round trip")
	}
	if len(back.Edges) != 2 || !back.Edges[1].Disposal {
		t.Errorf("edges corrupted: %v", back.Edges)
	}
	if len(back.Warnings) != 1 {
		t.Errorf("warnings corrupted: %v", back.Warnings)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	a, err := Marshal(fixture())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(fixture())
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Error("Marshal() output not deterministic")
	}
}

func TestPlanFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.json")
	if err := WriteFile(fixture(), path); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	back, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if back.TargetID != "iron_plate" {
		t.Errorf("TargetID = %q, want iron_plate", back.TargetID)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("ReadFile() of missing file succeeded")
	}
}

func TestLayoutPositions(t *testing.T) {
	l := Layout{
		Nodes: []PlacedNode{
			{ItemID: "a", X: 1, Y: 2},
			{ItemID: "b", X: -3, Y: 150},
		},
		ShowRaw: true,
	}
	pos := l.Positions()
	if pos["a"] != [2]float64{1, 2} || pos["b"] != [2]float64{-3, 150} {
		t.Errorf("Positions() = %v", pos)
	}
}

func TestLayoutFileRoundTrip(t *testing.T) {
	l := Layout{
		Nodes: []PlacedNode{{ItemID: "a", X: 1, Y: 2, Width: 140, Height: 70, Level: 1}},
		Edges: []Edge{{From: "a", To: "b", Rate: 3}},
	}
	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile() error = %v", err)
	}
	back, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile() error = %v", err)
	}
	if len(back.Nodes) != 1 || back.Nodes[0].Width != 140 {
		t.Errorf("layout corrupted: %+v", back)
	}
}
