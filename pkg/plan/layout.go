package plan

import (
	"encoding/json"
	"fmt"
	"os"
)

// PlacedNode is a needs-map entry with a computed screen position.
type PlacedNode struct {
	ItemID string  `json:"item_id" bson:"item_id"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Level  int     `json:"level" bson:"level"`
	Pinned bool    `json:"pinned,omitempty" bson:"pinned,omitempty"`
}

// Layout is the serialized output of the flowgraph engine: node positions
// plus the visible edge list, after hierarchical placement and any physics
// relaxation frames.
type Layout struct {
	Nodes []PlacedNode `json:"nodes" bson:"nodes"`
	Edges []Edge       `json:"edges" bson:"edges"`

	// Display toggles the layout was built with.
	ShowRaw      bool `json:"show_raw" bson:"show_raw"`
	ShowDisposal bool `json:"show_disposal" bson:"show_disposal"`
}

// Positions returns node positions keyed by item ID. This is the map handed
// back to the flowgraph for the position-preserving relayout mode.
func (l *Layout) Positions() map[string][2]float64 {
	m := make(map[string][2]float64, len(l.Nodes))
	for _, n := range l.Nodes {
		m[n.ItemID] = [2]float64{n.X, n.Y}
	}
	return m
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
