// Package plan defines the externally visible result of a production-chain
// solve: the needs map plus the edge list, with JSON/BSON serialization.
//
// This is the canonical exchange format between the solver, the layout
// engine, the HTTP API, and saved-plan storage. The format is human-readable
// and designed for round-trip fidelity: solve → export → re-import produces
// identical results.
package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// DisposalPrefix is prepended to a waste item's ID to form the synthetic
// disposal node keyed into the needs map.
const DisposalPrefix = "disposal_"

// DisposalID returns the needs-map key of the disposal node for a waste item.
func DisposalID(itemID string) string { return DisposalPrefix + itemID }

// IsDisposalID reports whether id names a synthetic disposal node.
func IsDisposalID(id string) bool { return strings.HasPrefix(id, DisposalPrefix) }

// Need is one entry of the needs map: everything the rendering layer has to
// know about a single participating item.
type Need struct {
	ItemID string  `json:"item_id" bson:"item_id"`
	Rate   float64 `json:"rate" bson:"rate"`   // items per minute, >= 0
	Level  int     `json:"level" bson:"level"` // layout depth, target = 0

	Raw       bool `json:"raw,omitempty" bson:"raw,omitempty"`
	Target    bool `json:"target,omitempty" bson:"target,omitempty"`
	Byproduct bool `json:"byproduct,omitempty" bson:"byproduct,omitempty"`
	Disposal  bool `json:"disposal,omitempty" bson:"disposal,omitempty"`

	// OriginalItemID holds the waste item a disposal node was created for.
	OriginalItemID string `json:"original_item_id,omitempty" bson:"original_item_id,omitempty"`

	// RecipeIndex is the index into the catalog's recipe list for this item
	// that the solve used. Meaningless for raw and byproduct entries.
	RecipeIndex int `json:"recipe_index,omitempty" bson:"recipe_index,omitempty"`

	Machines       float64 `json:"machines" bson:"machines"`
	Transport      string  `json:"transport,omitempty" bson:"transport,omitempty"`
	TransportCount float64 `json:"transport_count,omitempty" bson:"transport_count,omitempty"`
}

// Edge is a directed flow between two needs-map entries. Ingredient edges
// point ingredient → consumer; disposal edges point producer → disposal node.
// Edges are not deduplicated: several producers may each feed the same
// disposal node.
type Edge struct {
	From     string  `json:"from" bson:"from"`
	To       string  `json:"to" bson:"to"`
	Rate     float64 `json:"rate" bson:"rate"` // items per minute
	Disposal bool    `json:"disposal,omitempty" bson:"disposal,omitempty"`
}

// Plan is a fully solved production chain.
type Plan struct {
	TargetID   string          `json:"target_id" bson:"target_id"`
	TargetRate float64         `json:"target_rate" bson:"target_rate"`
	Needs      map[string]Need `json:"needs" bson:"needs"`
	Edges      []Edge          `json:"edges" bson:"edges"`

	// Warnings carries non-fatal degradations, e.g. waste byproducts that
	// were dropped because no disposal route exists.
	Warnings []string `json:"warnings,omitempty" bson:"warnings,omitempty"`
}

// NeedIDs returns the needs-map keys in sorted order, for deterministic
// iteration.
func (p *Plan) NeedIDs() []string {
	ids := make([]string, 0, len(p.Needs))
	for id := range p.Needs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MaxLevel returns the deepest level currently assigned, or 0 if empty.
func (p *Plan) MaxLevel() int {
	max := 0
	for _, n := range p.Needs {
		if n.Level > max {
			max = n.Level
		}
	}
	return max
}

// TotalMachines sums machine counts over all entries.
func (p *Plan) TotalMachines() float64 {
	var total float64
	for _, n := range p.Needs {
		total += n.Machines
	}
	return total
}

// Marshal serializes a Plan to pretty-printed JSON bytes.
// Edges keep insertion order; the needs map serializes with sorted keys
// (encoding/json sorts map keys), so output is deterministic.
func Marshal(p *Plan) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// Unmarshal deserializes JSON bytes into a Plan.
func Unmarshal(data []byte) (*Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	if p.Needs == nil {
		p.Needs = map[string]Need{}
	}
	return &p, nil
}

// WriteFile writes a Plan to a JSON file with 0644 permissions.
func WriteFile(p *Plan, path string) error {
	data, err := Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadFile reads a Plan from a JSON file.
func ReadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Unmarshal(data)
}
