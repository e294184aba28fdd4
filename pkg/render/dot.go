// Package render exports solved chains as Graphviz DOT and rasterized
// artifacts (SVG, PNG).
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// Options configures chain rendering.
type Options struct {
	// Detailed includes rates, machine counts, and transport lines in node
	// labels. When false, only the item ID is shown.
	Detailed bool
}

// ToDOT converts a solved plan to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG] or [RenderPNG].
//
// Raw inputs are drawn with grey fill, disposal sinks with dashed outlines,
// and the target with a bold border.
func ToDOT(p *plan.Plan, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph chain {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, id := range p.NeedIDs() {
		n := p.Needs[id]
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range p.Edges {
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, fmt.Sprintf("%.2f/min", e.Rate))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n plan.Need, detailed bool) string {
	name := n.ItemID
	if n.Disposal {
		name = "dispose " + n.OriginalItemID
	}
	if !detailed {
		return name
	}

	parts := []string{fmt.Sprintf("%.2f/min", n.Rate)}
	if n.Machines > 0 {
		parts = append(parts, fmt.Sprintf("machines: %.2f", n.Machines))
	}
	if n.TransportCount > 0 {
		parts = append(parts, fmt.Sprintf("%s x%v", n.Transport, n.TransportCount))
	}
	return name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n plan.Need, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case n.Target:
		attrs = append(attrs, "penwidth=2")
	case n.Raw:
		attrs = append(attrs, "fillcolor=lightgrey")
	case n.Disposal:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case n.Byproduct:
		attrs = append(attrs, "fillcolor=lightyellow")
	}
	return attrs
}
