package flowgraph

import (
	"sort"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/chain"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// DeleteSubtree removes a node and every ingredient of it that no surviving
// node still needs, cascading transitively. It mutates the live graph and
// the plan in place, the one update path that does not rebuild from
// scratch, and returns the sorted IDs of everything removed.
//
// Liveness is decided by scanning the remaining entries' selected recipes
// rather than maintaining reference counts; O(n²) over the graph, which is
// fine at the chain sizes the physics loop already tolerates.
//
// Two follow-up rules keep the result meaningful: if only raw-material and
// disposal entries survive, disposal nodes are removed as well (nothing
// produces waste anymore), and a fully emptied plan is reset outright.
//
// Deletion does not re-run waste disposal consolidation: a disposal node
// that keeps other producers retains its original accumulated rate.
func (g *Graph) DeleteSubtree(s *chain.Session, p *plan.Plan, nodeID string) []string {
	if _, ok := p.Needs[nodeID]; !ok {
		return nil
	}

	marked := map[string]bool{nodeID: true}
	queue := []string{nodeID}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		if plan.IsDisposalID(id) {
			continue
		}
		recipe, _ := s.SelectedRecipe(id)
		if recipe == nil {
			continue
		}

		for _, ing := range recipe.Ingredients {
			if marked[ing.ItemID] {
				continue
			}
			if _, present := p.Needs[ing.ItemID]; !present {
				continue
			}
			if !neededElsewhere(s, p, marked, ing.ItemID) {
				marked[ing.ItemID] = true
				queue = append(queue, ing.ItemID)
			}
		}
	}

	g.applyDeletion(p, marked)

	deleted := make([]string, 0, len(marked))
	for id := range marked {
		deleted = append(deleted, id)
	}
	sort.Strings(deleted)
	return deleted
}

// neededElsewhere reports whether any still-live, machine-backed entry's
// selected recipe consumes the item.
func neededElsewhere(s *chain.Session, p *plan.Plan, marked map[string]bool, itemID string) bool {
	for otherID, other := range p.Needs {
		if marked[otherID] || otherID == itemID {
			continue
		}
		if other.Raw || other.Disposal || other.Byproduct {
			continue
		}
		recipe, _ := s.SelectedRecipe(otherID)
		if recipe != nil && recipe.Consumes(itemID) {
			return true
		}
	}
	return false
}

func (g *Graph) applyDeletion(p *plan.Plan, marked map[string]bool) {
	for id := range marked {
		delete(g.nodes, id)
		delete(p.Needs, id)
		delete(g.opts.Positions, id)
	}

	filtered := g.edges[:0]
	for _, e := range g.edges {
		if !marked[e.From] && !marked[e.To] {
			filtered = append(filtered, e)
		}
	}
	g.edges = filtered

	planEdges := p.Edges[:0]
	for _, e := range p.Edges {
		if !marked[e.From] && !marked[e.To] {
			planEdges = append(planEdges, e)
		}
	}
	p.Edges = planEdges

	if onlyAuxiliaryLeft(p) {
		g.removeDisposalNodes(p, marked)
	}

	if len(p.Needs) == 0 {
		g.reset()
	}
}

// onlyAuxiliaryLeft reports whether every surviving entry is raw or
// disposal, with nothing producing anymore.
func onlyAuxiliaryLeft(p *plan.Plan) bool {
	if len(p.Needs) == 0 {
		return false
	}
	for _, n := range p.Needs {
		if !n.Raw && !n.Disposal {
			return false
		}
	}
	return true
}

func (g *Graph) removeDisposalNodes(p *plan.Plan, marked map[string]bool) {
	for id, n := range p.Needs {
		if n.Disposal {
			marked[id] = true
			delete(p.Needs, id)
			delete(g.nodes, id)
			delete(g.opts.Positions, id)
		}
	}

	filtered := g.edges[:0]
	for _, e := range g.edges {
		if !marked[e.From] && !marked[e.To] {
			filtered = append(filtered, e)
		}
	}
	g.edges = filtered

	planEdges := p.Edges[:0]
	for _, e := range p.Edges {
		if !marked[e.From] && !marked[e.To] {
			planEdges = append(planEdges, e)
		}
	}
	p.Edges = planEdges
}

// reset clears the graph instead of rendering an empty shell.
func (g *Graph) reset() {
	g.nodes = make(map[string]*Node)
	g.edges = nil
	g.settlingFrames = 0
	g.StopSimulation()
}
