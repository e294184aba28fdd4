package chain

import (
	"fmt"
	"sort"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/errors"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// processDisposal turns accumulated waste rates into disposal nodes and
// producer → disposal edges, then clears the accumulator (one-shot per
// solve).
//
// For each waste item: the producers are the non-raw entries whose selected
// recipe lists the item as a product; the disposal recipe is the FIRST
// catalog recipe consuming the item (disposal recipe choice is not
// user-configurable). Machine count is wasteRate / (ingredientPerCycle /
// cycleMinutes). The disposal node is keyed disposal_<item> and placed one
// level below everything present. Every producer edge carries the full waste
// rate; the flow is deliberately not split proportionally across producers.
//
// A waste item with no producer in the graph or no disposal recipe is
// handled per the session's policy: dropped with a warning, or a
// MISSING_DISPOSAL_ROUTE error under WasteStrict.
func processDisposal(s *Session, p *plan.Plan) error {
	wasteIDs := make([]string, 0, len(s.waste))
	for id := range s.waste {
		wasteIDs = append(wasteIDs, id)
	}
	sort.Strings(wasteIDs)

	for _, wasteID := range wasteIDs {
		wasteRate := s.waste[wasteID]
		if wasteRate <= rateEpsilon {
			continue
		}

		producers := wasteProducers(s, p, wasteID)
		if len(producers) == 0 {
			if err := dropWaste(s, p, wasteID, "no producer in graph"); err != nil {
				return err
			}
			continue
		}

		disposals := s.Catalog.DisposalRecipesFor(wasteID)
		if len(disposals) == 0 {
			if err := dropWaste(s, p, wasteID, "no disposal recipe"); err != nil {
				return err
			}
			continue
		}

		disposal := disposals[0]
		var ingredientAmount float64
		for _, ing := range disposal.Ingredients {
			if ing.ItemID == wasteID {
				ingredientAmount = ing.Amount
				break
			}
		}
		machines := wasteRate / (ingredientAmount / disposal.CycleMinutes())

		disposalID := plan.DisposalID(wasteID)
		p.Needs[disposalID] = plan.Need{
			ItemID:         disposalID,
			Rate:           wasteRate,
			Level:          p.MaxLevel() + 1,
			Disposal:       true,
			OriginalItemID: wasteID,
			Machines:       machines,
		}
		for _, producerID := range producers {
			p.Edges = append(p.Edges, plan.Edge{
				From:     producerID,
				To:       disposalID,
				Rate:     wasteRate,
				Disposal: true,
			})
		}
	}

	s.resetWaste()
	return nil
}

// wasteProducers returns the sorted IDs of non-raw entries whose selected
// recipe produces the waste item.
func wasteProducers(s *Session, p *plan.Plan, wasteID string) []string {
	var producers []string
	for _, id := range p.NeedIDs() {
		entry := p.Needs[id]
		if entry.Raw || entry.Disposal {
			continue
		}
		recipe, _ := s.SelectedRecipe(id)
		if recipe != nil && recipe.Produces(wasteID) {
			producers = append(producers, id)
		}
	}
	return producers
}

func dropWaste(s *Session, p *plan.Plan, wasteID, reason string) error {
	if s.WastePolicy == WasteStrict {
		return errors.New(errors.ErrCodeMissingDisposalRoute, "waste %q: %s", wasteID, reason)
	}
	s.Logger.Warn("dropping waste byproduct", "item", wasteID, "reason", reason)
	p.Warnings = append(p.Warnings, fmt.Sprintf("waste %s dropped: %s", wasteID, reason))
	return nil
}
