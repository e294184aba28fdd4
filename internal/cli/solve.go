package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/pipeline"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// solveOpts holds flag values for the solve command.
type solveOpts struct {
	catalogPath string
	selections  []string
	strict      bool
	noCache     bool
	refresh     bool
	output      string
	jsonOut     bool
}

func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve TARGET RATE",
		Short: "Compute a production chain for a target item and rate",
		Long: `Solve computes the full production chain needed to produce TARGET at
RATE items per minute: every intermediate item, its required rate,
machine counts, transport lanes, and waste disposal routing.

Recipe alternatives are chosen with --select item=index. The solved
plan can be written to a file with --output for later rendering.`,
		Example: `  aiccalc solve iron_plate 4 --catalog recipes.toml
  aiccalc solve circuit 12 -c recipes.toml --select copper_wire=1
  aiccalc solve fuel_rod 1 -c recipes.toml --strict --output plan.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.catalogPath, "catalog", "c", "", "path to the recipe catalog (TOML or JSON)")
	cmd.Flags().StringArrayVarP(&opts.selections, "select", "s", nil, "recipe selection as item=index (repeatable)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a waste byproduct has no disposal route")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the solved plan as JSON to this file")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the plan as JSON instead of a summary")

	return cmd
}

func (c *CLI) runSolve(ctx context.Context, target, rateArg string, opts solveOpts) error {
	rate, err := parseRate(rateArg)
	if err != nil {
		return err
	}
	selections, err := parseSelections(opts.selections)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)
	p, cached, err := runner.SolveWithCacheInfo(ctx, pipeline.Options{
		TargetID:   target,
		TargetRate: rate,
		Selections: selections,
		Strict:     opts.strict,
		Refresh:    opts.refresh,
		Catalog:    cat,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Solved %d items", len(p.Needs)))

	if opts.jsonOut {
		data, err := plan.Marshal(p)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	} else {
		printPlanSummary(p, cached)
	}

	if opts.output != "" {
		if err := plan.WriteFile(p, opts.output); err != nil {
			return fmt.Errorf("write plan: %w", err)
		}
		printFile(opts.output)
		printNewline()
		printNextStep("Render it", fmt.Sprintf("%s render %s %s -c %s -f svg -o chain.svg", appName, target, rateArg, opts.catalogPath))
	}

	return nil
}

// printPlanSummary prints one line per chain item, grouped by level.
func printPlanSummary(p *plan.Plan, cached bool) {
	printSuccess("%s at %s/min", StyleHighlight.Render(p.TargetID), StyleNumber.Render(fmt.Sprintf("%g", p.TargetRate)))

	ids := p.NeedIDs()
	sort.SliceStable(ids, func(i, j int) bool {
		return p.Needs[ids[i]].Level < p.Needs[ids[j]].Level
	})

	for _, id := range ids {
		n := p.Needs[id]
		line := fmt.Sprintf("%-24s %9.2f/min", id, n.Rate)
		switch {
		case n.Raw:
			line += "   raw"
		case n.Byproduct:
			line += "   byproduct"
		default:
			line += fmt.Sprintf("   %.2f machines", n.Machines)
		}
		if n.TransportCount > 0 {
			line += fmt.Sprintf("   %s x%.2f", n.Transport, n.TransportCount)
		}
		printDetail("%s", line)
	}

	for _, w := range p.Warnings {
		printWarning("%s", w)
	}

	printStats(len(p.Needs), len(p.Edges), cached)
}
