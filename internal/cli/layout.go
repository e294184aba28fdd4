package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/pipeline"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/plan"
)

// layoutOpts holds flag values for the layout command.
type layoutOpts struct {
	catalogPath  string
	selections   []string
	strict       bool
	noCache      bool
	refresh      bool
	output       string
	showRaw      bool
	showDisposal bool
	physics      bool
	frames       int
}

func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts

	cmd := &cobra.Command{
		Use:   "layout TARGET RATE",
		Short: "Solve a chain and print its node positions as JSON",
		Long: `Layout solves the production chain for TARGET at RATE items per
minute and computes the hierarchical node placement, optionally
relaxed by the overlap-resolution physics. The result is the same
layout document the render and view commands work from.`,
		Example: `  aiccalc layout iron_plate 4 -c recipes.toml
  aiccalc layout circuit 12 -c recipes.toml --physics -o circuit_layout.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.catalogPath, "catalog", "c", "", "path to the recipe catalog (TOML or JSON)")
	cmd.Flags().StringArrayVarP(&opts.selections, "select", "s", nil, "recipe selection as item=index (repeatable)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a waste byproduct has no disposal route")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the layout JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&opts.showRaw, "show-raw", false, "include raw source nodes")
	cmd.Flags().BoolVar(&opts.showDisposal, "show-disposal", false, "include disposal nodes")
	cmd.Flags().BoolVar(&opts.physics, "physics", false, "run the overlap-resolution physics")
	cmd.Flags().IntVar(&opts.frames, "frames", pipeline.DefaultPhysicsFrames, "physics frame budget when --physics is set")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, target, rateArg string, opts layoutOpts) error {
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
	pipeOpts := pipeline.Options{
		TargetID:     target,
		TargetRate:   rate,
		Selections:   selections,
		Strict:       opts.strict,
		Refresh:      opts.refresh,
		ShowRaw:      opts.showRaw,
		ShowDisposal: opts.showDisposal,
		Physics:      opts.physics,
		Frames:       opts.frames,
		Catalog:      cat,
		Logger:       logger,
	}

	prog := newProgress(logger)
	p, err := runner.Solve(ctx, pipeOpts)
	if err != nil {
		return err
	}
	layout, err := runner.ComputeLayout(ctx, p, pipeOpts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Placed %d nodes", len(layout.Nodes)))

	if opts.output != "" {
		if err := plan.WriteLayoutFile(layout, opts.output); err != nil {
			return fmt.Errorf("write layout: %w", err)
		}
		printFile(opts.output)
		return nil
	}
	data, err := plan.MarshalLayout(layout)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
