package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/pipeline"
)

// renderOpts holds flag values for the render command.
type renderOpts struct {
	catalogPath  string
	selections   []string
	strict       bool
	noCache      bool
	refresh      bool
	formats      string
	output       string
	detailed     bool
	showRaw      bool
	showDisposal bool
	physics      bool
	frames       int
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render TARGET RATE",
		Short: "Solve a chain and render it as DOT, SVG, PNG, or JSON layout",
		Long: `Render runs the full pipeline: it solves the production chain for
TARGET at RATE items per minute, computes a hierarchical layout, and
writes the requested output formats.

Multiple formats can be produced in one run with a comma-separated
--format list; each artifact is written next to the output path with
the format's extension.`,
		Example: `  aiccalc render iron_plate 4 -c recipes.toml -f svg -o chain.svg
  aiccalc render circuit 12 -c recipes.toml -f dot,png -o circuit
  aiccalc render fuel_rod 1 -c recipes.toml -f svg --detailed --show-raw`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.catalogPath, "catalog", "c", "", "path to the recipe catalog (TOML or JSON)")
	cmd.Flags().StringArrayVarP(&opts.selections, "select", "s", nil, "recipe selection as item=index (repeatable)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail when a waste byproduct has no disposal route")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", pipeline.FormatDOT, "output formats, comma-separated (dot, svg, png, json)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path (defaults to the target ID in the working directory)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include rates, machine counts, and transports in node labels")
	cmd.Flags().BoolVar(&opts.showRaw, "show-raw", false, "include raw source nodes in the layout")
	cmd.Flags().BoolVar(&opts.showDisposal, "show-disposal", false, "include disposal nodes in the layout")
	cmd.Flags().BoolVar(&opts.physics, "physics", false, "run the overlap-resolution physics before rendering")
	cmd.Flags().IntVar(&opts.frames, "frames", pipeline.DefaultPhysicsFrames, "physics frame budget when --physics is set")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, target, rateArg string, opts renderOpts) error {
	rate, err := parseRate(rateArg)
	if err != nil {
		return err
	}
	selections, err := parseSelections(opts.selections)
	if err != nil {
		return err
	}
	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
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
	result, err := runner.Execute(ctx, pipeline.Options{
		TargetID:     target,
		TargetRate:   rate,
		Selections:   selections,
		Strict:       opts.strict,
		Refresh:      opts.refresh,
		ShowRaw:      opts.showRaw,
		ShowDisposal: opts.showDisposal,
		Physics:      opts.physics,
		Frames:       opts.frames,
		Formats:      formats,
		Detailed:     opts.detailed,
		Catalog:      cat,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d format(s)", len(result.Artifacts)))

	printSuccess("%s at %s/min", StyleHighlight.Render(target), StyleNumber.Render(rateArg))
	for _, format := range formats {
		data, ok := result.Artifacts[format]
		if !ok {
			continue
		}
		path := outputPath(opts.output, target, format, len(formats) > 1)
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	for _, w := range result.Plan.Warnings {
		printWarning("%s", w)
	}
	printStats(result.Stats.NeedCount, result.Stats.EdgeCount, result.CacheInfo.RenderHit)

	return nil
}

// outputPath derives the artifact path for a format. With several formats
// the base path loses any extension and gets the format's own.
func outputPath(output, target, format string, multi bool) string {
	if output == "" {
		return target + "." + format
	}
	if !multi && filepath.Ext(output) != "" {
		return output
	}
	base := strings.TrimSuffix(output, filepath.Ext(output))
	return base + "." + format
}
