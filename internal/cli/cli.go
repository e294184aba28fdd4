// Package cli implements the aiccalc command-line interface.
//
// This package provides commands for solving production chains from a recipe
// catalog, rendering them as graphs, exploring them interactively, and
// serving the solver over HTTP. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - solve: Compute a production chain for a target item and rate
//   - render: Generate DOT, SVG, PNG, or JSON layout artifacts
//   - view: Explore a chain interactively in the terminal
//   - serve: Expose the solver as an HTTP API
//   - session: Manage saved workspaces
//   - cache: Manage the pipeline result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/buildinfo"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/cache"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/catalog"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "aiccalc"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "aiccalc computes and visualizes factory production chains",
		Long:         `aiccalc is a production chain calculator: give it a recipe catalog, a target item, and a rate, and it solves the machine counts, material flows, and waste routing for the whole chain, with graph layout and rendering built in.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sessionCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cch, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cch, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/aiccalc/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// loadCatalog reads and validates the catalog file behind --catalog.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("a catalog file is required (--catalog)")
	}
	return catalog.Load(path)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDOT}
	}
	return strings.Split(s, ",")
}

// parseSelections parses repeated item=index recipe selections.
func parseSelections(raw []string) (map[string]int, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]int, len(raw))
	for _, entry := range raw {
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid selection %q (expected item=index)", entry)
		}
		idx, err := strconv.Atoi(parts[1])
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid recipe index in %q", entry)
		}
		out[parts[0]] = idx
	}
	return out, nil
}

// parseRate parses the RATE positional argument.
func parseRate(s string) (float64, error) {
	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid rate %q: expected items per minute", s)
	}
	return rate, nil
}
