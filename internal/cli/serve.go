package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/internal/server"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/session"
	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/store"
)

// serveOpts holds flag values for the serve command.
type serveOpts struct {
	catalogPath string
	addr        string
	noCache     bool
	redisAddr   string
	mongoURI    string
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the solver as an HTTP API",
		Long: `Serve starts an HTTP server exposing the solve pipeline: solving,
rendering, saved plans, and workspace sessions.

By default plans live in memory and sessions on disk. Point --mongo at
a MongoDB instance for shared plan storage and --redis at a Redis
instance for shared sessions.`,
		Example: `  aiccalc serve -c recipes.toml
  aiccalc serve -c recipes.toml --addr :9090 --redis localhost:6379
  aiccalc serve -c recipes.toml --mongo mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.catalogPath, "catalog", "c", "", "path to the recipe catalog (TOML or JSON)")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", "", "Redis address for session storage (default: local files)")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", "", "MongoDB URI for plan storage (default: in-memory)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cat, err := loadCatalog(opts.catalogPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	plans, err := newPlanStore(ctx, opts.mongoURI)
	if err != nil {
		return err
	}
	defer plans.Close(context.Background())

	sessions, err := newSessionStore(ctx, opts.redisAddr)
	if err != nil {
		return err
	}
	defer sessions.Close()

	srv := server.New(server.Config{
		Runner:   runner,
		Catalog:  cat,
		Plans:    plans,
		Sessions: sessions,
		Logger:   c.Logger,
	})

	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", opts.addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newPlanStore(ctx context.Context, mongoURI string) (store.PlanStore, error) {
	if mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
}

func newSessionStore(ctx context.Context, redisAddr string) (session.Store, error) {
	if redisAddr == "" {
		return session.NewFileStore("")
	}
	return session.NewRedisStore(ctx, session.RedisConfig{Addr: redisAddr})
}
