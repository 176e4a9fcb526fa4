package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/seamcarver/internal/config"
	"github.com/matzehuels/seamcarver/internal/server"
	"github.com/matzehuels/seamcarver/pkg/jobs"
)

// jobCleanupInterval is how often expired job records are purged.
const jobCleanupInterval = 10 * time.Minute

// serveCommand creates the HTTP server command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		mongoURI string
		noCache  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the carving API over HTTP",
		Long: `Serve the carving API over HTTP.

  POST /v1/carve?width=&height=&direction=&format=   carve the image in the body
  POST /v1/energy?format=                            energy map of the image in the body
  GET  /v1/jobs, /v1/jobs/{id}                       carve job records
  GET  /healthz

Results are cached in the configured cache backend. Job records are kept in
memory unless a MongoDB URI is configured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			if mongoURI == "" {
				mongoURI = c.cfg.Server.Mongo.URI
			}
			return c.runServe(cmd.Context(), addr, mongoURI, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI for job records (default: in memory)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, mongoURI string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := c.newJobStore(ctx, mongoURI)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	go cleanupJobs(ctx, store)

	srv := server.New(runner, store, c.Logger, server.Options{
		MaxUploadBytes: c.cfg.Server.MaxUploadBytes,
		Timeout:        c.cfg.Server.Timeout.Duration,
	})
	printInfo("Listening on %s", StyleValue.Render(addr))
	printKeyValue("cache", c.cacheBackend(noCache))
	printKeyValue("jobs", jobBackend(mongoURI))
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	c.Logger.Info("server stopped")
	return nil
}

func (c *CLI) newJobStore(ctx context.Context, uri string) (jobs.Store, error) {
	if uri == "" {
		c.Logger.Debug("job store", "backend", "memory")
		return jobs.NewMemoryStore(), nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, err := jobs.NewMongoStore(connectCtx, uri, c.cfg.Server.Mongo.Database)
	if err != nil {
		return nil, fmt.Errorf("connect job store: %w", err)
	}
	c.Logger.Debug("job store", "backend", "mongo", "database", c.cfg.Server.Mongo.Database)
	return store, nil
}

// cleanupJobs purges expired job records until ctx is done.
func cleanupJobs(ctx context.Context, store jobs.Store) {
	logger := loggerFromContext(ctx)
	ticker := time.NewTicker(jobCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Cleanup(ctx); err != nil {
				logger.Warn("job cleanup failed", "err", err)
			}
		}
	}
}

func (c *CLI) cacheBackend(noCache bool) string {
	if noCache {
		return config.BackendNone
	}
	return c.cfg.Cache.Backend
}

func jobBackend(uri string) string {
	if uri == "" {
		return "memory"
	}
	return "mongo"
}
