package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/matzehuels/callout/internal/server"
	"github.com/matzehuels/callout/pkg/buildinfo"
	"github.com/matzehuels/callout/pkg/cache"
	"github.com/matzehuels/callout/pkg/config"
	"github.com/matzehuels/callout/pkg/pipeline"
	"github.com/matzehuels/callout/pkg/store"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the placement engine over HTTP",
		Long: `Serve the HTTP API. The [server] section of the config chooses the
backends: Redis for the layout and artifact cache when redis_addr is set,
MongoDB for stored scenes when mongo_uri is set, otherwise scene_dir on
disk, otherwise memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc := c.Config.Server
			if addr != "" {
				sc.Addr = addr
			}
			return c.runServe(cmd.Context(), sc)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+config.DefaultAddr+")")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, sc config.ServerConfig) error {
	logger := loggerFromContext(ctx)

	ch, err := c.serverCache(ctx, sc)
	if err != nil {
		return err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), buildinfo.Get().Version)
	runner := pipeline.NewRunner(ch, keyer, logger)

	st, err := serverStore(ctx, sc)
	if err != nil {
		_ = runner.Close()
		return err
	}

	srv := server.New(server.Config{Runner: runner, Store: st, Logger: logger})
	defer srv.Close()

	printSuccess("Serving on %s", sc.Addr)
	printNextStep("Check it", "curl http://"+displayAddr(sc.Addr)+"/healthz")

	err = srv.ListenAndServe(ctx, sc.Addr)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// serverCache picks Redis when configured, else the local cache.
func (c *CLI) serverCache(ctx context.Context, sc config.ServerConfig) (cache.Cache, error) {
	if sc.RedisAddr == "" {
		return c.newCache(false)
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     sc.RedisAddr,
		Password: sc.RedisPassword,
		DB:       sc.RedisDB,
		Prefix:   sc.RedisPrefix,
	})
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("using redis cache", "addr", sc.RedisAddr)
	return rc, nil
}

// serverStore picks MongoDB, then a scene directory, then memory.
func serverStore(ctx context.Context, sc config.ServerConfig) (store.Store, error) {
	logger := loggerFromContext(ctx)
	switch {
	case sc.MongoURI != "":
		st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: sc.MongoURI, Database: sc.MongoDatabase})
		if err != nil {
			return nil, err
		}
		logger.Info("using mongo scene store", "database", sc.MongoDatabase)
		return st, nil
	case sc.SceneDir != "":
		st, err := store.NewFileStore(sc.SceneDir)
		if err != nil {
			return nil, err
		}
		logger.Info("using file scene store", "dir", st.Dir())
		return st, nil
	}
	logger.Warn("scenes are kept in memory and lost on exit")
	return store.NewMemoryStore(), nil
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
