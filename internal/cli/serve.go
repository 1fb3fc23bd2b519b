package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/levelgen/internal/server"
	"github.com/matzehuels/levelgen/pkg/cache"
	"github.com/matzehuels/levelgen/pkg/observability"
	"github.com/matzehuels/levelgen/pkg/pipeline"
	"github.com/matzehuels/levelgen/pkg/store"
)

const defaultMongoDatabase = "levelgen"

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr          string
	config        string // TOML file with defaults for POST /v1/levels
	redisAddr     string
	redisPassword string
	redisDB       int
	cachePrefix   string
	mongoURI      string
	mongoDB       string
	noCache       bool
	trace         bool // log every hook event
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{addr: ":8080", mongoDB: defaultMongoDatabase}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API for generating and fetching levels.

Levels are kept in memory unless --mongo-uri is set. Results are cached on
disk unless --redis-addr selects Redis or --no-cache disables caching.`,
		Example: `  levelgen serve --addr :9000
  levelgen serve --redis-addr localhost:6379 --mongo-uri mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML file with default generation options")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", "", "Redis address for the result cache")
	cmd.Flags().StringVar(&opts.redisPassword, "redis-password", "", "Redis password")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&opts.cachePrefix, "cache-prefix", "", "namespace for cache keys shared with other deployments")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB URI for the level store")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", opts.mongoDB, "MongoDB database name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "log generation, cache and request events")

	return cmd
}

// runServe wires the cache, store and runner and serves until ctx ends.
func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	defaults, err := loadOptions(opts.config)
	if err != nil {
		return err
	}

	rc, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if opts.cachePrefix != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), opts.cachePrefix)
	}
	runner := pipeline.NewRunner(rc, keyer, logger)
	defer runner.Close()

	var st store.Store = store.NewMemory()
	if opts.mongoURI != "" {
		ms, err := store.NewMongoStore(ctx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return err
		}
		logger.Info("using mongodb level store", "database", opts.mongoDB)
		st = ms
	}
	defer st.Close(context.WithoutCancel(ctx))

	if opts.trace {
		hooks := observability.NewLogHooks(logger)
		observability.SetGenerationHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
	}

	srv := server.New(server.Config{
		Runner:   runner,
		Store:    st,
		Logger:   logger,
		Defaults: &defaults,
	})
	return srv.ListenAndServe(ctx, opts.addr)
}

// serveCache picks Redis, the on-disk cache or no cache.
func (c *CLI) serveCache(ctx context.Context, opts *serveOpts) (cache.Cache, error) {
	if opts.noCache || opts.redisAddr == "" {
		return newCache(opts.noCache)
	}
	rc, err := cache.NewRedisCache(ctx, opts.redisAddr, opts.redisPassword, opts.redisDB)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Info("using redis cache", "addr", opts.redisAddr)
	return rc, nil
}
