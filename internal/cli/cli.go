package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/levelgen/pkg/buildinfo"
	"github.com/matzehuels/levelgen/pkg/cache"
	"github.com/matzehuels/levelgen/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "levelgen"

	// configFileName is the config file looked up in the config directory.
	configFileName = "levelgen.toml"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	out    io.Writer
}

// New creates a new CLI instance. Diagnostics go to w; command output goes
// to stdout unless overridden with SetOutput.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output, such as rendered levels written to
// stdout.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Levelgen procedurally generates dungeon level layouts",
		Long: `Levelgen places rooms without overlap, connects them with a spanning tree
over their Delaunay triangulation, and carves grid corridors between them.

Levels can be printed as ASCII maps, exported as JSON or GeoJSON, drawn as
room graphs, previewed interactively, or served over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache returns the on-disk cache, or a null cache when caching is
// disabled or no cache directory can be determined.
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

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/levelgen/).
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

// configPath returns the default config file (~/.config/levelgen/levelgen.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, configFileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, configFileName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// loadOptions reads generation options from path. An empty path falls back
// to the default config file when it exists, and to built-in defaults
// otherwise.
func loadOptions(path string) (pipeline.Options, error) {
	if path != "" {
		return pipeline.LoadOptions(path)
	}
	def, err := configPath()
	if err != nil {
		return pipeline.DefaultOptions(), nil
	}
	if _, err := os.Stat(def); err != nil {
		return pipeline.DefaultOptions(), nil
	}
	return pipeline.LoadOptions(def)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatASCII}
	}
	var formats []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			formats = append(formats, f)
		}
	}
	return formats
}
