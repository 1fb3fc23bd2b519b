package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/levelgen/pkg/corridor"
	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
// Generation flags override values from the config file only when set.
type generateOpts struct {
	config   string // TOML options file
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated output formats
	noCache  bool   // bypass the on-disk cache
	refresh  bool   // regenerate even when cached
	detailed bool   // detailed room labels in dot/svg output

	rooms       int
	seed        uint64
	width       int
	height      int
	sideHalls   float64
	parallelism int
	timeout     time.Duration
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a level",
		Long: `Generate a level and write it in one or more formats.

Without --output a single format is written to stdout. With several formats
each one is written to <output>.<format>, where output defaults to "level".`,
		Example: `  levelgen generate --rooms 20 --seed 7
  levelgen generate --config dungeon.toml -f json,svg -o crypt
  levelgen generate --side-halls 0 -f geojson > level.geojson`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			popts, err := opts.pipelineOptions(cmd)
			if err != nil {
				return err
			}
			return c.runGenerate(cmd.Context(), popts, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.config, "config", "c", "", "TOML options file (default ~/.config/levelgen/levelgen.toml if present)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): ascii (default), json, geojson, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "regenerate even when a cached level exists")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label rooms with template and door count (dot, svg)")
	cmd.Flags().IntVarP(&opts.rooms, "rooms", "n", pipeline.DefaultRooms, "number of rooms")
	cmd.Flags().Uint64VarP(&opts.seed, "seed", "s", pipeline.DefaultSeed, "random seed")
	cmd.Flags().IntVar(&opts.width, "width", pipeline.DefaultWidth, "bounds width in cells")
	cmd.Flags().IntVar(&opts.height, "height", pipeline.DefaultHeight, "bounds height in cells")
	cmd.Flags().Float64Var(&opts.sideHalls, "side-halls", corridor.DefaultSideHallFrequency, "extra halls as a fraction of spanning halls (0-1)")
	cmd.Flags().IntVar(&opts.parallelism, "parallelism", 0, "concurrent path searches (default GOMAXPROCS)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "abort generation after this duration")

	return cmd
}

// pipelineOptions loads the config file and applies explicitly set flags.
func (o *generateOpts) pipelineOptions(cmd *cobra.Command) (pipeline.Options, error) {
	popts, err := loadOptions(o.config)
	if err != nil {
		return pipeline.Options{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("rooms") {
		popts.Rooms = o.rooms
	}
	if flags.Changed("seed") {
		popts.Seed = o.seed
	}
	if flags.Changed("width") {
		popts.Bounds.Width = o.width
	}
	if flags.Changed("height") {
		popts.Bounds.Height = o.height
	}
	if flags.Changed("side-halls") {
		popts.SideHallFrequency = o.sideHalls
	}
	if flags.Changed("parallelism") {
		popts.Parallelism = o.parallelism
	}
	if flags.Changed("timeout") {
		popts.Timeout = pipeline.Duration(o.timeout)
	}
	if flags.Changed("format") {
		popts.Formats = parseFormats(o.formats)
	}
	if o.detailed {
		popts.Detailed = true
	}
	popts.Refresh = o.refresh

	if err := pipeline.ValidateFormats(popts.Formats); err != nil {
		return pipeline.Options{}, err
	}
	return popts, nil
}

// runGenerate executes the pipeline and writes every artifact.
func (c *CLI) runGenerate(ctx context.Context, popts pipeline.Options, opts *generateOpts) error {
	logger := loggerFromContext(ctx)

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	toStdout := opts.output == "" && len(popts.Formats) == 1

	var spinner *Spinner
	if !toStdout {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Generating %d rooms...", popts.Rooms))
		spinner.Start()
	}
	prog := newProgress(logger)
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Generation failed")
		}
		if errors.IsExhausted(err) {
			logger.Warn("generation ran out of attempts; try another --seed or fewer rooms", "seed", popts.Seed)
		}
		return err
	}
	if spinner != nil {
		spinner.Stop()
	}
	prog.done(fmt.Sprintf("Generated %d rooms", result.Level.Stats.Rooms))
	logger.Debug("level", "id", result.Level.ID, "hash", result.LevelHash,
		"level_cached", result.CacheInfo.LevelHit, "render_cached", result.CacheInfo.RenderHit)

	if toStdout {
		_, err := c.out.Write(result.Artifacts[popts.Formats[0]])
		return err
	}

	printSuccess("Level %s", StyleValue.Render(result.Level.ID))
	printStats(result.Level.Stats, result.CacheInfo.LevelHit)
	if n := result.Level.Stats.FailedPaths; n > 0 {
		printWarning("%d halls could not be routed", n)
	}

	paths := outputPaths(opts.output, popts.Formats)
	for _, f := range popts.Formats {
		if err := writeArtifact(paths[f], result.Artifacts[f]); err != nil {
			return err
		}
		printFile(paths[f])
	}
	if slices.Contains(popts.Formats, pipeline.FormatJSON) {
		printNextStep("Render it again", fmt.Sprintf("%s render %s -f svg", appName, paths[pipeline.FormatJSON]))
	}
	return nil
}

// outputPaths maps each format to its output file. A single format is
// written to output as given; several formats share output as a base path
// with any known format extension stripped.
func outputPaths(output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips a known format extension from output, defaulting to
// "level".
func basePath(output string) string {
	if output == "" {
		return "level"
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifact writes data to path, creating parent directories.
func writeArtifact(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
