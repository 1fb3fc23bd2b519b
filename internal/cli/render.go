package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/level"
	"github.com/matzehuels/levelgen/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file (single format) or base path (multiple)
	formats  string // comma-separated output formats
	detailed bool   // detailed room labels in dot/svg output
	noCache  bool   // bypass the on-disk cache
}

// renderCommand creates the render command, which renders a level saved by
// "generate -f json" without regenerating it.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a saved level",
		Long: `Render a level JSON file in one or more formats.

Use "-" to read the level from stdin. Output paths follow the same rules as
generate, except that the base path defaults to the input file name.`,
		Example: `  levelgen render level.json -f svg
  levelgen render level.json -f svg,dot,geojson --detailed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): ascii (default), json, geojson, dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label rooms with template and door count (dot, svg)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

// runRender loads the level from input and writes each requested format.
func (c *CLI) runRender(ctx context.Context, input string, formats []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	l, err := readLevel(input)
	if err != nil {
		return err
	}
	logger.Infof("Loaded level %s: %d rooms, %d tiles", l.ID, len(l.Rooms), len(l.Tiles))

	runner, err := c.newRunner(opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.DefaultOptions()
	popts.Formats = formats
	popts.Detailed = opts.detailed

	artifacts, cached, err := runner.RenderWithCacheInfo(ctx, l, popts)
	if err != nil {
		return err
	}
	logger.Debug("rendered", "formats", strings.Join(formats, ","), "cached", cached)

	if opts.output == "" && len(formats) == 1 && input == "-" {
		_, err := c.out.Write(artifacts[formats[0]])
		return err
	}

	output := opts.output
	if output == "" {
		src := input
		if src == "-" {
			src = ""
		}
		output = basePath(src)
		if len(formats) == 1 {
			output += "." + formats[0]
		}
	}
	paths := outputPaths(output, formats)
	for _, f := range formats {
		if paths[f] == input {
			return errors.New(errors.ErrCodeInvalidInput, "refusing to overwrite input file %s", input)
		}
		if err := writeArtifact(paths[f], artifacts[f]); err != nil {
			return err
		}
		logger.Infof("Generated %s", paths[f])
	}
	return nil
}

// readLevel reads a level JSON file, or stdin for "-".
func readLevel(path string) (*level.Level, error) {
	if path == "-" {
		return level.Read(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "level file %s", path)
		}
		return nil, fmt.Errorf("open level: %w", err)
	}
	defer f.Close()

	l, err := level.Read(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read level %s", path)
	}
	return l, nil
}
