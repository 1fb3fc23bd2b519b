package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/levelgen/pkg/errors"
	"github.com/matzehuels/levelgen/pkg/pipeline"
)

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage generation options files",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configPathCommand())

	return cmd
}

// configInitCommand creates the "config init" subcommand.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Write the default options as TOML",
		Long: `Write the default generation options to a TOML file. Without an argument
the file is written to the default config location, which generate, preview
and serve read when no --config is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configTarget(args)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
			}

			var buf bytes.Buffer
			if err := pipeline.WriteOptions(&buf, pipeline.DefaultOptions()); err != nil {
				return err
			}
			if err := writeArtifact(path, buf.Bytes()); err != nil {
				return err
			}
			printSuccess("Wrote default options")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the effective options",
		Long:  `Print the options generate would use: the given file, else the default config file, else the built-in defaults.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			opts, err := loadOptions(path)
			if err != nil {
				return err
			}
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			return pipeline.WriteOptions(c.out, opts)
		},
	}
}

// configPathCommand creates the "config path" subcommand.
func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the default config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath()
			if err != nil {
				return fmt.Errorf("get config path: %w", err)
			}
			fmt.Fprintln(c.out, path)
			return nil
		},
	}
}

// configTarget returns the file named in args or the default config path.
func configTarget(args []string) (string, error) {
	if len(args) == 1 {
		return filepath.Clean(args[0]), nil
	}
	path, err := configPath()
	if err != nil {
		return "", fmt.Errorf("get config path: %w", err)
	}
	return path, nil
}
