package cli

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/levelgen/pkg/pipeline"
)

// previewCommand creates the interactive preview command.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		configFile string
		rooms      int
		seed       uint64
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Browse generated levels interactively",
		Long: `Open a terminal view of a generated level. Step through seeds, change
the room count and toggle side halls; every change regenerates the level.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(configFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rooms") {
				opts.Rooms = rooms
			}
			if cmd.Flags().Changed("seed") {
				opts.Seed = seed
			}

			cache, err := newCache(noCache)
			if err != nil {
				return err
			}
			// Log output would tear the full-screen view.
			runner := pipeline.NewRunner(cache, nil, log.New(io.Discard))
			defer runner.Close()

			m := NewPreviewModel(cmd.Context(), runner, opts)
			finalModel, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}

			if fm, ok := finalModel.(PreviewModel); ok && fm.Level != nil {
				printInfo("Last seed: %s", StyleNumber.Render(fmt.Sprint(fm.Options.Seed)))
				printNextStep("Save it", fmt.Sprintf("%s generate --rooms %d --seed %d -f json -o level.json",
					appName, fm.Options.Rooms, fm.Options.Seed))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "TOML options file")
	cmd.Flags().IntVarP(&rooms, "rooms", "n", pipeline.DefaultRooms, "initial number of rooms")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", pipeline.DefaultSeed, "initial seed")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
