package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"headerzoom/internal/app"
)

func newBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse FILE",
		Short: "Browse a hierarchy interactively",
		Long: `Open the interactive header navigator for a hierarchy fixture.

Keys: 1-9 select a level group, j/k step the window, +/- zoom, ? help,
q quit. Click a node to sort by it, click its left edge to collapse it,
drag its right edge to resize.

The visible window is saved per dataset and app context and restored on
the next run.
`,
		Args: cobra.ExactArgs(1),
		RunE: runBrowse,
	}
	cmd.Flags().String("dataset", "", "dataset id for saved state (default from the fixture)")
	cmd.Flags().String("app", app.DefaultAppContext, "app context for saved state")
	cmd.Flags().Bool("ascii", false, "ASCII-only glyphs")
	cmd.Flags().Bool("ephemeral", false, "keep state in memory only")
	return cmd
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dataset, _ := cmd.Flags().GetString("dataset")
	appContext, _ := cmd.Flags().GetString("app")
	ascii, _ := cmd.Flags().GetBool("ascii")
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		cfg.Persistence.Backend = "memory"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{
		Path:       args[0],
		DatasetID:  dataset,
		AppContext: appContext,
		ASCII:      ascii,
	})
	if err != nil {
		return err
	}
	defer a.Close()
	return a.Run(ctx)
}
