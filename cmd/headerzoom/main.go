// Command headerzoom inspects header hierarchies and browses them with
// progressive level disclosure.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"headerzoom/internal/config"
	"headerzoom/internal/hierarchy"
)

var (
	// BuildTag is set during build
	BuildTag = "dev"
	// BuildDate is set during build
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "headerzoom",
		Short: "Navigate deep header hierarchies a few levels at a time",
		Long: `headerzoom - progressive disclosure for multi-level table headers

Deep hierarchies (year > quarter > month > ...) are grouped into level
tabs and shown a few levels at a time. The visible window is saved per
dataset and restored on the next run.

Environment Variables:
  HEADERZOOM_<SECTION>_<FIELD>   Override any config field, for example
                                 HEADERZOOM_DISCLOSURE_MAX_VISIBLE_LEVELS=4
`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file (default ~/.config/headerzoom/config.yaml)")

	root.AddCommand(
		newLayoutCmd(),
		newGroupsCmd(),
		newBrowseCmd(),
		newStateCmd(),
		newDatasetsCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "headerzoom version %s (built %s)\n", BuildTag, BuildDate)
			},
		},
	)
	return root
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func loadHierarchy(cmd *cobra.Command, path string) (hierarchy.Document, *hierarchy.Hierarchy, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return hierarchy.NewLoader().LoadFile(ctx, path)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(false).
		Headers(headers...)
}
