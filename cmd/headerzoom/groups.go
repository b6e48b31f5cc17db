package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"headerzoom/internal/disclosure"
	"headerzoom/internal/grouping"
)

func newGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups FILE",
		Short: "Print the level groups and tabs built for a hierarchy",
		Long: `Print semantic and density level groups for a hierarchy fixture and the
tabs the level picker would show. Hierarchies shallower than the
auto-group threshold show every level and get no tabs.
`,
		Args: cobra.ExactArgs(1),
		RunE: runGroups,
	}
}

func runGroups(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, h, err := loadHierarchy(cmd, args[0])
	if err != nil {
		return err
	}
	m := grouping.NewManager(grouping.Config{
		AutoGroupThreshold: cfg.Disclosure.AutoGroupThreshold,
		SemanticGrouping:   cfg.Disclosure.SemanticGrouping,
		MaxVisibleLevels:   cfg.Disclosure.MaxVisibleLevels,
	})

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: depth %d, threshold %d\n", doc.DatasetID, h.MaxDepth(), cfg.Disclosure.AutoGroupThreshold)
	if !m.HasAutoGrouping(h) {
		fmt.Fprintln(out, "disclosure inactive: every level is visible")
		return nil
	}
	preferred := m.Build(h)

	printGroups := func(title string, groups []grouping.LevelGroup) {
		if len(groups) == 0 {
			fmt.Fprintf(out, "%s: none\n", title)
			return
		}
		t := newTable("ID", "NAME", "LEVELS", "NODES")
		for _, g := range groups {
			t.Row(g.ID, g.Name, levelList(g.Levels), strconv.Itoa(g.NodeCount))
		}
		fmt.Fprintf(out, "%s:\n%s\n", title, t.String())
	}
	printGroups("semantic", m.SemanticGroups())
	printGroups("density", m.DensityGroups())

	tabs := disclosure.NewPicker(preferred, 0).Tabs()
	labels := make([]string, len(tabs))
	for i, tab := range tabs {
		labels[i] = fmt.Sprintf("%d:%s", i+1, tab.Label)
	}
	fmt.Fprintf(out, "tabs: %s\n", strings.Join(labels, "  "))
	return nil
}

func levelList(levels []int) string {
	parts := make([]string, len(levels))
	for i, l := range levels {
		parts[i] = strconv.Itoa(l)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
