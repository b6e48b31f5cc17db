package main

import (
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"headerzoom/internal/hierarchy"
	"headerzoom/internal/layout"
)

type layoutReport struct {
	DatasetID  string            `json:"datasetId"`
	TotalWidth float64           `json:"totalWidth"`
	MaxDepth   int               `json:"maxDepth"`
	Nodes      []*hierarchy.Node `json:"nodes"`
	Violations []violationReport `json:"violations"`
}

type violationReport struct {
	NodeID string `json:"nodeId"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout FILE",
		Short: "Print node geometry for a hierarchy fixture",
		Long: `Lay out every node of a hierarchy fixture and print its width, offset
and level, followed by any width violations.

Examples:
  headerzoom layout testdata/hierarchies/time.yaml
  headerzoom layout time.yaml --width 800 --json
`,
		Args: cobra.ExactArgs(1),
		RunE: runLayout,
	}
	cmd.Flags().Float64("width", 0, "total width to lay out into (default from config)")
	cmd.Flags().Bool("json", false, "Output as JSON")
	return cmd
}

func runLayout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc, h, err := loadHierarchy(cmd, args[0])
	if err != nil {
		return err
	}
	width, _ := cmd.Flags().GetFloat64("width")
	if width <= 0 {
		width = cfg.Layout.TotalWidth
	}
	calc := layout.New(layout.Options{
		Allocator:  layout.AllocatorByName(cfg.Layout.Allocator),
		BandHeight: cfg.Layout.BandHeight,
	})
	res := calc.Calculate(h, width)

	report := layoutReport{
		DatasetID:  doc.DatasetID,
		TotalWidth: res.TotalWidth,
		MaxDepth:   h.MaxDepth(),
		Nodes:      h.AllNodes(),
		Violations: make([]violationReport, 0, len(res.Violations)),
	}
	for _, v := range res.Violations {
		report.Violations = append(report.Violations, violationReport{NodeID: v.NodeID, Kind: string(v.Kind), Detail: v.Detail})
	}

	out := cmd.OutOrStdout()
	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		b, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	}

	t := newTable("LEVEL", "ID", "LABEL", "FACET", "X", "WIDTH")
	for level := 0; level <= h.MaxDepth(); level++ {
		for _, n := range h.Level(level) {
			t.Row(strconv.Itoa(n.Level), n.ID, n.Label, n.Facet, formatUnits(n.X), formatUnits(n.Width))
		}
	}
	fmt.Fprintf(out, "%s: %d nodes, %d levels, total width %s\n", doc.DatasetID, h.Len(), h.MaxDepth()+1, formatUnits(res.TotalWidth))
	fmt.Fprintln(out, t.String())
	if len(report.Violations) == 0 {
		fmt.Fprintln(out, "no violations")
		return nil
	}
	for _, v := range report.Violations {
		fmt.Fprintf(out, "violation %s %s: %s\n", v.NodeID, v.Kind, v.Detail)
	}
	return nil
}

func formatUnits(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
