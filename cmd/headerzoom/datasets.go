package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"headerzoom/internal/hierarchy"
)

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets DIR",
		Short: "List the hierarchy fixtures in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := hierarchy.NewLoader().LoadDir(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(docs) == 0 {
				fmt.Fprintln(out, "no fixtures")
				return nil
			}
			t := newTable("DATASET", "NAME", "FACETS", "FILE")
			for _, d := range docs {
				t.Row(d.DatasetID, d.Name, strings.Join(d.Facets, " > "), d.Path)
			}
			fmt.Fprintln(out, t.String())
			return nil
		},
	}
}
