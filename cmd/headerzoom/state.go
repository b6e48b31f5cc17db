package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"headerzoom/internal/state"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect saved view state",
	}
	show := &cobra.Command{
		Use:   "show",
		Short: "Print saved state for a dataset, or list saved keys",
		Long: `Without --dataset, list every saved dataset/app key, newest first.
With --dataset, print the saved progressive state for that key as JSON.
`,
		Args: cobra.NoArgs,
		RunE: runStateShow,
	}
	show.Flags().String("dataset", "", "dataset id")
	show.Flags().String("app", "", "app context")
	cmd.AddCommand(show)
	return cmd
}

func runStateShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	store, err := state.Open(ctx, cfg.Persistence.Backend, cfg.Persistence.DataDir)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	dataset, _ := cmd.Flags().GetString("dataset")
	appContext, _ := cmd.Flags().GetString("app")
	if dataset == "" {
		keys, err := store.ListKeys(ctx)
		if err != nil {
			return err
		}
		if len(keys) == 0 {
			fmt.Fprintln(out, "no saved state")
			return nil
		}
		t := newTable("DATASET", "APP")
		for _, k := range keys {
			t.Row(k.DatasetID, k.AppContext)
		}
		fmt.Fprintln(out, t.String())
		return nil
	}

	key := state.StateKey{DatasetID: dataset, AppContext: appContext}
	st, err := store.LoadProgressiveState(ctx, key)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("no saved state for %s", key)
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(b))
	return nil
}
