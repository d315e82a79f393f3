// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/summary-table/internal/render"
	"github.com/pdiddy/summary-table/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Render runs previously recorded with --store",
		Long: `History reads the runs kept in the SQLite store and renders them with the
same formats as the root command, oldest ingest first. Filter with --flowcell
and cap the output with --limit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			if cfg.Store.Path == "" {
				return fmt.Errorf("no store configured: pass --store or set store.path")
			}

			s, err := store.Open(cfg.Store, store.WithLogger(a.logger))
			if err != nil {
				return err
			}
			defer s.Close()

			flowcell, _ := cmd.Flags().GetString("flowcell")
			records, err := s.History(cmd.Context(), store.HistoryOptions{
				FlowcellID: flowcell,
				Limit:      cfg.History.Limit,
			})
			if err != nil {
				return err
			}

			return render.Render(cmd.OutOrStdout(), records, cfg.Format)
		},
	}

	cmd.Flags().String("flowcell", "", "only show runs from this flowcell ID")
	cmd.Flags().Int("limit", 0, "maximum runs to show (0 = all)")
	_ = a.v.BindPFlag("history.limit", cmd.Flags().Lookup("limit"))

	return cmd
}
