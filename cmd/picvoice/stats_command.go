package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"picvoice/internal/store"
)

func newStatsCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show library statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return fmt.Errorf("collect stats: %w", err)
				}
				rows := [][]string{
					{displayTitle("images"), formatCount(stats.Images)},
					{displayTitle("deleted_images"), formatCount(stats.Deleted)},
					{displayTitle("annotations"), formatCount(stats.Annotations)},
					{displayTitle("tags"), formatCount(stats.Tags)},
					{displayTitle("sessions"), formatCount(stats.Sessions)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Count"}, rows, 1))
				return nil
			})
		},
	}
}
