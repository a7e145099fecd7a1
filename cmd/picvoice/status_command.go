package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"picvoice/internal/deps"
	"picvoice/internal/store"
)

func newStatusCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show storage and dependency status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				var lines []string
				lines = append(lines, renderSectionHeader("storage", colorize))

				health, herr := st.CheckHealth(cmd.Context())
				if herr != nil {
					lines = append(lines, renderStatusLine("Database", statusError, herr.Error(), colorize))
				} else {
					kind := statusOK
					detail := health.DBPath
					switch {
					case !health.DatabaseReadable:
						kind = statusError
						detail = "unreadable"
					case len(health.MissingTables) > 0:
						kind = statusError
						detail = "missing tables: " + strings.Join(health.MissingTables, ", ")
					case !health.IntegrityCheck:
						kind = statusWarn
						detail = "integrity check failed"
					}
					lines = append(lines, renderStatusLine("Database", kind, detail, colorize))
				}
				lines = append(lines, renderStatusLine("Account", statusInfo, user.Email, colorize))
				lines = append(lines, renderStatusLine("Users root", statusInfo, cfg.Paths.UsersDir, colorize))

				lines = append(lines, renderSectionHeader("dependencies", colorize))
				for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
					kind := statusOK
					detail := status.Command
					if !status.Available {
						kind = statusError
						detail = status.Detail
						if status.Optional {
							kind = statusWarn
						}
					}
					lines = append(lines, renderStatusLine(status.Name, kind, detail, colorize))
				}

				fmt.Fprintln(out, strings.Join(lines, "\n"))
				return nil
			})
		},
	}
}
