package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"picvoice/internal/store"
)

func newImagesCommand(cmdCtx *commandContext) *cobra.Command {
	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "Inspect the image library",
	}
	imagesCmd.AddCommand(newImagesListCommand(cmdCtx))
	return imagesCmd
}

func newImagesListCommand(cmdCtx *commandContext) *cobra.Command {
	var sessionFlag string
	var favoritesOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List images",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				filter := store.ImageFilter{SessionID: sessionFlag}
				if favoritesOnly {
					favorite := true
					filter.Favorite = &favorite
				}
				images, err := st.ListImages(cmd.Context(), user.ID, filter)
				if err != nil {
					return fmt.Errorf("list images: %w", err)
				}
				if len(images) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No images found")
					return nil
				}

				rows := make([][]string, 0, len(images))
				for _, img := range images {
					rows = append(rows, []string{
						strconv.FormatInt(img.ID, 10),
						img.OriginalName,
						img.SessionID,
						img.UploadedAt.Local().Format(time.DateTime),
						yesNo(img.Favorite),
						strconv.Itoa(img.Rotation),
						yesNo(img.Ready),
					})
				}
				headers := []string{"ID", "Name", "Session", "Uploaded", "Favorite", "Rotation", "Ready"}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 0, 5))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&sessionFlag, "session", "", "Limit to one upload session")
	cmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "Only show favorited images")
	return cmd
}

func newSessionsCommand(cmdCtx *commandContext) *cobra.Command {
	sessionsCmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect upload sessions",
	}
	sessionsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List upload sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				sessions, err := st.ListSessions(cmd.Context(), user.ID)
				if err != nil {
					return fmt.Errorf("list sessions: %w", err)
				}
				if len(sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions found")
					return nil
				}

				rows := make([][]string, 0, len(sessions))
				for _, session := range sessions {
					rows = append(rows, []string{
						session.SessionID,
						formatCount(session.ImageCount),
						formatCount(session.ReadyCount),
						session.FirstUpload.Local().Format(time.DateTime),
						session.LastUpload.Local().Format(time.DateTime),
					})
				}
				headers := []string{"Session", "Images", "Ready", "First Upload", "Last Upload"}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 1, 2))
				return nil
			})
		},
	})
	return sessionsCmd
}
