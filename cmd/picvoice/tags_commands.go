package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"picvoice/internal/store"
)

func newTagsCommand(cmdCtx *commandContext) *cobra.Command {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage tags",
	}
	tagsCmd.AddCommand(newTagsListCommand(cmdCtx))
	tagsCmd.AddCommand(newTagsAddCommand(cmdCtx))
	tagsCmd.AddCommand(newTagsRemoveCommand(cmdCtx))
	return tagsCmd
}

func newTagsListCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				tags, err := st.ListTags(cmd.Context(), user.ID)
				if err != nil {
					return fmt.Errorf("list tags: %w", err)
				}
				if len(tags) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tags found")
					return nil
				}
				rows := make([][]string, 0, len(tags))
				for _, tag := range tags {
					rows = append(rows, []string{
						strconv.FormatInt(tag.ID, 10),
						tag.Name,
						tag.Color,
						displayTitle(tag.Category),
					})
				}
				headers := []string{"ID", "Name", "Color", "Category"}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 0))
				return nil
			})
		},
	}
}

func newTagsAddCommand(cmdCtx *commandContext) *cobra.Command {
	var colorFlag string
	var categoryFlag string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				tag, err := st.InsertTag(cmd.Context(), user.ID, args[0], colorFlag, categoryFlag)
				if err != nil {
					return fmt.Errorf("create tag: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created tag %q (id %d)\n", tag.Name, tag.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&colorFlag, "color", "", "Display color (hex)")
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Tag category")
	return cmd
}

func newTagsRemoveCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a tag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid tag id %q", args[0])
			}
			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				deleted, err := st.DeleteTag(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("delete tag: %w", err)
				}
				if !deleted {
					return fmt.Errorf("tag %d not found", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted tag %d\n", id)
				return nil
			})
		},
	}
}
