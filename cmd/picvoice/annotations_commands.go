package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"picvoice/internal/config"
	"picvoice/internal/library"
	"picvoice/internal/store"
)

func newAnnotationsCommand(cmdCtx *commandContext) *cobra.Command {
	annotationsCmd := &cobra.Command{
		Use:   "annotations",
		Short: "Manage recorded annotations",
	}
	annotationsCmd.AddCommand(newAnnotationsListCommand(cmdCtx))
	annotationsCmd.AddCommand(newAnnotationsRemoveCommand(cmdCtx))
	return annotationsCmd
}

func newAnnotationsListCommand(cmdCtx *commandContext) *cobra.Command {
	var imageFlag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List annotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				var (
					annotations []*store.Annotation
					err         error
				)
				if imageFlag != "" {
					annotations, err = st.ListImageAnnotations(cmd.Context(), user.ID, imageFlag)
				} else {
					annotations, err = st.ListAnnotations(cmd.Context(), user.ID)
				}
				if err != nil {
					return fmt.Errorf("list annotations: %w", err)
				}
				if len(annotations) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No annotations found")
					return nil
				}

				rows := make([][]string, 0, len(annotations))
				for _, ann := range annotations {
					rows = append(rows, []string{
						strconv.FormatInt(ann.ID, 10),
						ann.Name,
						ann.ImageFilename,
						ann.AudioFilename,
						ann.CreatedAt.Local().Format(time.DateTime),
					})
				}
				headers := []string{"ID", "Name", "Image", "Audio", "Created"}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, 0))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&imageFlag, "image", "", "Limit to one image filename")
	return cmd
}

func newAnnotationsRemoveCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete an annotation and its audio file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected one annotation id")
			}
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid annotation id %q", args[0])
			}
			var cfg *config.Config
			if cfg, err = cmdCtx.ensureConfig(); err != nil {
				return err
			}
			return cmdCtx.withStore(cmd.Context(), func(st *store.Store, user *store.User) error {
				ann, err := st.GetAnnotationByID(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("load annotation: %w", err)
				}
				if ann == nil {
					return fmt.Errorf("annotation %d not found", id)
				}
				lib := library.New(cfg.Paths.UsersDir)
				if err := lib.RemoveOutput(user.Email, ann.AudioFilename); err != nil {
					return fmt.Errorf("remove audio file: %w", err)
				}
				if _, err := st.DeleteAnnotation(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete annotation: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted annotation %d\n", id)
				return nil
			})
		},
	}
}
