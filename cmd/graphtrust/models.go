package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newModelsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and roll back model versions",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List retained model versions, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				be, err := openBackend(cmd.Context(), a.cfg, a.logger)
				if err != nil {
					return err
				}
				defer be.close()

				versions, err := be.registry.List(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), versions)
			},
		},
		&cobra.Command{
			Use:   "activate <version-id>",
			Short: "Make a retained version active",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid version id: %w", err)
				}
				be, err := openBackend(cmd.Context(), a.cfg, a.logger)
				if err != nil {
					return err
				}
				defer be.close()

				if err := be.registry.Activate(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "activated %s\n", id)
				return nil
			},
		},
	)
	return cmd
}
