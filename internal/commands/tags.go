package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/massikone/massikone/internal/model"
)

func newTagsCommand(opts *globalOptions) *cobra.Command {
	tagsCmd := &cobra.Command{
		Use:   "tags",
		Short: "List the tags offered for bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			tags, err := a.bills.AvailableTags(ctx)
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}

	tagsCmd.AddCommand(&cobra.Command{
		Use:   "set [tag...]",
		Short: "Replace the available tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.actingUser(ctx, opts.userEmail)
			if err != nil {
				return err
			}
			if !user.IsAdmin {
				return &model.PermissionError{UserID: user.ID, Reason: "only admins can change tags"}
			}
			if err := a.bills.PutAvailableTags(ctx, args); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tags saved")
			return nil
		},
	})

	return tagsCmd
}
