package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/massikone/massikone/internal/bills"
)

func newUserCommand(opts *globalOptions) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	userCmd.AddCommand(newUserAddCommand(opts), newUserListCommand(opts))
	return userCmd
}

func newUserAddCommand(opts *globalOptions) *cobra.Command {
	var in bills.UserInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a user; the first user becomes an admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.bills.AddUser(ctx, in)
			if err != nil {
				return err
			}
			role := "user"
			if u.IsAdmin {
				role = "admin"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %d %s <%s>\n", role, u.ID, u.FullName, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "email address (required)")
	cmd.Flags().StringVar(&in.FullName, "name", "", "full name (required)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newUserListCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.bills.ListUsers(ctx)
			if err != nil {
				return err
			}
			for _, u := range users {
				admin := ""
				if u.IsAdmin {
					admin = " (admin)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d %s <%s>%s\n", u.ID, u.FullName, u.Email, admin)
			}
			return nil
		},
	}
}
