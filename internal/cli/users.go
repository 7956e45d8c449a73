package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newUsersRegisterCmd(app), newUsersListCmd(app))
	return cmd
}

func newUsersRegisterCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, _, err := app.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			user, err := st.Register(ctx, args[0], password)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("username %q is already taken", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (id %d)\n", user.Name, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for the new account")
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, _, err := app.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			users, err := st.Users(ctx)
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", u.ID, u.Name)
			}
			return nil
		},
	}
}
