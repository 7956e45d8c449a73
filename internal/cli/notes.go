package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"zettel-cli/internal/model"
)

func newNotesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Inspect zettels",
	}
	cmd.AddCommand(newNotesListCmd(app), newNotesShowCmd(app))
	return cmd
}

func newNotesListCmd(app *App) *cobra.Command {
	var username, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's zettels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, _, err := app.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			user, err := st.UserByName(ctx, username)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("unknown user %q", username)
			}
			headers, err := st.GetZettels(ctx, user.ID, model.SearchOpts{Query: search})
			if err != nil {
				return err
			}
			for _, h := range headers {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", h.ID, h.Path)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "root", "account whose zettels to list")
	cmd.Flags().StringVar(&search, "search", "", "substring match on path and body")
	return cmd
}

func newNotesShowCmd(app *App) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print a zettel body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, _, err := app.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			user, err := st.UserByName(ctx, username)
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("unknown user %q", username)
			}
			z, err := st.GetZettelByURL(ctx, user.ID, args[0])
			if err != nil {
				return err
			}
			if z == nil {
				return fmt.Errorf("no zettel at %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), z.Body)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "root", "account whose zettel to show")
	return cmd
}
