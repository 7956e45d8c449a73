package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"zettel-cli/internal/store"
)

func newInitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create (or migrate) the zettel database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := app.open(context.Background())
			if err != nil {
				return err
			}
			defer st.Close()

			path := app.DBPath
			if path == "" {
				if path, err = store.DefaultPath(); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s (user mode: %s)\n",
				path, cfg.UserMode)
			return nil
		},
	}
}
