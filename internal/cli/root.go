package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"zettel-cli/internal/model"
	"zettel-cli/internal/store"
	"zettel-cli/internal/tui"
)

type App struct {
	DBPath string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "zettel",
		Short:        "Personal zettel manager (TUI + CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  zettel

  # Scriptable commands
  zettel users register alice --password hunter2
  zettel notes list --user alice
  zettel config set terminal_editor vim
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", "",
		"database path (default ~/.zettel/zettel.sqlite)")

	cmd.AddCommand(
		newInitCmd(app),
		newUsersCmd(app),
		newNotesCmd(app),
		newConfigCmd(app),
	)
	return cmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

func (a *App) open(ctx context.Context) (*store.SQLite, model.SystemConfig, error) {
	path := a.DBPath
	if path == "" {
		var err error
		path, err = store.DefaultPath()
		if err != nil {
			return nil, model.SystemConfig{}, err
		}
	}
	return store.Open(ctx, path)
}

func runTUI(app *App) error {
	st, cfg, err := app.open(context.Background())
	if err != nil {
		return err
	}
	defer st.Close()
	return tui.Run(st, cfg)
}
