package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"zettel-cli/internal/model"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write system configuration",
	}
	cmd.AddCommand(newConfigListCmd(app), newConfigGetCmd(app), newConfigSetCmd(app))
	return cmd
}

func newConfigListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := app.open(context.Background())
			if err != nil {
				return err
			}
			defer st.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "user_mode\t%s\n", cfg.UserMode)
			fmt.Fprintf(cmd.OutOrStdout(), "terminal_editor\t%s\n", cfg.TerminalEditor)
			return nil
		},
	}
}

func newConfigGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting (user_mode or terminal_editor)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := app.open(context.Background())
			if err != nil {
				return err
			}
			defer st.Close()
			switch args[0] {
			case "user_mode":
				fmt.Fprintln(cmd.OutOrStdout(), cfg.UserMode)
			case "terminal_editor":
				fmt.Fprintln(cmd.OutOrStdout(), cfg.TerminalEditor)
			default:
				return fmt.Errorf("unknown config key %q", args[0])
			}
			return nil
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			st, cfg, err := app.open(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			switch args[0] {
			case "user_mode":
				mode, ok := model.ParseUserMode(args[1])
				if !ok {
					return fmt.Errorf("unknown user mode %q (want %s, %s or %s)",
						args[1], model.SingleUserAutoLogin, model.SingleUserManualLogin, model.MultiUser)
				}
				cfg.UserMode = mode
			case "terminal_editor":
				cfg.TerminalEditor = args[1]
			default:
				return fmt.Errorf("unknown config key %q", args[0])
			}
			return st.SetSystemConfig(ctx, cfg)
		},
	}
}
