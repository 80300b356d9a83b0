package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AlexZinkM/guest-wallet/near"
)

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Manage the local guest credential",
}

func init() {
	guestCmd.AddCommand(
		guestAction("status", "Show the session state and guest account", func(_ context.Context, app *near.App) (any, error) {
			return app.Status()
		}),
		guestAction("access", "Create, register and sign in a guest key", func(ctx context.Context, app *near.App) (any, error) {
			return app.RequestGuestAccess(ctx)
		}),
		guestAction("login", "Sign in with the stored guest key", func(ctx context.Context, app *near.App) (any, error) {
			return app.SignIn(ctx)
		}),
		guestAction("logout", "Sign out, keeping the guest key", func(_ context.Context, app *near.App) (any, error) {
			return app.SignOut()
		}),
		guestAction("revoke", "Revoke every guest key and delete the local one", func(ctx context.Context, app *near.App) (any, error) {
			return app.Revoke(ctx)
		}),
	)
}

// guestAction builds a subcommand that runs fn against a freshly built app
// and prints its result as JSON.
func guestAction(use, short string, fn func(ctx context.Context, app *near.App) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			app, closeApp, err := buildApp(cfg)
			if err != nil {
				return err
			}
			defer closeApp()

			out, err := fn(commandContext(cmd), app)
			if err != nil {
				return err
			}
			return printJSON(out)
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
