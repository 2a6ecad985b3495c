// Package cli is the command-line front end over the views.
package cli

import (
	"context"
	"fmt"
	"io"

	"venuebook/internal/views"
	"venuebook/pkg/app"

	"github.com/spf13/cobra"
)

// Opener builds the application a command runs against. Notifications are
// delivered to n.
type Opener func(ctx context.Context, n views.Notifier) (*app.Application, error)

type runFunc func(cmd *cobra.Command, a *app.Application, args []string) error

// NewRootCmd creates the venuebook command tree.
func NewRootCmd(open Opener) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "venuebook",
		Short:         "Browse and book wedding and event venues",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	run := func(fn runFunc) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) (err error) {
			ctx := cmd.Context()
			a, err := open(ctx, printNotifier(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := a.Close(context.WithoutCancel(ctx)); closeErr != nil && err == nil {
					err = closeErr
				}
			}()
			return fn(cmd, a, args)
		}
	}

	rootCmd.AddCommand(
		newLoginCommand(run),
		newRegisterCommand(run),
		newLogoutCommand(run),
		newWhoamiCommand(run),
		newVenuesCommand(run),
		newVenueCommand(run),
		newBookCommand(run),
		newBookingsCommand(run),
		newRouteCommand(run),
		newWatchCommand(run),
	)

	return rootCmd
}

type wrap func(fn runFunc) func(*cobra.Command, []string) error

func printNotifier(w io.Writer) views.Notifier {
	return views.NotifierFunc(func(n views.Notification) {
		if n.Description != "" {
			fmt.Fprintf(w, "[%s] %s: %s\n", n.Level, n.Title, n.Description)
			return
		}
		fmt.Fprintf(w, "[%s] %s\n", n.Level, n.Title)
	})
}
