package cli

import (
	"errors"
	"fmt"

	"venuebook/internal/forms"
	"venuebook/internal/views"
	"venuebook/pkg/app"

	"github.com/spf13/cobra"
)

func newLoginCommand(run wrap) *cobra.Command {
	var (
		in   forms.LoginInput
		from string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Args:  cobra.NoArgs,
		Short: "Log in and remember the session",
		RunE: run(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			next, err := a.Views.Auth().Login(cmd.Context(), in, from)
			if err != nil {
				return err
			}
			user := a.Session.CurrentUser()
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\nnext: %s\n", user.Username, user.Role, next)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "account password")
	cmd.Flags().StringVar(&from, "from", "", "page to return to after login")
	return cmd
}

func newRegisterCommand(run wrap) *cobra.Command {
	var in forms.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Args:  cobra.NoArgs,
		Short: "Create an account",
		RunE: run(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			account, next, err := a.Views.Auth().Register(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s\nnext: %s\n", account.Username, next)
			return nil
		}),
	}

	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "last name")
	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&in.Password, "password", "p", "", "password")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number, +998xxxxxxxxx")
	return cmd
}

func newLogoutCommand(run wrap) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Args:  cobra.NoArgs,
		Short: "Forget the saved session",
		RunE: run(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			next, err := a.Views.Auth().Logout(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged out\nnext: %s\n", next)
			return nil
		}),
	}
}

func newWhoamiCommand(run wrap) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Args:  cobra.NoArgs,
		Short: "Show the logged-in account",
		RunE: run(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			out := cmd.OutOrStdout()
			account, err := a.Views.Auth().Profile(cmd.Context())
			if errors.Is(err, views.ErrNotLoggedIn) {
				fmt.Fprintln(out, "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%s)\nname: %s\nphone: %s\n", account.Username, account.Role, account.FullName(), account.Phone)
			return nil
		}),
	}
}
