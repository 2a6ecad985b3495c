package cli

import (
	"fmt"

	"venuebook/pkg/app"

	"github.com/spf13/cobra"
)

func newRouteCommand(run wrap) *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Args:  cobra.ExactArgs(1),
		Short: "Show where the current session would land when opening path",
		RunE: run(func(cmd *cobra.Command, a *app.Application, args []string) error {
			page, err := a.Views.Navigate(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			d := page.Decision
			if !d.Redirected() {
				fmt.Fprintf(out, "render %s (%s, %s)\n", page.Match.Path, page.Match.Route.Name, page.Match.Route.Kind)
				return nil
			}
			fmt.Fprintf(out, "redirect %s -> %s\n", args[0], d.To)
			if d.From != "" {
				fmt.Fprintf(out, "return to %s after login\n", d.From)
			}
			return nil
		}),
	}
}
