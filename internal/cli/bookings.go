package cli

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"venuebook/pkg/app"
	"venuebook/pkg/model"

	"github.com/spf13/cobra"
)

func newBookingsCommand(run wrap) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Args:  cobra.NoArgs,
		Short: "List bookings: every booking for admins, bookings at their venues for owners",
		RunE: run(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			user := a.Session.CurrentUser()
			if user == nil {
				return errors.New("log in to list bookings")
			}

			var (
				bookings []model.Booking
				err      error
			)
			switch user.Role {
			case model.RoleAdmin:
				bookings, err = a.Views.AdminBookings().Load(cmd.Context())
			case model.RoleOwner:
				bookings, err = a.Views.OwnerBookings().Load(cmd.Context())
			default:
				return fmt.Errorf("bookings are only listed for admins and owners, not %s accounts", user.Role)
			}
			if err != nil {
				return err
			}
			printBookings(cmd.OutOrStdout(), bookings)
			return nil
		}),
	}
}

func printBookings(out io.Writer, bookings []model.Booking) {
	if len(bookings) == 0 {
		fmt.Fprintln(out, "No bookings found")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVENUE\tDATE\tGUESTS\tTOTAL\tSTATUS")
	for _, b := range bookings {
		venue := b.Venue.ID
		if b.Venue.Venue != nil && b.Venue.Venue.Name != "" {
			venue = b.Venue.Venue.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\t%s\n", b.ID, venue, b.Date, b.GuestCount, b.TotalPrice, b.Status)
	}
	w.Flush()
}
