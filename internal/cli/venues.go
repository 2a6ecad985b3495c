package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"venuebook/internal/forms"
	"venuebook/internal/views"
	"venuebook/pkg/app"
	"venuebook/pkg/model"

	"github.com/spf13/cobra"
)

func newVenuesCommand(run wrap) *cobra.Command {
	var (
		filter   model.VenueFilter
		featured bool
		capacity int
		minPrice float64
		maxPrice float64
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "venues",
		Args:  cobra.NoArgs,
		Short: "Search venues",
		RunE: run(func(cmd *cobra.Command, a *app.Application, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("capacity") {
				filter.Capacity = &capacity
			}
			if flags.Changed("min-price") {
				filter.MinPricePerSeat = &minPrice
			}
			if flags.Changed("max-price") {
				filter.MaxPricePerSeat = &maxPrice
			}
			if flags.Changed("limit") {
				filter.Limit = &limit
			}

			browser := a.Views.Venues()
			var (
				venues []model.Venue
				err    error
			)
			if featured {
				venues, err = browser.Featured(cmd.Context())
			} else {
				venues, err = browser.Browse(cmd.Context(), filter)
			}
			if err != nil {
				return err
			}
			printVenues(cmd.OutOrStdout(), venues)
			return nil
		}),
	}

	flags := cmd.Flags()
	flags.BoolVar(&featured, "featured", false, "show the landing page selection")
	flags.StringVarP(&filter.Query, "query", "q", "", "text to search in name and address")
	flags.StringVar(&filter.District, "district", "", "district")
	flags.StringVar(&filter.SortBy, "sort-by", "", "field to sort by")
	flags.StringVar(&filter.SortOrder, "sort-order", "", "asc or desc")
	flags.StringVar(&filter.HasImages, "has-images", "", "true to list only venues with images")
	flags.IntVar(&capacity, "capacity", 0, "minimum capacity")
	flags.Float64Var(&minPrice, "min-price", 0, "minimum price per seat")
	flags.Float64Var(&maxPrice, "max-price", 0, "maximum price per seat")
	flags.IntVar(&limit, "limit", 0, "maximum number of venues")
	return cmd
}

func printVenues(out io.Writer, venues []model.Venue) {
	if len(venues) == 0 {
		fmt.Fprintln(out, "No venues found")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tDISTRICT\tCAPACITY\tPRICE/SEAT\tSTATUS")
	for _, v := range venues {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\t%s\n", v.ID, v.Name, v.District, v.Capacity, v.PricePerSeat, v.Status)
	}
	w.Flush()
}

func newVenueCommand(run wrap) *cobra.Command {
	return &cobra.Command{
		Use:   "venue <id>",
		Args:  cobra.ExactArgs(1),
		Short: "Show a venue and its booked dates",
		RunE: run(func(cmd *cobra.Command, a *app.Application, args []string) error {
			detail, err := a.Views.VenueDetail(args[0]).Open(cmd.Context())
			if err != nil {
				return err
			}

			v := detail.Venue
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n%s, %s\n", v.Name, v.Address, v.District)
			fmt.Fprintf(out, "capacity: %d\nprice per seat: %.0f\nphone: %s\nstatus: %s\n", v.Capacity, v.PricePerSeat, v.Phone, v.Status)
			if v.Description != "" {
				fmt.Fprintf(out, "%s\n", v.Description)
			}
			if len(v.Images) > 0 {
				fmt.Fprintf(out, "images: %s\n", strings.Join(v.Images, ", "))
			}
			dates := make([]string, len(detail.DisabledDates))
			for i, d := range detail.DisabledDates {
				dates[i] = d.String()
			}
			if len(dates) == 0 {
				fmt.Fprintln(out, "booked dates: none")
			} else {
				fmt.Fprintf(out, "booked dates: %s\n", strings.Join(dates, ", "))
			}
			fmt.Fprintf(out, "suggested guests: %d\n", detail.GuestCount)
			return nil
		}),
	}
}

func newBookCommand(run wrap) *cobra.Command {
	var (
		date   string
		guests int
	)

	cmd := &cobra.Command{
		Use:   "book <venue-id>",
		Args:  cobra.ExactArgs(1),
		Short: "Book a venue for a date",
		RunE: run(func(cmd *cobra.Command, a *app.Application, args []string) error {
			in := forms.BookingInput{GuestCount: guests}
			if date != "" {
				d, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				in.Date = d
			}

			page := a.Views.VenueDetail(args[0])
			defer page.Close()
			detail, err := page.Open(cmd.Context())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("guests") {
				in.GuestCount = detail.GuestCount
			}

			booking, err := page.Book(cmd.Context(), detail.Venue, in)
			if errors.Is(err, views.ErrNotLoggedIn) {
				return errors.New("log in to book a venue")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Booked %s on %s for %d guests\nbooking: %s\ntotal: %.0f\nstatus: %s\n",
				detail.Venue.Name, booking.Date, booking.GuestCount, booking.ID, booking.TotalPrice, booking.Status)
			return nil
		}),
	}

	cmd.Flags().StringVar(&date, "date", "", "date to book, YYYY-MM-DD")
	cmd.Flags().IntVar(&guests, "guests", 0, "number of guests")
	return cmd
}

// newWatchCommand keeps the venue page open and prints it again whenever it
// changes, locally or in another client when invalidations are broadcast.
func newWatchCommand(run wrap) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <venue-id>",
		Args:  cobra.ExactArgs(1),
		Short: "Follow a venue's booked dates until interrupted",
		RunE: run(func(cmd *cobra.Command, a *app.Application, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			a.Start(ctx)

			page := a.Views.VenueDetail(args[0])
			defer page.Close()
			changes, stop := page.Changes()
			defer stop()

			for {
				detail, err := page.Open(ctx)
				if ctx.Err() != nil {
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d booked date(s)\n", detail.Venue.Name, len(detail.DisabledDates))

				select {
				case <-ctx.Done():
					return nil
				case <-changes:
				}
			}
		}),
	}
}
