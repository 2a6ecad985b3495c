package views

import (
	"context"

	"venuebook/internal/forms"
	"venuebook/pkg/client"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/inflight"
	"venuebook/pkg/model"
)

// FeaturedLimit is how many venues the landing page shows.
const FeaturedLimit = 3

// VenueBrowser backs the landing page and the venue search page. Only the
// latest search is returned; an older one that resolves later is dropped.
type VenueBrowser struct {
	*Views
	gen inflight.Generation
}

func (v *Views) Venues() *VenueBrowser {
	return &VenueBrowser{Views: v}
}

func (b *VenueBrowser) Featured(ctx context.Context) ([]model.Venue, error) {
	limit := FeaturedLimit
	return b.Browse(ctx, model.VenueFilter{Limit: &limit})
}

func (b *VenueBrowser) Browse(ctx context.Context, filter model.VenueFilter) ([]model.Venue, error) {
	venues, err := inflight.Load(ctx, &b.gen, func(ctx context.Context) ([]model.Venue, error) {
		return b.client.Venues.List(ctx, filter)
	})
	if err != nil {
		return nil, b.loadError("Failed to load venues", err)
	}
	return venues, nil
}

// Close drops any search still in flight.
func (b *VenueBrowser) Close() {
	b.gen.Close()
}

// VenueDetail is what the venue page renders.
type VenueDetail struct {
	Venue         model.Venue
	DisabledDates []model.Date
	GuestCount    int
}

// VenueDetailView backs one venue page and its booking form.
type VenueDetailView struct {
	*Views
	id   string
	gen  inflight.Generation
	book inflight.Mutation
}

func (v *Views) VenueDetail(id string) *VenueDetailView {
	return &VenueDetailView{Views: v, id: id}
}

func (d *VenueDetailView) ID() string { return d.id }

func (d *VenueDetailView) Booking() bool { return d.book.InFlight() }

// Open loads the venue. An unknown id yields ErrVenueNotFound so the caller
// can render the not-found page.
func (d *VenueDetailView) Open(ctx context.Context) (*VenueDetail, error) {
	venue, err := inflight.Load(ctx, &d.gen, func(ctx context.Context) (*model.Venue, error) {
		return d.client.Venues.Get(ctx, d.id)
	})
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrVenueNotFound
		}
		return nil, d.loadError("Failed to load venue", err)
	}
	return &VenueDetail{
		Venue:         *venue,
		DisabledDates: forms.DisabledDates(*venue),
		GuestCount:    forms.DefaultGuestCount(venue.Capacity),
	}, nil
}

// Book checks the form against the venue as last loaded and submits the
// booking. The caller must be logged in.
func (d *VenueDetailView) Book(ctx context.Context, venue model.Venue, in forms.BookingInput) (*model.Booking, error) {
	if d.session.CurrentUser() == nil {
		return nil, ErrNotLoggedIn
	}
	if err := d.forms.ValidateBooking(&in, venue); err != nil {
		return nil, err
	}
	return report(ctx, d.Views, &d.book, "Venue booked successfully", "Booking failed", "Failed to book the venue",
		func(ctx context.Context) (*model.Booking, error) {
			return d.client.Bookings.Create(ctx, in.Request(venue.ID))
		})
}

// Changes fires whenever the cached venue is invalidated, so the page can
// reload it. Call the returned func to stop watching.
func (d *VenueDetailView) Changes() (<-chan struct{}, func()) {
	return d.client.Cache.Watch(client.VenueKey(d.id))
}

// Close drops any load still in flight.
func (d *VenueDetailView) Close() {
	d.gen.Close()
}
