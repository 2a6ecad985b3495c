package views

import (
	"context"

	"venuebook/internal/forms"
	"venuebook/pkg/inflight"
	"venuebook/pkg/model"
)

// OwnerVenuesView lists the venues of the logged-in owner.
type OwnerVenuesView struct {
	*Views
	gen  inflight.Generation
	edit inflight.Mutation
}

func (v *Views) OwnerVenues() *OwnerVenuesView {
	return &OwnerVenuesView{Views: v}
}

func (o *OwnerVenuesView) Load(ctx context.Context) ([]model.Venue, error) {
	ownerID, err := o.currentUserID()
	if err != nil {
		return nil, err
	}
	venues, err := inflight.Load(ctx, &o.gen, func(ctx context.Context) ([]model.Venue, error) {
		return o.client.Venues.ListByOwner(ctx, ownerID)
	})
	if err != nil {
		return nil, o.loadError("Failed to load your venues", err)
	}
	return venues, nil
}

func (o *OwnerVenuesView) Edit(ctx context.Context, id string, in forms.EditVenueInput) (*model.Venue, error) {
	if err := o.forms.Validate(&in); err != nil {
		return nil, err
	}
	return report(ctx, o.Views, &o.edit, "Venue updated successfully", "Failed to update venue", "Could not update the venue",
		func(ctx context.Context) (*model.Venue, error) {
			return o.client.Venues.Update(ctx, id, in.Update())
		})
}

func (o *OwnerVenuesView) Close() { o.gen.Close() }

// OwnerBookingsView lists the bookings made at the logged-in owner's venues.
type OwnerBookingsView struct {
	*Views
	gen            inflight.Generation
	edit, deleting inflight.Mutation
}

func (v *Views) OwnerBookings() *OwnerBookingsView {
	return &OwnerBookingsView{Views: v}
}

func (o *OwnerBookingsView) Load(ctx context.Context) ([]model.Booking, error) {
	ownerID, err := o.currentUserID()
	if err != nil {
		return nil, err
	}
	bookings, err := inflight.Load(ctx, &o.gen, func(ctx context.Context) ([]model.Booking, error) {
		return o.client.Bookings.ListByOwner(ctx, ownerID)
	})
	if err != nil {
		return nil, o.loadError("Failed to load bookings", err)
	}
	return bookings, nil
}

func (o *OwnerBookingsView) Edit(ctx context.Context, id string, in forms.EditBookingInput) (*model.Booking, error) {
	return editBooking(ctx, o.Views, &o.edit, id, in)
}

func (o *OwnerBookingsView) Delete(ctx context.Context, booking model.Booking) error {
	return deleteBooking(ctx, o.Views, &o.deleting, booking)
}

func (o *OwnerBookingsView) Close() { o.gen.Close() }
