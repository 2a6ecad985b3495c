package views

import (
	"context"

	"venuebook/internal/forms"
	"venuebook/pkg/client"
	"venuebook/pkg/inflight"
	"venuebook/pkg/model"
)

// AdminOwnersView backs the admin owners table and its add, edit and delete
// dialogs.
type AdminOwnersView struct {
	*Views
	gen                 inflight.Generation
	add, edit, deleting inflight.Mutation
}

func (v *Views) AdminOwners() *AdminOwnersView {
	return &AdminOwnersView{Views: v}
}

func (o *AdminOwnersView) Load(ctx context.Context) ([]model.Account, error) {
	owners, err := inflight.Load(ctx, &o.gen, func(ctx context.Context) ([]model.Account, error) {
		return o.client.Accounts.ListByRole(ctx, model.RoleOwner)
	})
	if err != nil {
		return nil, o.loadError("Failed to load owners", err)
	}
	return owners, nil
}

func (o *AdminOwnersView) Add(ctx context.Context, in forms.AddOwnerInput) (*model.Account, error) {
	if err := o.forms.Validate(&in); err != nil {
		return nil, err
	}
	return report(ctx, o.Views, &o.add, "Owner created successfully", "Failed to create owner", "Could not create the owner",
		func(ctx context.Context) (*model.Account, error) {
			return o.client.Accounts.Create(ctx, in.Request())
		})
}

func (o *AdminOwnersView) Edit(ctx context.Context, id string, in forms.EditOwnerInput) (*model.Account, error) {
	if err := o.forms.Validate(&in); err != nil {
		return nil, err
	}
	return report(ctx, o.Views, &o.edit, "Owner updated successfully", "Failed to update owner", "Could not update the owner",
		func(ctx context.Context) (*model.Account, error) {
			return o.client.Accounts.Update(ctx, id, in.Update())
		})
}

func (o *AdminOwnersView) Delete(ctx context.Context, id string) error {
	_, err := report(ctx, o.Views, &o.deleting, "Owner deleted successfully", "Failed to delete owner", "Could not delete the owner",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, o.client.Accounts.Delete(ctx, id)
		})
	return err
}

func (o *AdminOwnersView) Close() { o.gen.Close() }

// AdminVenuesView backs the admin venues table and its dialogs.
type AdminVenuesView struct {
	*Views
	gen                         inflight.Generation
	add, edit, deleting, upload inflight.Mutation
}

func (v *Views) AdminVenues() *AdminVenuesView {
	return &AdminVenuesView{Views: v}
}

func (a *AdminVenuesView) Load(ctx context.Context) ([]model.Venue, error) {
	venues, err := inflight.Load(ctx, &a.gen, func(ctx context.Context) ([]model.Venue, error) {
		return a.client.Venues.List(ctx, model.VenueFilter{})
	})
	if err != nil {
		return nil, a.loadError("Failed to load venues", err)
	}
	return venues, nil
}

func (a *AdminVenuesView) Uploading() bool { return a.upload.InFlight() }

// Images returns an empty selection sized for the upload limit.
func (a *AdminVenuesView) Images() *forms.ImageSelection {
	return forms.NewImageSelection(a.client.Venues.MaxImages())
}

// Add creates the venue and then uploads the selected images to it. A failed
// upload leaves the venue in place and is reported on its own.
func (a *AdminVenuesView) Add(ctx context.Context, in forms.AddVenueInput, images *forms.ImageSelection) (*model.Venue, error) {
	if err := a.forms.Validate(&in); err != nil {
		return nil, err
	}
	venue, err := report(ctx, a.Views, &a.add, "Venue created successfully", "Failed to create venue", "Could not create the venue",
		func(ctx context.Context) (*model.Venue, error) {
			return a.client.Venues.Create(ctx, in.Request())
		})
	if err != nil {
		return nil, err
	}

	if images != nil && images.Len() > 0 {
		uploaded, err := a.UploadImages(ctx, venue.ID, images)
		if err != nil {
			return venue, err
		}
		venue.Images = uploaded
	}
	return venue, nil
}

func (a *AdminVenuesView) Edit(ctx context.Context, id string, in forms.EditVenueInput) (*model.Venue, error) {
	if err := a.forms.Validate(&in); err != nil {
		return nil, err
	}
	return report(ctx, a.Views, &a.edit, "Venue updated successfully", "Failed to update venue", "Could not update the venue",
		func(ctx context.Context) (*model.Venue, error) {
			return a.client.Venues.Update(ctx, id, in.Update())
		})
}

func (a *AdminVenuesView) Delete(ctx context.Context, id string) error {
	_, err := report(ctx, a.Views, &a.deleting, "Venue deleted successfully", "Failed to delete venue", "Could not delete the venue",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, a.client.Venues.Delete(ctx, id)
		})
	return err
}

func (a *AdminVenuesView) UploadImages(ctx context.Context, id string, images *forms.ImageSelection) ([]string, error) {
	if images == nil || images.Len() == 0 {
		return nil, client.ErrNoImages
	}
	uploaded, err := report(ctx, a.Views, &a.upload, "Images uploaded successfully", "Failed to upload images", "Could not upload the images",
		func(ctx context.Context) ([]string, error) {
			return a.client.Venues.UploadImages(ctx, id, images.Files())
		})
	if err != nil {
		return nil, err
	}
	images.Clear()
	return uploaded, nil
}

func (a *AdminVenuesView) Close() { a.gen.Close() }

// AdminBookingsView backs the admin bookings table and its dialogs.
type AdminBookingsView struct {
	*Views
	gen            inflight.Generation
	edit, deleting inflight.Mutation
}

func (v *Views) AdminBookings() *AdminBookingsView {
	return &AdminBookingsView{Views: v}
}

func (b *AdminBookingsView) Load(ctx context.Context) ([]model.Booking, error) {
	bookings, err := inflight.Load(ctx, &b.gen, b.client.Bookings.List)
	if err != nil {
		return nil, b.loadError("Failed to load bookings", err)
	}
	return bookings, nil
}

func (b *AdminBookingsView) Edit(ctx context.Context, id string, in forms.EditBookingInput) (*model.Booking, error) {
	return editBooking(ctx, b.Views, &b.edit, id, in)
}

func (b *AdminBookingsView) Delete(ctx context.Context, booking model.Booking) error {
	return deleteBooking(ctx, b.Views, &b.deleting, booking)
}

func (b *AdminBookingsView) Close() { b.gen.Close() }

func editBooking(ctx context.Context, v *Views, m *inflight.Mutation, id string, in forms.EditBookingInput) (*model.Booking, error) {
	if err := v.forms.Validate(&in); err != nil {
		return nil, err
	}
	return report(ctx, v, m, "Booking updated successfully", "Failed to update booking", "Could not update the booking",
		func(ctx context.Context) (*model.Booking, error) {
			return v.client.Bookings.Update(ctx, id, in.Update())
		})
}

func deleteBooking(ctx context.Context, v *Views, m *inflight.Mutation, booking model.Booking) error {
	_, err := report(ctx, v, m, "Booking deleted successfully", "Failed to delete booking", "Could not delete the booking",
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, v.client.Bookings.Delete(ctx, booking.ID, booking.Venue.ID)
		})
	return err
}
