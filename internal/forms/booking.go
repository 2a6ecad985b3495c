package forms

import (
	"errors"
	"fmt"

	"venuebook/pkg/model"
)

// ValidateBooking checks the booking form against the venue being booked.
func (v *Validator) ValidateBooking(in *BookingInput, venue model.Venue) error {
	var errs ValidationErrors
	if err := v.Validate(in); err != nil {
		if !errors.As(err, &errs) {
			return err
		}
	}

	if errs.For("date") == "" && venue.IsBooked(in.Date) {
		errs = append(errs, FieldError{Field: "date", Message: "This date is already booked"})
	}
	if errs.For("guestCount") == "" && venue.Capacity > 0 && in.GuestCount > venue.Capacity {
		errs = append(errs, FieldError{
			Field:   "guestCount",
			Message: fmt.Sprintf("Guest count cannot exceed capacity (%d)", venue.Capacity),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DisabledDates are the dates the booking calendar does not offer.
func DisabledDates(venue model.Venue) []model.Date {
	dates := make([]model.Date, 0, len(venue.BookedDates))
	for _, bd := range venue.BookedDates {
		if !bd.Date.IsZero() {
			dates = append(dates, bd.Date)
		}
	}
	return dates
}
