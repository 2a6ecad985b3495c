package model

import (
	"encoding/json"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID         string        `json:"_id,omitempty"`
	User       AccountRef    `json:"user"`
	Venue      VenueRef      `json:"venue"`
	Date       Date          `json:"date"`
	GuestCount int           `json:"guestCount"`
	TotalPrice float64       `json:"totalPrice"`
	Status     BookingStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

func (b *Booking) UnmarshalJSON(data []byte) error {
	type alias Booking
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Booking(raw.alias)
	if b.ID == "" {
		b.ID = raw.AltID
	}
	return nil
}

type CreateBookingRequest struct {
	Venue      string `json:"venue"`
	Date       Date   `json:"date"`
	GuestCount int    `json:"guestCount"`
}

type BookingUpdate struct {
	Date       *Date          `json:"date,omitempty"`
	GuestCount *int           `json:"guestCount,omitempty"`
	Status     *BookingStatus `json:"status,omitempty"`
	TotalPrice *float64       `json:"totalPrice,omitempty"`
}
