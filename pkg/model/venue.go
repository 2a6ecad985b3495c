package model

import (
	"bytes"
	"encoding/json"
	"time"
)

type VenueStatus string

const (
	VenueStatusPending   VenueStatus = "pending"
	VenueStatusApproved  VenueStatus = "approved"
	VenueStatusConfirmed VenueStatus = "confirmed"
	VenueStatusCancelled VenueStatus = "cancelled"
)

type Venue struct {
	ID           string       `json:"_id,omitempty"`
	Name         string       `json:"name"`
	Images       []string     `json:"images"`
	District     string       `json:"district"`
	Address      string       `json:"address"`
	Capacity     int          `json:"capacity"`
	PricePerSeat float64      `json:"pricePerSeat"`
	Phone        string       `json:"phone"`
	Owner        AccountRef   `json:"owner"`
	Status       VenueStatus  `json:"status"`
	Description  string       `json:"description,omitempty"`
	BookedDates  []BookedDate `json:"bookedDates"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

func (v *Venue) UnmarshalJSON(data []byte) error {
	type alias Venue
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Venue(raw.alias)
	if v.ID == "" {
		v.ID = raw.AltID
	}
	return nil
}

func (v Venue) IsBooked(d Date) bool {
	for _, booked := range v.BookedDates {
		if booked.Date.Equal(d) {
			return true
		}
	}
	return false
}

func (v Venue) OwnerID() string {
	return v.Owner.ID
}

// BookedDate is one occupied date of a venue. The API sends it either as an
// object or as a bare date string.
type BookedDate struct {
	BookingID string `json:"_id,omitempty"`
	Date      Date   `json:"date"`
	UserID    string `json:"userId,omitempty"`
}

func (b *BookedDate) UnmarshalJSON(data []byte) error {
	*b = BookedDate{}
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.Date)
	}

	type alias BookedDate
	var raw struct {
		alias
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = BookedDate(raw.alias)
	if b.BookingID == "" {
		b.BookingID = raw.AltID
	}
	return nil
}

// VenueRef is a reference to a venue that the API sends either as a bare id
// or as the populated venue.
type VenueRef struct {
	ID    string
	Venue *Venue
}

func RefVenue(v Venue) VenueRef {
	return VenueRef{ID: v.ID, Venue: &v}
}

func (r VenueRef) MarshalJSON() ([]byte, error) {
	if r.Venue != nil {
		return json.Marshal(r.Venue)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

func (r *VenueRef) UnmarshalJSON(data []byte) error {
	*r = VenueRef{}
	data = bytes.TrimSpace(data)
	switch {
	case string(data) == "null":
		return nil
	case len(data) > 0 && data[0] == '"':
		return json.Unmarshal(data, &r.ID)
	}
	var v Venue
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	r.ID = v.ID
	r.Venue = &v
	return nil
}

// VenueFilter holds the GET /venues query parameters. Only set fields are
// sent; numeric pointers distinguish "unset" from zero.
type VenueFilter struct {
	Query           string   `url:"query,omitempty"`
	SortBy          string   `url:"sortBy,omitempty"`
	SortOrder       string   `url:"sortOrder,omitempty"`
	Capacity        *int     `url:"capacity,omitempty"`
	District        string   `url:"district,omitempty"`
	MinPricePerSeat *float64 `url:"minPricePerSeat,omitempty"`
	MaxPricePerSeat *float64 `url:"maxPricePerSeat,omitempty"`
	HasImages       string   `url:"hasImages,omitempty"`
	FromDate        *Date    `url:"fromDate,omitempty"`
	ToDate          *Date    `url:"toDate,omitempty"`
	Limit           *int     `url:"limit,omitempty"`
}

type CreateVenueRequest struct {
	Name         string      `json:"name"`
	District     string      `json:"district"`
	Address      string      `json:"address"`
	Capacity     int         `json:"capacity"`
	PricePerSeat float64     `json:"pricePerSeat"`
	Phone        string      `json:"phone"`
	Status       VenueStatus `json:"status"`
	Owner        string      `json:"owner"`
	Description  string      `json:"description,omitempty"`
	Images       []string    `json:"images,omitempty"`
}

type VenueUpdate struct {
	Name         *string      `json:"name,omitempty"`
	District     *string      `json:"district,omitempty"`
	Address      *string      `json:"address,omitempty"`
	Capacity     *int         `json:"capacity,omitempty"`
	PricePerSeat *float64     `json:"pricePerSeat,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	Status       *VenueStatus `json:"status,omitempty"`
	Owner        *string      `json:"owner,omitempty"`
	Description  *string      `json:"description,omitempty"`
}

type ImageFile struct {
	Name        string
	ContentType string
	Data        []byte
}
