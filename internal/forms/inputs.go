package forms

import (
	"strings"

	"venuebook/pkg/model"
	"venuebook/pkg/sanitizer"
)

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"min=6"`
}

func (in *LoginInput) Normalize() {
	in.Username = sanitizer.NormalizeUsername(in.Username)
}

func (in LoginInput) Request() model.LoginRequest {
	return model.LoginRequest{Username: in.Username, Password: in.Password}
}

type RegisterInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Username  string `json:"username" validate:"min=3"`
	Password  string `json:"password" validate:"min=6"`
	Phone     string `json:"phone" validate:"uz_phone"`
}

func (in *RegisterInput) Normalize() {
	in.FirstName = sanitizer.NormalizeName(in.FirstName)
	in.LastName = sanitizer.NormalizeName(in.LastName)
	in.Username = sanitizer.NormalizeUsername(in.Username)
	in.Phone = normalizePhone(in.Phone)
}

func (in RegisterInput) Request() model.RegisterRequest {
	return model.RegisterRequest{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Username:  in.Username,
		Phone:     in.Phone,
		Password:  in.Password,
		Role:      model.RoleUser,
	}
}

type AddOwnerInput struct {
	Username  string     `json:"username" validate:"required"`
	FirstName string     `json:"firstName" validate:"required"`
	LastName  string     `json:"lastName" validate:"required"`
	Phone     string     `json:"phone" validate:"required"`
	Password  string     `json:"password" validate:"min=6"`
	Role      model.Role `json:"role" validate:"required,oneof=user admin owner"`
}

func (in *AddOwnerInput) Normalize() {
	in.Username = sanitizer.NormalizeUsername(in.Username)
	in.FirstName = sanitizer.NormalizeName(in.FirstName)
	in.LastName = sanitizer.NormalizeName(in.LastName)
	in.Phone = normalizePhone(in.Phone)
	in.Role = model.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
}

func (in AddOwnerInput) Request() model.CreateAccountRequest {
	return model.CreateAccountRequest{
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
		Password:  in.Password,
		Role:      in.Role,
	}
}

type EditOwnerInput struct {
	Username  string `json:"username" validate:"required"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
}

// EditOwnerFrom prefills the edit dialog.
func EditOwnerFrom(a model.Account) EditOwnerInput {
	return EditOwnerInput{
		Username:  a.Username,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Phone:     a.Phone,
	}
}

func (in *EditOwnerInput) Normalize() {
	in.Username = sanitizer.NormalizeUsername(in.Username)
	in.FirstName = sanitizer.NormalizeName(in.FirstName)
	in.LastName = sanitizer.NormalizeName(in.LastName)
	in.Phone = normalizePhone(in.Phone)
}

func (in EditOwnerInput) Update() model.AccountUpdate {
	return model.AccountUpdate{
		Username:  model.Ptr(in.Username),
		FirstName: model.Ptr(in.FirstName),
		LastName:  model.Ptr(in.LastName),
		Phone:     model.Ptr(in.Phone),
	}
}

type AddVenueInput struct {
	Name         string            `json:"name" validate:"required"`
	District     string            `json:"district" validate:"required"`
	Address      string            `json:"address" validate:"required"`
	Capacity     int               `json:"capacity" validate:"min=1"`
	PricePerSeat float64           `json:"pricePerSeat" validate:"min=1"`
	Phone        string            `json:"phone" validate:"required"`
	Status       model.VenueStatus `json:"status" validate:"required,oneof=pending approved confirmed cancelled"`
	Owner        string            `json:"owner" validate:"required,mongodb"`
	Description  string            `json:"description"`
}

func (in *AddVenueInput) Normalize() {
	in.Name = sanitizer.TrimAndNormalize(in.Name)
	in.District = sanitizer.NormalizeDistrict(in.District)
	in.Address = sanitizer.NormalizeAddress(in.Address)
	in.Phone = normalizePhone(in.Phone)
	in.Owner = strings.TrimSpace(in.Owner)
	in.Description = strings.TrimSpace(in.Description)
}

func (in AddVenueInput) Request() model.CreateVenueRequest {
	return model.CreateVenueRequest{
		Name:         in.Name,
		District:     in.District,
		Address:      in.Address,
		Capacity:     in.Capacity,
		PricePerSeat: in.PricePerSeat,
		Phone:        in.Phone,
		Status:       in.Status,
		Owner:        in.Owner,
		Description:  in.Description,
	}
}

type EditVenueInput struct {
	Name         string            `json:"name" validate:"required"`
	District     string            `json:"district" validate:"required"`
	Address      string            `json:"address" validate:"required"`
	Capacity     int               `json:"capacity" validate:"min=1"`
	PricePerSeat float64           `json:"pricePerSeat" validate:"min=1"`
	Phone        string            `json:"phone" validate:"required"`
	Status       model.VenueStatus `json:"status" validate:"required,oneof=pending approved confirmed cancelled"`
	Owner        string            `json:"owner" validate:"required,mongodb"`
}

// EditVenueFrom prefills the edit dialog.
func EditVenueFrom(v model.Venue) EditVenueInput {
	status := v.Status
	if status == "" {
		status = model.VenueStatusPending
	}
	return EditVenueInput{
		Name:         v.Name,
		District:     v.District,
		Address:      v.Address,
		Capacity:     v.Capacity,
		PricePerSeat: v.PricePerSeat,
		Phone:        v.Phone,
		Status:       status,
		Owner:        v.OwnerID(),
	}
}

func (in *EditVenueInput) Normalize() {
	in.Name = sanitizer.TrimAndNormalize(in.Name)
	in.District = sanitizer.NormalizeDistrict(in.District)
	in.Address = sanitizer.NormalizeAddress(in.Address)
	in.Phone = normalizePhone(in.Phone)
	in.Owner = strings.TrimSpace(in.Owner)
}

func (in EditVenueInput) Update() model.VenueUpdate {
	return model.VenueUpdate{
		Name:         model.Ptr(in.Name),
		District:     model.Ptr(in.District),
		Address:      model.Ptr(in.Address),
		Capacity:     model.Ptr(in.Capacity),
		PricePerSeat: model.Ptr(in.PricePerSeat),
		Phone:        model.Ptr(in.Phone),
		Status:       model.Ptr(in.Status),
		Owner:        model.Ptr(in.Owner),
	}
}

// BookingInput is the booking form on the venue page.
type BookingInput struct {
	Date       model.Date `json:"date" validate:"required,not_past"`
	GuestCount int        `json:"guestCount" validate:"min=1"`
}

func (in *BookingInput) Normalize() {}

func (in BookingInput) Request(venueID string) model.CreateBookingRequest {
	return model.CreateBookingRequest{Venue: venueID, Date: in.Date, GuestCount: in.GuestCount}
}

// DefaultGuestCount is the guest count the booking form starts with.
func DefaultGuestCount(capacity int) int {
	return max(1, min(50, capacity))
}

type EditBookingInput struct {
	Date       model.Date          `json:"date" validate:"required"`
	GuestCount int                 `json:"guestCount" validate:"min=1"`
	Status     model.BookingStatus `json:"status" validate:"required,oneof=pending confirmed cancelled"`
	TotalPrice float64             `json:"totalPrice" validate:"min=0"`
}

// EditBookingFrom prefills the edit dialog.
func EditBookingFrom(b model.Booking) EditBookingInput {
	return EditBookingInput{
		Date:       b.Date,
		GuestCount: b.GuestCount,
		Status:     b.Status,
		TotalPrice: b.TotalPrice,
	}
}

func (in *EditBookingInput) Normalize() {
	in.Status = model.BookingStatus(strings.ToLower(strings.TrimSpace(string(in.Status))))
}

func (in EditBookingInput) Update() model.BookingUpdate {
	return model.BookingUpdate{
		Date:       model.Ptr(in.Date),
		GuestCount: model.Ptr(in.GuestCount),
		Status:     model.Ptr(in.Status),
		TotalPrice: model.Ptr(in.TotalPrice),
	}
}

// normalizePhone converts to E.164 when the number parses and otherwise
// leaves the trimmed input for the validator to reject.
func normalizePhone(phone string) string {
	if normalized := sanitizer.NormalizePhone(phone); normalized != "" {
		return normalized
	}
	return strings.TrimSpace(phone)
}
