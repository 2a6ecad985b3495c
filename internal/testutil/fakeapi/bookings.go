package fakeapi

import (
	"net/http"
	"slices"
	"sort"
	"time"

	"venuebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

func (s *Server) listBookings(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeOK(w, s.bookingsLocked(func(model.Booking) bool { return true }))
}

func (s *Server) listOwnerBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ps.ByName("id") != "owner" || !s.ownerBookings {
		writeError(w, http.StatusNotFound, "Cannot GET "+r.URL.Path)
		return
	}

	ownerID := ps.ByName("ownerId")
	writeOK(w, s.bookingsLocked(func(b model.Booking) bool {
		v, ok := s.venues[b.Venue.ID]
		return ok && v.venue.Owner.ID == ownerID
	}))
}

func (s *Server) bookingsLocked(keep func(model.Booking) bool) []model.Booking {
	out := make([]model.Booking, 0)
	for _, rec := range s.bookings {
		if keep(rec.booking) {
			out = append(out, s.populateBookingLocked(rec.booking))
		}
	}
	sortByID(out, func(b model.Booking) string { return b.ID })
	return out
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	caller, ok := s.requireAuth(w, r)
	if !ok {
		return
	}

	var req model.CreateBookingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Date.IsZero() {
		writeError(w, http.StatusBadRequest, []string{"date must be a valid ISO 8601 date string"})
		return
	}
	if req.GuestCount < 1 {
		writeError(w, http.StatusBadRequest, []string{"guestCount must not be less than 1"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	venue, ok := s.venues[req.Venue]
	if !ok {
		writeError(w, http.StatusNotFound, "Venue not found")
		return
	}
	if venue.venue.IsBooked(req.Date) {
		writeError(w, http.StatusConflict, "Venue already booked for this date")
		return
	}
	if req.GuestCount > venue.venue.Capacity {
		writeError(w, http.StatusBadRequest, "Guest count exceeds venue capacity")
		return
	}

	now := time.Now().UTC()
	b := model.Booking{
		ID:         newID(),
		User:       model.AccountRef{ID: caller.account.ID},
		Venue:      model.VenueRef{ID: venue.venue.ID},
		Date:       req.Date,
		GuestCount: req.GuestCount,
		TotalPrice: float64(req.GuestCount) * venue.venue.PricePerSeat,
		Status:     model.BookingStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.bookings[b.ID] = &bookingRecord{booking: b}
	venue.venue.BookedDates = append(venue.venue.BookedDates, model.BookedDate{
		BookingID: b.ID,
		Date:      b.Date,
		UserID:    caller.account.ID,
	})
	writeCreated(w, s.populateBookingLocked(b))
}

func (s *Server) updateBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin, model.RoleOwner); !ok {
		return
	}

	var patch model.BookingUpdate
	if !decodeBody(w, r, &patch) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.bookings[ps.ByName("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	b := &rec.booking
	venue := s.venues[b.Venue.ID]

	if patch.Date != nil && !patch.Date.Equal(b.Date) {
		if venue != nil && venue.venue.IsBooked(*patch.Date) {
			writeError(w, http.StatusConflict, "Venue already booked for this date")
			return
		}
		b.Date = *patch.Date
		if venue != nil {
			for i := range venue.venue.BookedDates {
				if venue.venue.BookedDates[i].BookingID == b.ID {
					venue.venue.BookedDates[i].Date = b.Date
				}
			}
		}
	}
	if patch.GuestCount != nil {
		b.GuestCount = *patch.GuestCount
	}
	if patch.Status != nil {
		b.Status = *patch.Status
	}
	if patch.TotalPrice != nil {
		b.TotalPrice = *patch.TotalPrice
	}
	b.UpdatedAt = time.Now().UTC()
	writeOK(w, s.populateBookingLocked(*b))
}

func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin, model.RoleOwner); !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := ps.ByName("id")
	rec, ok := s.bookings[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	delete(s.bookings, id)
	if venue, ok := s.venues[rec.booking.Venue.ID]; ok {
		venue.venue.BookedDates = slices.DeleteFunc(venue.venue.BookedDates, func(d model.BookedDate) bool {
			return d.BookingID == id
		})
	}
	writeOK(w, map[string]any{"success": true, "id": id})
}

func (s *Server) populateBookingLocked(b model.Booking) model.Booking {
	if u, ok := s.users[b.User.ID]; ok {
		b.User = model.RefAccount(u.account)
	}
	if v, ok := s.venues[b.Venue.ID]; ok {
		b.Venue = model.RefVenue(s.populateVenueLocked(v.venue))
	}
	return b
}

func sortByID[T any](items []T, id func(T) string) {
	sort.Slice(items, func(i, j int) bool { return id(items[i]) < id(items[j]) })
}

func sortStrings(items []string) {
	sort.Strings(items)
}
