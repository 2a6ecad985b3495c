package fakeapi

import (
	"net/http"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"venuebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const maxUploadFiles = 4

func (s *Server) listVenues(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()

	s.mu.Lock()
	defer s.mu.Unlock()

	venues := make([]model.Venue, 0)
	for _, rec := range s.venues {
		if venueMatches(rec.venue, q.Get) {
			venues = append(venues, s.populateVenueLocked(rec.venue))
		}
	}
	sortByID(venues, func(v model.Venue) string { return v.ID })

	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit >= 0 && limit < len(venues) {
		venues = venues[:limit]
	}
	writeOK(w, venues)
}

func venueMatches(v model.Venue, get func(string) string) bool {
	if text := strings.ToLower(get("query")); text != "" &&
		!strings.Contains(strings.ToLower(v.Name), text) &&
		!strings.Contains(strings.ToLower(v.Address), text) {
		return false
	}
	if district := get("district"); district != "" && !strings.EqualFold(v.District, district) {
		return false
	}
	if capacity, err := strconv.Atoi(get("capacity")); err == nil && v.Capacity < capacity {
		return false
	}
	if minPrice, err := strconv.ParseFloat(get("minPricePerSeat"), 64); err == nil && v.PricePerSeat < minPrice {
		return false
	}
	if maxPrice, err := strconv.ParseFloat(get("maxPricePerSeat"), 64); err == nil && v.PricePerSeat > maxPrice {
		return false
	}
	if get("hasImages") == "true" && len(v.Images) == 0 {
		return false
	}
	return true
}

func (s *Server) getVenue(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.venues[ps.ByName("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Venue not found")
		return
	}
	writeOK(w, s.populateVenueLocked(rec.venue))
}

func (s *Server) listOwnerVenues(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") != "owner" {
		http.NotFound(w, r)
		return
	}
	ownerID := ps.ByName("ownerId")

	s.mu.Lock()
	defer s.mu.Unlock()

	venues := make([]model.Venue, 0)
	for _, rec := range s.venues {
		if rec.venue.Owner.ID == ownerID {
			venues = append(venues, s.populateVenueLocked(rec.venue))
		}
	}
	sortByID(venues, func(v model.Venue) string { return v.ID })
	writeOK(w, venues)
}

func (s *Server) createVenue(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin, model.RoleOwner); !ok {
		return
	}

	var req model.CreateVenueRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var msgs []string
	if req.Name == "" {
		msgs = append(msgs, "name should not be empty")
	}
	if req.Capacity < 1 {
		msgs = append(msgs, "capacity must not be less than 1")
	}
	if req.PricePerSeat < 0 {
		msgs = append(msgs, "pricePerSeat must not be less than 0")
	}
	if len(msgs) > 0 {
		writeError(w, http.StatusBadRequest, msgs)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[req.Owner]; !ok {
		writeError(w, http.StatusBadRequest, "Owner not found")
		return
	}
	writeCreated(w, s.insertVenueLocked(req))
}

func (s *Server) insertVenueLocked(req model.CreateVenueRequest) model.Venue {
	now := time.Now().UTC()
	status := req.Status
	if status == "" {
		status = model.VenueStatusPending
	}
	v := model.Venue{
		ID:           newID(),
		Name:         req.Name,
		Images:       append([]string{}, req.Images...),
		District:     req.District,
		Address:      req.Address,
		Capacity:     req.Capacity,
		PricePerSeat: req.PricePerSeat,
		Phone:        req.Phone,
		Owner:        model.AccountRef{ID: req.Owner},
		Status:       status,
		Description:  req.Description,
		BookedDates:  []model.BookedDate{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.venues[v.ID] = &venueRecord{venue: v}
	return s.populateVenueLocked(v)
}

func (s *Server) updateVenue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin, model.RoleOwner); !ok {
		return
	}

	var patch model.VenueUpdate
	if !decodeBody(w, r, &patch) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.venues[ps.ByName("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Venue not found")
		return
	}
	v := &rec.venue
	if patch.Name != nil {
		v.Name = *patch.Name
	}
	if patch.District != nil {
		v.District = *patch.District
	}
	if patch.Address != nil {
		v.Address = *patch.Address
	}
	if patch.Capacity != nil {
		v.Capacity = *patch.Capacity
	}
	if patch.PricePerSeat != nil {
		v.PricePerSeat = *patch.PricePerSeat
	}
	if patch.Phone != nil {
		v.Phone = *patch.Phone
	}
	if patch.Status != nil {
		v.Status = *patch.Status
	}
	if patch.Owner != nil {
		if _, ok := s.users[*patch.Owner]; !ok {
			writeError(w, http.StatusBadRequest, "Owner not found")
			return
		}
		v.Owner = model.AccountRef{ID: *patch.Owner}
	}
	if patch.Description != nil {
		v.Description = *patch.Description
	}
	v.UpdatedAt = time.Now().UTC()
	writeOK(w, s.populateVenueLocked(*v))
}

func (s *Server) deleteVenue(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin, model.RoleOwner); !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := ps.ByName("id")
	if _, ok := s.venues[id]; !ok {
		writeError(w, http.StatusNotFound, "Venue not found")
		return
	}
	delete(s.venues, id)
	for bid, b := range s.bookings {
		if b.booking.Venue.ID == id {
			delete(s.bookings, bid)
		}
	}
	writeOK(w, map[string]any{"success": true, "id": id})
}

func (s *Server) uploadImages(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if _, ok := s.requireAuth(w, r, model.RoleAdmin, model.RoleOwner); !ok {
		return
	}
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	files := r.MultipartForm.File["images"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "No files uploaded")
		return
	}
	if len(files) > maxUploadFiles {
		writeError(w, http.StatusBadRequest, "Too many files")
		return
	}

	s.mu.Lock()
	delay := s.uploadDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.venues[ps.ByName("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "Venue not found")
		return
	}
	for _, fh := range files {
		rec.venue.Images = append(rec.venue.Images, "/uploads/"+rec.venue.ID+"/"+path.Base(fh.Filename))
	}
	writeCreated(w, rec.venue.Images)
}

// populateVenueLocked returns v with the owner embedded, as the real API
// populates it.
func (s *Server) populateVenueLocked(v model.Venue) model.Venue {
	v.Images = slices.Clone(v.Images)
	v.BookedDates = slices.Clone(v.BookedDates)
	if owner, ok := s.users[v.Owner.ID]; ok {
		v.Owner = model.RefAccount(owner.account)
	}
	return v
}
