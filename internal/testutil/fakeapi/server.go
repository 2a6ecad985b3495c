// Package fakeapi is an in-memory stand-in for the venue booking REST API,
// served over httptest for package and end-to-end tests.
package fakeapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Seeded accounts.
const (
	AdminUsername = "admin"
	AdminPassword = "admin123"
	OwnerUsername = "owner1"
	OwnerPassword = "owner123"
	UserUsername  = "alice"
	UserPassword  = "secret1"
)

type userRecord struct {
	account  model.Account
	password string
}

type venueRecord struct {
	venue model.Venue
}

type bookingRecord struct {
	booking model.Booking
}

// Request is what the server saw of one incoming call.
type Request struct {
	Method        string
	Path          string
	Route         string
	Authorization string
	RequestID     string
}

type Server struct {
	*httptest.Server

	log *logger.Logger

	mu            sync.Mutex
	users         map[string]*userRecord
	venues        map[string]*venueRecord
	bookings      map[string]*bookingRecord
	tokens        map[string]string
	requests      []Request
	counts        map[string]int
	ownerBookings bool
	uploadDelay   time.Duration

	Admin model.Account
	Owner model.Account
	User  model.Account
}

// New starts a server seeded with one admin, one owner and one regular user.
// It is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		log:           logger.Discard(),
		users:         make(map[string]*userRecord),
		venues:        make(map[string]*venueRecord),
		bookings:      make(map[string]*bookingRecord),
		tokens:        make(map[string]string),
		counts:        make(map[string]int),
		ownerBookings: true,
	}
	s.Admin = s.AddUser(model.Account{Username: AdminUsername, Role: model.RoleAdmin, FirstName: "Admin", LastName: "Root", Phone: "+998900000001"}, AdminPassword)
	s.Owner = s.AddUser(model.Account{Username: OwnerUsername, Role: model.RoleOwner, FirstName: "Olim", LastName: "Toshev", Phone: "+998900000002"}, OwnerPassword)
	s.User = s.AddUser(model.Account{Username: UserUsername, Role: model.RoleUser, FirstName: "Alice", LastName: "Karimova", Phone: "+998900000003"}, UserPassword)

	router := httprouter.New()
	s.RegisterRoutes(router)

	var handler http.Handler = router
	handler = requestLogging(s.log)(handler)
	handler = recovery(s.log)(handler)

	s.Server = httptest.NewServer(handler)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) RegisterRoutes(router *httprouter.Router) {
	s.handle(router, http.MethodPost, "/auth/login", s.login)
	s.handle(router, http.MethodPost, "/auth/register", s.register)
	s.handle(router, http.MethodGet, "/auth/profile", s.profile)

	s.handle(router, http.MethodGet, "/users", s.listUsers)
	s.handle(router, http.MethodPost, "/users", s.createUser)
	s.handle(router, http.MethodPatch, "/users/:id", s.updateUser)
	s.handle(router, http.MethodDelete, "/users/:id", s.deleteUser)

	s.handle(router, http.MethodGet, "/venues", s.listVenues)
	s.handle(router, http.MethodGet, "/venues/:id", s.getVenue)
	// httprouter cannot mix /venues/owner/:ownerId with /venues/:id
	s.handle(router, http.MethodGet, "/venues/:id/:ownerId", s.listOwnerVenues)
	s.handle(router, http.MethodPost, "/venues", s.createVenue)
	s.handle(router, http.MethodPatch, "/venues/:id", s.updateVenue)
	s.handle(router, http.MethodDelete, "/venues/:id", s.deleteVenue)
	s.handle(router, http.MethodPost, "/venues/:id/upload-image", s.uploadImages)

	s.handle(router, http.MethodGet, "/bookings", s.listBookings)
	s.handle(router, http.MethodGet, "/bookings/:id/:ownerId", s.listOwnerBookings)
	s.handle(router, http.MethodPost, "/bookings", s.createBooking)
	s.handle(router, http.MethodPatch, "/bookings/:id", s.updateBooking)
	s.handle(router, http.MethodDelete, "/bookings/:id", s.deleteBooking)
}

func (s *Server) handle(router *httprouter.Router, method, route string, h httprouter.Handle) {
	key := method + " " + route
	router.Handle(method, route, func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		s.mu.Lock()
		s.counts[key]++
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.RequestURI(),
			Route:         route,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()

		h(w, r, ps)
	})
}

// Count returns how many times the route registered as "METHOD /pattern"
// was hit.
func (s *Server) Count(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[method+" "+route]
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// DisableOwnerBookings makes GET /bookings/owner/:ownerId answer 404, as a
// server without that endpoint would.
func (s *Server) DisableOwnerBookings() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ownerBookings = false
}

// SetUploadDelay slows down image uploads.
func (s *Server) SetUploadDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploadDelay = d
}

func (s *Server) AddUser(account model.Account, password string) model.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	account.ID = newID()
	s.users[account.ID] = &userRecord{account: account, password: password}
	return account
}

// TokenFor issues a token for an existing account without a login call.
func (s *Server) TokenFor(account model.Account) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.tokens[token] = account.ID
	return token
}

func (s *Server) AddVenue(req model.CreateVenueRequest) model.Venue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertVenueLocked(req)
}

func (s *Server) Venue(id string) (model.Venue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.venues[id]
	if !ok {
		return model.Venue{}, false
	}
	return s.populateVenueLocked(rec.venue), true
}

func (s *Server) BookingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

func (s *Server) authenticate(r *http.Request) (*userRecord, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	rec, ok := s.users[id]
	return rec, ok
}

// requireAuth writes 401/403 and reports false unless the caller is logged
// in with one of roles (any role when none are given).
func (s *Server) requireAuth(w http.ResponseWriter, r *http.Request, roles ...model.Role) (*userRecord, bool) {
	rec, ok := s.authenticate(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	if len(roles) == 0 {
		return rec, true
	}
	for _, role := range roles {
		if rec.account.Role == role {
			return rec, true
		}
	}
	writeError(w, http.StatusForbidden, "Forbidden resource")
	return nil, false
}

func newID() string {
	return primitive.NewObjectID().Hex()
}
