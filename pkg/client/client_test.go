package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"venuebook/internal/testutil/fakeapi"
	"venuebook/pkg/cache"
	"venuebook/pkg/config"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/logger"
	"venuebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken struct {
	mu    sync.Mutex
	token string
}

func (s *staticToken) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.token != ""
}

func (s *staticToken) set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func newTestClient(t *testing.T, baseURL string, tokens TokenSource) *Client {
	t.Helper()
	cfg := config.Defaults()
	cfg.APIBaseURL = baseURL
	cfg.RequestTimeout = 5 * time.Second
	return NewClient(cfg, tokens, cache.New(logger.Discard()))
}

func seedVenue(srv *fakeapi.Server) model.Venue {
	return srv.AddVenue(model.CreateVenueRequest{
		Name:         "Grand Hall",
		District:     "Chilonzor",
		Address:      "Bunyodkor 1",
		Capacity:     100,
		PricePerSeat: 50000,
		Phone:        "+998901112233",
		Status:       model.VenueStatusApproved,
		Owner:        srv.Owner.ID,
	})
}

func TestHttpClient_Headers(t *testing.T) {
	srv := fakeapi.New(t)
	tokens := &staticToken{}
	c := newTestClient(t, srv.URL, tokens)
	ctx := context.Background()

	_, err := c.Bookings.List(ctx)
	require.NoError(t, err)
	req := srv.LastRequest()
	assert.Empty(t, req.Authorization, "no token, no header")
	assert.NotEmpty(t, req.RequestID)

	tokens.set("abc")
	_, err = c.Venues.List(ctx, model.VenueFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", srv.LastRequest().Authorization)
}

func TestAccounts_Login(t *testing.T) {
	srv := fakeapi.New(t)
	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	payload, err := c.Accounts.Login(ctx, model.LoginRequest{Username: fakeapi.UserUsername, Password: fakeapi.UserPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, payload.AccessToken)
	assert.Equal(t, model.RoleUser, payload.User.Role)
	assert.Equal(t, srv.User.ID, payload.User.ID)

	_, err = c.Accounts.Login(ctx, model.LoginRequest{Username: fakeapi.UserUsername, Password: "wrong-password"})
	require.Error(t, err)
	apiErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, apiErr.Code)
	assert.Equal(t, "Invalid username or password", apperrors.UserMessage(err, "fallback"))
}

func TestAccounts_RegisterForcesUserRole(t *testing.T) {
	srv := fakeapi.New(t)
	c := newTestClient(t, srv.URL, nil)

	payload, err := c.Accounts.Register(context.Background(), model.RegisterRequest{
		FirstName: "Bek",
		LastName:  "Aliyev",
		Username:  "bek",
		Phone:     "+998901234567",
		Password:  "secret1",
		Role:      model.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, payload.User.Role)
}

func TestAccounts_Profile(t *testing.T) {
	srv := fakeapi.New(t)
	tokens := &staticToken{}
	c := newTestClient(t, srv.URL, tokens)
	ctx := context.Background()

	_, err := c.Accounts.Profile(ctx)
	apiErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeUnauthorized, apiErr.Code)

	tokens.set(srv.TokenFor(srv.Owner))
	profile, err := c.Accounts.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.OwnerUsername, profile.Username)
}

func TestAccounts_CRUDInvalidatesList(t *testing.T) {
	srv := fakeapi.New(t)
	c := newTestClient(t, srv.URL, &staticToken{token: srv.TokenFor(srv.Admin)})
	ctx := context.Background()

	owners, err := c.Accounts.ListByRole(ctx, model.RoleOwner)
	require.NoError(t, err)
	require.Len(t, owners, 1)

	_, err = c.Accounts.ListByRole(ctx, model.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Count(http.MethodGet, "/users"), "second read is served from cache")

	created, err := c.Accounts.Create(ctx, model.CreateAccountRequest{
		Username:  "owner2",
		FirstName: "Sardor",
		LastName:  "Nazarov",
		Phone:     "+998907654321",
		Password:  "owner234",
		Role:      model.RoleOwner,
	})
	require.NoError(t, err)

	owners, err = c.Accounts.ListByRole(ctx, model.RoleOwner)
	require.NoError(t, err)
	assert.Len(t, owners, 2)

	updated, err := c.Accounts.Update(ctx, created.ID, model.AccountUpdate{FirstName: model.Ptr("Sardorbek")})
	require.NoError(t, err)
	assert.Equal(t, "Sardorbek", updated.FirstName)

	owners, err = c.Accounts.ListByRole(ctx, model.RoleOwner)
	require.NoError(t, err)
	names := []string{owners[0].FirstName, owners[1].FirstName}
	assert.Contains(t, names, "Sardorbek")

	require.NoError(t, c.Accounts.Delete(ctx, created.ID))
	owners, err = c.Accounts.ListByRole(ctx, model.RoleOwner)
	require.NoError(t, err)
	assert.Len(t, owners, 1)
	assert.Equal(t, 4, srv.Count(http.MethodGet, "/users"))
}

func TestVenues_ListFilterAndCache(t *testing.T) {
	srv := fakeapi.New(t)
	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedVenue(srv)
	}

	venues, err := c.Venues.List(ctx, model.VenueFilter{Limit: model.Ptr(3)})
	require.NoError(t, err)
	assert.Len(t, venues, 3)
	assert.Equal(t, "/venues?limit=3", srv.LastRequest().Path)

	_, err = c.Venues.List(ctx, model.VenueFilter{Limit: model.Ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Count(http.MethodGet, "/venues"))

	all, err := c.Venues.List(ctx, model.VenueFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, 2, srv.Count(http.MethodGet, "/venues"), "a different filter is a different query")

	none, err := c.Venues.List(ctx, model.VenueFilter{MinPricePerSeat: model.Ptr(60000.0)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestVenues_GetNotFound(t *testing.T) {
	srv := fakeapi.New(t)
	c := newTestClient(t, srv.URL, nil)

	_, err := c.Venues.Get(context.Background(), "000000000000000000000000")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))

	apiErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Venue not found", apiErr.Message)
}

func TestVenues_ImagesNormalized(t *testing.T) {
	srv := fakeapi.New(t)
	venue := srv.AddVenue(model.CreateVenueRequest{
		Name:     "Navruz",
		Capacity: 50,
		Owner:    srv.Owner.ID,
		Images:   []string{" /uploads/a.jpg", "/uploads/a.jpg", "", "/uploads/b.jpg"},
	})
	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	got, err := c.Venues.Get(ctx, venue.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"}, got.Images)

	list, err := c.Venues.List(ctx, model.VenueFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"/uploads/a.jpg", "/uploads/b.jpg"}, list[0].Images)
}

func TestVenues_MutationsInvalidate(t *testing.T) {
	srv := fakeapi.New(t)
	c := newTestClient(t, srv.URL, &staticToken{token: srv.TokenFor(srv.Admin)})
	ctx := context.Background()
	existing := seedVenue(srv)

	list, err := c.Venues.List(ctx, model.VenueFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	created, err := c.Venues.Create(ctx, model.CreateVenueRequest{
		Name:         "Navruz",
		District:     "Yunusobod",
		Address:      "Amir Temur 5",
		Capacity:     200,
		PricePerSeat: 70000,
		Phone:        "+998901234567",
		Status:       model.VenueStatusPending,
		Owner:        srv.Owner.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, srv.Owner.ID, created.OwnerID())

	list, err = c.Venues.List(ctx, model.VenueFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2, "create invalidates the venue list")

	got, err := c.Venues.Get(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grand Hall", got.Name)

	_, err = c.Venues.Update(ctx, existing.ID, model.VenueUpdate{Name: model.Ptr("Grand Hall II")})
	require.NoError(t, err)

	got, err = c.Venues.Get(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Grand Hall II", got.Name, "update invalidates the item")

	require.NoError(t, c.Venues.Delete(ctx, existing.ID))
	_, err = c.Venues.Get(ctx, existing.ID)
	assert.True(t, apperrors.IsNotFound(err))

	list, err = c.Venues.List(ctx, model.VenueFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestVenues_UploadImages(t *testing.T) {
	srv := fakeapi.New(t)
	c := newTestClient(t, srv.URL, &staticToken{token: srv.TokenFor(srv.Admin)})
	ctx := context.Background()
	venue := seedVenue(srv)

	files := make([]model.ImageFile, 5)
	for i := range files {
		files[i] = model.ImageFile{Name: "photo.jpg", ContentType: "image/jpeg", Data: []byte("jpeg")}
	}

	_, err := c.Venues.UploadImages(ctx, venue.ID, files)
	require.ErrorIs(t, err, ErrTooManyImages)
	assert.Zero(t, srv.Count(http.MethodPost, "/venues/:id/upload-image"), "rejected before any request")

	_, err = c.Venues.UploadImages(ctx, venue.ID, nil)
	require.ErrorIs(t, err, ErrNoImages)

	_, err = c.Venues.Get(ctx, venue.ID)
	require.NoError(t, err)

	images, err := c.Venues.UploadImages(ctx, venue.ID, []model.ImageFile{
		{Name: "front.jpg", ContentType: "image/jpeg", Data: []byte("front")},
		{Name: "hall.png", Data: []byte("\x89PNG\r\n\x1a\n")},
	})
	require.NoError(t, err)
	assert.Len(t, images, 2)

	got, err := c.Venues.Get(ctx, venue.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 2, "upload invalidates the venue")
}

func TestBookings_CreateInvalidatesVenueAndList(t *testing.T) {
	srv := fakeapi.New(t)
	tokens := &staticToken{token: srv.TokenFor(srv.User)}
	c := newTestClient(t, srv.URL, tokens)
	ctx := context.Background()
	venue := seedVenue(srv)
	date := model.Today().AddDays(10)

	before, err := c.Venues.Get(ctx, venue.ID)
	require.NoError(t, err)
	assert.False(t, before.IsBooked(date))

	bookings, err := c.Bookings.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	listed, err := c.Venues.List(ctx, model.VenueFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)

	booking, err := c.Bookings.Create(ctx, model.CreateBookingRequest{Venue: venue.ID, Date: date, GuestCount: 40})
	require.NoError(t, err)
	assert.Equal(t, 2000000.0, booking.TotalPrice)
	assert.Equal(t, model.BookingStatusPending, booking.Status)

	after, err := c.Venues.Get(ctx, venue.ID)
	require.NoError(t, err)
	assert.True(t, after.IsBooked(date))

	bookings, err = c.Bookings.List(ctx)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, booking.ID, bookings[0].ID)

	listed, err = c.Venues.List(ctx, model.VenueFilter{})
	require.NoError(t, err)
	assert.True(t, listed[0].IsBooked(date), "venue list is invalidated too")

	_, err = c.Bookings.Create(ctx, model.CreateBookingRequest{Venue: venue.ID, Date: date, GuestCount: 10})
	require.Error(t, err)
	apiErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeConflict, apiErr.Code)
}

func TestBookings_UpdateAndDelete(t *testing.T) {
	srv := fakeapi.New(t)
	c := newTestClient(t, srv.URL, &staticToken{token: srv.TokenFor(srv.Admin)})
	ctx := context.Background()
	venue := seedVenue(srv)
	date := model.Today().AddDays(3)
	moved := date.AddDays(1)

	booking, err := c.Bookings.Create(ctx, model.CreateBookingRequest{Venue: venue.ID, Date: date, GuestCount: 10})
	require.NoError(t, err)

	_, err = c.Venues.Get(ctx, venue.ID)
	require.NoError(t, err)

	updated, err := c.Bookings.Update(ctx, booking.ID, model.BookingUpdate{
		Date:   &moved,
		Status: model.Ptr(model.BookingStatusConfirmed),
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, updated.Status)

	got, err := c.Venues.Get(ctx, venue.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBooked(moved))
	assert.False(t, got.IsBooked(date))

	require.NoError(t, c.Bookings.Delete(ctx, booking.ID, venue.ID))

	got, err = c.Venues.Get(ctx, venue.ID)
	require.NoError(t, err)
	assert.Empty(t, got.BookedDates)

	bookings, err := c.Bookings.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)
}

func TestBookings_ListByOwner(t *testing.T) {
	tests := []struct {
		name          string
		disableServer bool
	}{
		{name: "server endpoint"},
		{name: "client-side fallback", disableServer: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := fakeapi.New(t)
			if tt.disableServer {
				srv.DisableOwnerBookings()
			}
			c := newTestClient(t, srv.URL, &staticToken{token: srv.TokenFor(srv.User)})
			ctx := context.Background()

			owned := seedVenue(srv)
			otherOwner := srv.AddUser(model.Account{Username: "owner2", Role: model.RoleOwner}, "pw1234")
			foreign := srv.AddVenue(model.CreateVenueRequest{Name: "Other", Capacity: 50, PricePerSeat: 1000, Owner: otherOwner.ID})

			_, err := c.Bookings.Create(ctx, model.CreateBookingRequest{Venue: owned.ID, Date: model.Today().AddDays(1), GuestCount: 5})
			require.NoError(t, err)
			_, err = c.Bookings.Create(ctx, model.CreateBookingRequest{Venue: foreign.ID, Date: model.Today().AddDays(1), GuestCount: 5})
			require.NoError(t, err)

			bookings, err := c.Bookings.ListByOwner(ctx, srv.Owner.ID)
			require.NoError(t, err)
			require.Len(t, bookings, 1)
			assert.Equal(t, owned.ID, bookings[0].Venue.ID)

			_, err = c.Bookings.Create(ctx, model.CreateBookingRequest{Venue: owned.ID, Date: model.Today().AddDays(2), GuestCount: 5})
			require.NoError(t, err)

			bookings, err = c.Bookings.ListByOwner(ctx, srv.Owner.ID)
			require.NoError(t, err)
			assert.Len(t, bookings, 2, "booking create invalidates the owner's list")

			if tt.disableServer {
				assert.Equal(t, 1, srv.Count(http.MethodGet, "/bookings/:id/:ownerId"), "missing endpoint is probed once")
				assert.Equal(t, 2, srv.Count(http.MethodGet, "/venues/:id/:ownerId"))
			} else {
				assert.Equal(t, 2, srv.Count(http.MethodGet, "/bookings/:id/:ownerId"))
				assert.Zero(t, srv.Count(http.MethodGet, "/venues/:id/:ownerId"))
			}
		})
	}
}

func TestHttpClient_NetworkError(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	c := newTestClient(t, url, nil)
	_, err := c.Venues.Get(context.Background(), "v1")
	require.Error(t, err)

	apiErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeNetwork, apiErr.Code)
	assert.Equal(t, "Failed to load venue", apperrors.UserMessage(err, "Failed to load venue"))
}

func TestHttpClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id": 12`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	_, err := c.Venues.Get(context.Background(), "v1")
	require.Error(t, err)

	apiErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeDecode, apiErr.Code)
	assert.True(t, strings.Contains(apiErr.Error(), "venue"))
}
