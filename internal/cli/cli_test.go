package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"venuebook/internal/testutil/fakeapi"
	"venuebook/internal/views"
	"venuebook/pkg/app"
	"venuebook/pkg/config"
	"venuebook/pkg/model"
	"venuebook/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sharedStorage outlives each command, as the state file does.
type sharedStorage struct {
	storage.Storage
}

func (sharedStorage) Close(context.Context) error { return nil }

func newOpener(srv *fakeapi.Server) Opener {
	st := sharedStorage{storage.NewMemory()}
	return func(ctx context.Context, n views.Notifier) (*app.Application, error) {
		cfg := config.Defaults()
		cfg.APIBaseURL = srv.URL
		cfg.RequestTimeout = 5 * time.Second
		return app.NewApplication(ctx, cfg, app.WithStorage(st), app.WithNotifier(n))
	}
}

func execute(t *testing.T, open Opener, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd(open)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestCLI_UserFlow(t *testing.T) {
	srv := fakeapi.New(t)
	venue := srv.AddVenue(model.CreateVenueRequest{
		Name:         "Grand Hall",
		District:     "Chilonzor",
		Address:      "Bunyodkor 1",
		Capacity:     100,
		PricePerSeat: 50000,
		Phone:        "+998901112233",
		Status:       model.VenueStatusApproved,
		Owner:        srv.Owner.ID,
	})
	open := newOpener(srv)

	out, _, err := execute(t, open, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)

	out, _, err = execute(t, open, "route", "/venue-owner/bookings")
	require.NoError(t, err)
	assert.Contains(t, out, "redirect /venue-owner/bookings -> /login")
	assert.Contains(t, out, "return to /venue-owner/bookings after login")

	out, stderr, err := execute(t, open, "login", "-u", fakeapi.UserUsername, "-p", fakeapi.UserPassword)
	require.NoError(t, err)
	assert.Equal(t, "Logged in as alice (user)\nnext: /\n", out)
	assert.Contains(t, stderr, "[success] Logged in successfully")

	out, _, err = execute(t, open, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice (user)")
	assert.Contains(t, out, "name: Alice Karimova")

	out, _, err = execute(t, open, "route", "/login")
	require.NoError(t, err)
	assert.Equal(t, "redirect /login -> /\n", out)

	out, _, err = execute(t, open, "venues", "--query", "grand")
	require.NoError(t, err)
	assert.Contains(t, out, "Grand Hall")
	assert.Contains(t, out, venue.ID)

	date := model.Today().AddDays(14)
	out, _, err = execute(t, open, "book", venue.ID, "--date", date.String(), "--guests", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "Booked Grand Hall on "+date.String()+" for 40 guests")
	assert.Contains(t, out, "total: 2000000")

	out, _, err = execute(t, open, "venue", venue.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "booked dates: "+date.String())

	_, stderr, err = execute(t, open, "book", venue.ID, "--date", date.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "This date is already booked")
	assert.Empty(t, stderr)

	_, _, err = execute(t, open, "bookings")
	assert.ErrorContains(t, err, "only listed for admins and owners")

	out, _, err = execute(t, open, "logout")
	require.NoError(t, err)
	assert.Equal(t, "Logged out\nnext: /login\n", out)

	_, _, err = execute(t, open, "book", venue.ID, "--date", date.AddDays(1).String())
	assert.EqualError(t, err, "log in to book a venue")
}

func TestCLI_OwnerBookings(t *testing.T) {
	srv := fakeapi.New(t)
	venue := srv.AddVenue(model.CreateVenueRequest{Name: "Navruz", Capacity: 30, PricePerSeat: 1000, Owner: srv.Owner.ID})
	open := newOpener(srv)

	_, _, err := execute(t, open, "login", "-u", fakeapi.UserUsername, "-p", fakeapi.UserPassword)
	require.NoError(t, err)
	out, _, err := execute(t, open, "book", venue.ID, "--date", model.Today().AddDays(3).String())
	require.NoError(t, err)
	assert.Contains(t, out, "for 30 guests", "guest count defaults to the venue suggestion")
	_, _, err = execute(t, open, "logout")
	require.NoError(t, err)

	out, _, err = execute(t, open, "login", "-u", fakeapi.OwnerUsername, "-p", fakeapi.OwnerPassword, "--from", "/venue-owner/bookings")
	require.NoError(t, err)
	assert.Contains(t, out, "next: /venue-owner/bookings")

	out, _, err = execute(t, open, "bookings")
	require.NoError(t, err)
	assert.Contains(t, out, "Navruz")
	assert.Contains(t, out, "pending")
}

func TestCLI_LoginFailure(t *testing.T) {
	srv := fakeapi.New(t)
	open := newOpener(srv)

	_, stderr, err := execute(t, open, "login", "-u", "alice", "-p", "not-the-password")
	require.Error(t, err)
	assert.Contains(t, stderr, "[error] Login failed. Check your credentials.: Invalid username or password")

	_, stderr, err = execute(t, open, "login", "-u", "alice", "-p", "123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Password must be at least 6 characters")
	assert.Empty(t, stderr)
}

func TestCLI_UnknownVenue(t *testing.T) {
	srv := fakeapi.New(t)
	_, _, err := execute(t, newOpener(srv), "venue", "64b7f0c2a1e4c3d2b1a09f8e")
	assert.ErrorIs(t, err, views.ErrVenueNotFound)
}

func TestCLI_RegisterThenLogin(t *testing.T) {
	srv := fakeapi.New(t)
	open := newOpener(srv)

	out, stderr, err := execute(t, open, "register",
		"--first-name", "Bek", "--last-name", "Aliyev",
		"-u", "bek", "-p", "secret1", "--phone", "+998901234567")
	require.NoError(t, err)
	assert.Equal(t, "Registered bek\nnext: /login\n", out)
	assert.Contains(t, stderr, "[success] Registered successfully")

	out, _, err = execute(t, open, "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Not logged in\n", out)

	out, _, err = execute(t, open, "login", "-u", "bek", "-p", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Logged in as bek (user)\nnext: /\n", out)
}
