package guard

import (
	"testing"

	"venuebook/pkg/config"
	"venuebook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func account(role model.Role) *model.Account {
	return &model.Account{ID: "a1", Username: "someone", Role: role}
}

func TestDecide(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name string
		user *model.Account
		kind Kind
		want Decision
	}{
		{name: "auth only, logged out", user: nil, kind: AuthOnly, want: Decision{Action: Render}},
		{name: "auth only, user", user: account(model.RoleUser), kind: AuthOnly, want: Decision{Action: Redirect, To: "/"}},
		{name: "auth only, admin", user: account(model.RoleAdmin), kind: AuthOnly, want: Decision{Action: Redirect, To: "/admin"}},
		{name: "auth only, owner", user: account(model.RoleOwner), kind: AuthOnly, want: Decision{Action: Redirect, To: "/venue-owner"}},
		{name: "protected, logged out", user: nil, kind: Protected, want: Decision{Action: Redirect, To: "/login"}},
		{name: "protected, user", user: account(model.RoleUser), kind: Protected, want: Decision{Action: Render}},
		{name: "public, logged out", user: nil, kind: Public, want: Decision{Action: Render}},
		{name: "public, admin", user: account(model.RoleAdmin), kind: Public, want: Decision{Action: Render}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.user, tt.kind, opts))
		})
	}
}

func TestDecide_AdminOnAuthOnlyNeverRenders(t *testing.T) {
	opts := Options{DefaultPath: "/home", LoginPath: "/signin", RegisterPath: "/signup", AdminPath: "/backoffice", OwnerPath: "/mine"}

	d := Decide(account(model.RoleAdmin), AuthOnly, opts)
	assert.Equal(t, Redirect, d.Action)
	assert.Equal(t, "/backoffice", d.To)
}

func TestDecideRoute_RoleAndLocation(t *testing.T) {
	opts := DefaultOptions()
	adminOnly := Route{Kind: Protected, Role: model.RoleAdmin}

	d := DecideRoute(nil, adminOnly, "/admin/venues?page=2", opts)
	assert.Equal(t, Decision{Action: Redirect, To: "/login", From: "/admin/venues?page=2"}, d)

	d = DecideRoute(account(model.RoleOwner), adminOnly, "/admin/venues", opts)
	assert.Equal(t, Decision{Action: Redirect, To: "/venue-owner"}, d)

	d = DecideRoute(account(model.RoleAdmin), adminOnly, "/admin/venues", opts)
	assert.Equal(t, Decision{Action: Render}, d)

	index := Route{Kind: Protected, Role: model.RoleAdmin, RedirectTo: "/admin/owners"}
	d = DecideRoute(account(model.RoleAdmin), index, "/admin", opts)
	assert.Equal(t, Decision{Action: Redirect, To: "/admin/owners"}, d)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.AdminPath = "/backoffice"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "/backoffice", opts.AdminPath)
	assert.Equal(t, "/login", opts.LoginPath)
	assert.Equal(t, "/register", opts.RegisterPath)
	assert.Equal(t, "/backoffice", opts.Home(model.RoleAdmin))
	assert.Equal(t, "/", opts.Home(model.RoleUser))
}

func newRouter(t *testing.T, opts Options) *Router {
	t.Helper()
	r, err := NewRouter(opts)
	require.NoError(t, err)
	return r
}

func TestNewRouter_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Options)
		wantErr error
	}{
		{name: "admin at the root", mutate: func(o *Options) { o.AdminPath = "/" }, wantErr: ErrRouteConflict},
		{name: "owner on admin", mutate: func(o *Options) { o.OwnerPath = "/admin" }, wantErr: ErrRouteConflict},
		{name: "login on venues", mutate: func(o *Options) { o.LoginPath = "/venues" }, wantErr: ErrRouteConflict},
		{name: "admin under a venue", mutate: func(o *Options) { o.AdminPath = "/venues/admin" }, wantErr: ErrRouteConflict},
		{name: "default path without a route", mutate: func(o *Options) { o.DefaultPath = "/nowhere" }, wantErr: ErrNoRoute},
		{name: "venues as default path", mutate: func(o *Options) { o.DefaultPath = "/venues" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.mutate(&opts)

			var (
				r   *Router
				err error
			)
			require.NotPanics(t, func() { r, err = NewRouter(opts) })
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestRouter_DefaultPathIsUserHome(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultPath = "/venues"
	r := newRouter(t, opts)

	d, m, err := r.Resolve(account(model.RoleUser), "/login")
	require.NoError(t, err)
	assert.Equal(t, Decision{Action: Redirect, To: "/venues"}, d)
	assert.Equal(t, RouteVenues, m.Route.Name)

	m, err = r.Match("/")
	require.NoError(t, err)
	assert.Equal(t, RouteHome, m.Route.Name)
}

func TestRouter_Match(t *testing.T) {
	r := newRouter(t, DefaultOptions())

	tests := []struct {
		location string
		name     string
		param    string
		wantErr  error
	}{
		{location: "/", name: RouteHome},
		{location: "/venues", name: RouteVenues},
		{location: "/venues/64b7f0c2a1?tab=photos", name: RouteVenue, param: "64b7f0c2a1"},
		{location: "/login", name: RouteLogin},
		{location: "/register", name: RouteRegister},
		{location: "/admin", name: RouteAdmin},
		{location: "/admin/bookings/", name: RouteAdminBookings},
		{location: "/venue-owner/venues", name: RouteOwnerVenues},
		{location: "/nowhere", wantErr: ErrNoRoute},
		{location: "venues", wantErr: ErrInvalidTarget},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			m, err := r.Match(tt.location)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, m.Route.Name)
			assert.Equal(t, tt.param, m.Param("id"))
		})
	}
}

func TestRouter_Resolve(t *testing.T) {
	r := newRouter(t, DefaultOptions())

	tests := []struct {
		name      string
		user      *model.Account
		location  string
		want      Decision
		wantRoute string
	}{
		{name: "user on login goes home", user: account(model.RoleUser), location: "/login", want: Decision{Action: Redirect, To: "/"}, wantRoute: RouteHome},
		{name: "admin on login lands on owners", user: account(model.RoleAdmin), location: "/login", want: Decision{Action: Redirect, To: "/admin/owners"}, wantRoute: RouteAdminOwners},
		{name: "owner on register lands on venues", user: account(model.RoleOwner), location: "/register", want: Decision{Action: Redirect, To: "/venue-owner/venues"}, wantRoute: RouteOwnerVenues},
		{name: "visitor on login renders", user: nil, location: "/login", want: Decision{Action: Render}, wantRoute: RouteLogin},
		{name: "visitor on admin goes to login", user: nil, location: "/admin/venues", want: Decision{Action: Redirect, To: "/login", From: "/admin/venues"}, wantRoute: RouteLogin},
		{name: "visitor on owner area goes to login", user: nil, location: "/venue-owner/bookings", want: Decision{Action: Redirect, To: "/login", From: "/venue-owner/bookings"}, wantRoute: RouteLogin},
		{name: "user on admin goes home", user: account(model.RoleUser), location: "/admin/owners", want: Decision{Action: Redirect, To: "/"}, wantRoute: RouteHome},
		{name: "owner on admin goes to own area", user: account(model.RoleOwner), location: "/admin", want: Decision{Action: Redirect, To: "/venue-owner/venues"}, wantRoute: RouteOwnerVenues},
		{name: "admin index", user: account(model.RoleAdmin), location: "/admin", want: Decision{Action: Redirect, To: "/admin/owners"}, wantRoute: RouteAdminOwners},
		{name: "public venue renders", user: nil, location: "/venues/v1", want: Decision{Action: Render}, wantRoute: RouteVenue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, m, err := r.Resolve(tt.user, tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
			assert.Equal(t, tt.wantRoute, m.Route.Name)
		})
	}
}

func TestRouter_ResolveLoop(t *testing.T) {
	// an admin home that is itself admin-only for owners would bounce forever
	opts := DefaultOptions()
	opts.OwnerPath = "/admin/owners"
	r := &Router{opts: opts}
	r.router = newRouter(t, DefaultOptions()).router

	_, _, err := r.Resolve(account(model.RoleOwner), "/admin/venues")
	require.ErrorIs(t, err, ErrRedirectLoop)
}

func TestRouter_AfterLogin(t *testing.T) {
	r := newRouter(t, DefaultOptions())

	assert.Equal(t, "/admin/venues", r.AfterLogin(account(model.RoleAdmin), "/admin/venues"))
	assert.Equal(t, "/", r.AfterLogin(account(model.RoleUser), "/admin/venues"))
	assert.Equal(t, "/venue-owner", r.AfterLogin(account(model.RoleOwner), ""))
	assert.Equal(t, "/venues/v1", r.AfterLogin(account(model.RoleOwner), "/venues/v1"))
	assert.Equal(t, "/", r.AfterLogin(account(model.RoleUser), "/login"))
}
