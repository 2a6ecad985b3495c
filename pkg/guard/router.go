package guard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"venuebook/pkg/config"
	"venuebook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

const (
	DefaultRegisterPath = config.DefaultRegisterPath

	// maxRedirects bounds how many guard redirects Resolve follows.
	maxRedirects = 8
)

// Route names.
const (
	RouteHome          = "home"
	RouteVenues        = "venues"
	RouteVenue         = "venue"
	RouteLogin         = "login"
	RouteRegister      = "register"
	RouteAdmin         = "admin"
	RouteAdminOwners   = "admin.owners"
	RouteAdminVenues   = "admin.venues"
	RouteAdminBookings = "admin.bookings"
	RouteOwner         = "owner"
	RouteOwnerVenues   = "owner.venues"
	RouteOwnerBookings = "owner.bookings"
)

var (
	ErrNoRoute       = errors.New("no route matches path")
	ErrRedirectLoop  = errors.New("too many redirects")
	ErrInvalidTarget = errors.New("invalid location")
	ErrRouteConflict = errors.New("route conflicts with another route")
)

// Route is one entry of the client-side route table. RedirectTo makes the
// route an index that forwards to a child once the guard lets it through.
type Route struct {
	Name       string
	Pattern    string
	Kind       Kind
	Role       model.Role
	RedirectTo string
}

// Match is a location resolved to a route, with its path parameters.
type Match struct {
	Route    Route
	Path     string
	Location string
	Params   httprouter.Params
}

func (m Match) Param(name string) string {
	return m.Params.ByName(name)
}

type Router struct {
	opts   Options
	router *httprouter.Router
	routes []Route
}

type matchKey struct{}

// NewRouter builds the route table for opts. It fails when the configured
// prefixes overlap the fixed routes or each other, or when the default path
// does not resolve to a route.
func NewRouter(opts Options) (*Router, error) {
	r := &Router{
		opts:   opts,
		router: httprouter.New(),
	}
	if err := r.RegisterRoutes(); err != nil {
		return nil, err
	}
	if _, err := r.Match(opts.DefaultPath); err != nil {
		return nil, fmt.Errorf("default path: %w", err)
	}
	return r, nil
}

func (r *Router) Options() Options {
	return r.opts
}

// RegisterRoutes builds the route table. Privileged subtrees are guarded
// uniformly: Protected plus the role that owns them.
func (r *Router) RegisterRoutes() error {
	o := r.opts

	routes := []Route{
		{Name: RouteHome, Pattern: config.HomePath, Kind: Public},
		{Name: RouteVenues, Pattern: config.VenuesPath, Kind: Public},
		{Name: RouteVenue, Pattern: config.VenuesPath + "/:id", Kind: Public},

		{Name: RouteLogin, Pattern: o.LoginPath, Kind: AuthOnly},
		{Name: RouteRegister, Pattern: o.RegisterPath, Kind: AuthOnly},

		{Name: RouteAdmin, Pattern: o.AdminPath, Kind: Protected, Role: model.RoleAdmin, RedirectTo: o.AdminPath + "/owners"},
		{Name: RouteAdminOwners, Pattern: o.AdminPath + "/owners", Kind: Protected, Role: model.RoleAdmin},
		{Name: RouteAdminVenues, Pattern: o.AdminPath + "/venues", Kind: Protected, Role: model.RoleAdmin},
		{Name: RouteAdminBookings, Pattern: o.AdminPath + "/bookings", Kind: Protected, Role: model.RoleAdmin},

		{Name: RouteOwner, Pattern: o.OwnerPath, Kind: Protected, Role: model.RoleOwner, RedirectTo: o.OwnerPath + "/venues"},
		{Name: RouteOwnerVenues, Pattern: o.OwnerPath + "/venues", Kind: Protected, Role: model.RoleOwner},
		{Name: RouteOwnerBookings, Pattern: o.OwnerPath + "/bookings", Kind: Protected, Role: model.RoleOwner},
	}
	for _, route := range routes {
		if err := r.add(route); err != nil {
			return err
		}
	}
	return nil
}

// add registers route with httprouter, which panics on a duplicate or
// conflicting pattern. The panic is returned as ErrRouteConflict.
func (r *Router) add(route Route) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %s %q: %v", ErrRouteConflict, route.Name, route.Pattern, rec)
		}
	}()

	r.router.GET(route.Pattern, func(_ http.ResponseWriter, req *http.Request, ps httprouter.Params) {
		if m, ok := req.Context().Value(matchKey{}).(*Match); ok {
			m.Route = route
			m.Params = ps
		}
	})
	r.routes = append(r.routes, route)
	return nil
}

func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Match resolves location (path plus optional query) to a route. A path
// that only differs by a trailing slash matches the route without it.
func (r *Router) Match(location string) (Match, error) {
	u, err := url.Parse(location)
	if err != nil || !strings.HasPrefix(u.Path, "/") {
		return Match{}, fmt.Errorf("%w: %q", ErrInvalidTarget, location)
	}

	path := u.Path
	handle, ps, tsr := r.router.Lookup(http.MethodGet, path)
	if handle == nil && tsr && len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
		handle, ps, _ = r.router.Lookup(http.MethodGet, path)
	}
	if handle == nil {
		return Match{}, fmt.Errorf("%w: %s", ErrNoRoute, u.Path)
	}

	m := &Match{Path: path, Location: location}
	req, err := http.NewRequestWithContext(context.WithValue(context.Background(), matchKey{}, m), http.MethodGet, path, nil)
	if err != nil {
		return Match{}, fmt.Errorf("%w: %q", ErrInvalidTarget, location)
	}
	handle(nil, req, ps)
	return *m, nil
}

// Resolve guards a navigation to location for user and follows redirects
// until a route renders. The returned decision is Render when location
// itself renders; otherwise it is a redirect to the final path, with From
// set to the location the login redirect interrupted.
func (r *Router) Resolve(user *model.Account, location string) (Decision, Match, error) {
	result := Decision{Action: Render}
	current := location
	seen := make(map[string]bool)

	for hop := 0; hop <= maxRedirects; hop++ {
		m, err := r.Match(current)
		if err != nil {
			return Decision{}, Match{}, err
		}
		if seen[m.Path] {
			break
		}
		seen[m.Path] = true

		d := DecideRoute(user, m.Route, current, r.opts)
		if d.Action == Render {
			if current != location {
				result.Action = Redirect
				result.To = current
			}
			return result, m, nil
		}
		if d.From != "" && result.From == "" {
			result.From = d.From
		}
		current = d.To
	}
	return Decision{}, Match{}, fmt.Errorf("%w: %s", ErrRedirectLoop, location)
}

// AfterLogin picks where an account goes once it has logged in: the
// interrupted location when the account may render it, otherwise its home.
func (r *Router) AfterLogin(user *model.Account, from string) string {
	if from != "" {
		if d, m, err := r.Resolve(user, from); err == nil && d.Action == Render && m.Route.Kind != AuthOnly {
			return from
		}
	}
	return r.opts.Home(user.Role)
}
