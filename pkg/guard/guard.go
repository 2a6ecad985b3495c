// Package guard decides whether a navigation may render given the current
// session, and resolves client-side paths against the route table.
//
// Gating here is advisory. The remote API enforces its own access control.
package guard

import (
	"venuebook/pkg/config"
	"venuebook/pkg/model"
)

type Kind int

const (
	// Public routes render for everyone.
	Public Kind = iota
	// AuthOnly routes (login, register) render only when logged out.
	AuthOnly
	// Protected routes need a session, and a role when the route names one.
	Protected
)

func (k Kind) String() string {
	switch k {
	case Public:
		return "public"
	case AuthOnly:
		return "auth_only"
	case Protected:
		return "protected"
	default:
		return "unknown"
	}
}

type Action int

const (
	Render Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "render"
}

// Decision is the outcome of guarding one navigation. From is the location
// the visitor tried to reach when the guard sent them to log in.
type Decision struct {
	Action Action
	To     string
	From   string
}

func (d Decision) Redirected() bool {
	return d.Action == Redirect
}

type Options struct {
	DefaultPath  string
	LoginPath    string
	RegisterPath string
	AdminPath    string
	OwnerPath    string
}

func DefaultOptions() Options {
	return Options{
		DefaultPath:  config.DefaultRedirectPath,
		LoginPath:    config.DefaultLoginPath,
		RegisterPath: DefaultRegisterPath,
		AdminPath:    config.DefaultAdminPath,
		OwnerPath:    config.DefaultOwnerPath,
	}
}

func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg.DefaultRedirectPath != "" {
		opts.DefaultPath = cfg.DefaultRedirectPath
	}
	if cfg.LoginPath != "" {
		opts.LoginPath = cfg.LoginPath
	}
	if cfg.AdminPath != "" {
		opts.AdminPath = cfg.AdminPath
	}
	if cfg.OwnerPath != "" {
		opts.OwnerPath = cfg.OwnerPath
	}
	return opts
}

// Home is where a logged-in account lands when it has nowhere better to go.
func (o Options) Home(role model.Role) string {
	switch role {
	case model.RoleAdmin:
		return o.AdminPath
	case model.RoleOwner:
		return o.OwnerPath
	default:
		return o.DefaultPath
	}
}

// Decide guards a route of the given kind that requires no particular role.
func Decide(user *model.Account, kind Kind, opts Options) Decision {
	return DecideRoute(user, Route{Kind: kind}, "", opts)
}

// DecideRoute guards a navigation to location, which matched route.
func DecideRoute(user *model.Account, route Route, location string, opts Options) Decision {
	switch route.Kind {
	case AuthOnly:
		if user != nil {
			return Decision{Action: Redirect, To: opts.Home(user.Role)}
		}
	case Protected:
		if user == nil {
			return Decision{Action: Redirect, To: opts.LoginPath, From: location}
		}
		if route.Role != "" && user.Role != route.Role {
			return Decision{Action: Redirect, To: opts.Home(user.Role)}
		}
	}

	if route.RedirectTo != "" {
		return Decision{Action: Redirect, To: route.RedirectTo}
	}
	return Decision{Action: Render}
}
