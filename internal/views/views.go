// Package views holds the page and dialog controllers. They read through the
// API clients, submit mutations, and report outcomes through a Notifier;
// rendering is left to the caller.
package views

import (
	"context"
	"errors"

	"venuebook/internal/forms"
	"venuebook/pkg/client"
	apperrors "venuebook/pkg/errors"
	"venuebook/pkg/guard"
	"venuebook/pkg/inflight"
	"venuebook/pkg/logger"
	"venuebook/pkg/session"
)

var (
	ErrNotLoggedIn   = errors.New("not logged in")
	ErrVenueNotFound = errors.New("venue not found")
)

type Deps struct {
	Client   *client.Client
	Session  *session.Store
	Router   *guard.Router
	Forms    *forms.Validator
	Notifier Notifier
	Log      *logger.Logger
}

type Views struct {
	client   *client.Client
	session  *session.Store
	router   *guard.Router
	forms    *forms.Validator
	notifier Notifier
	log      *logger.Logger
}

func New(deps Deps) *Views {
	log := deps.Log
	if log == nil {
		log = logger.Discard()
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = LogNotifier(log)
	}
	validator := deps.Forms
	if validator == nil {
		validator = forms.NewValidator(log)
	}
	router := deps.Router
	if router == nil {
		// the default options always form a valid table
		router, _ = guard.NewRouter(guard.DefaultOptions())
	}

	return &Views{
		client:   deps.Client,
		session:  deps.Session,
		router:   router,
		forms:    validator,
		notifier: notifier,
		log:      log.Component("views"),
	}
}

// Page is the outcome of a navigation: where the visitor ended up and
// whether the guard redirected them there.
type Page struct {
	Decision guard.Decision
	Match    guard.Match
}

// Navigate guards a navigation to location for the current session.
func (v *Views) Navigate(location string) (Page, error) {
	d, m, err := v.router.Resolve(v.session.CurrentUser(), location)
	if err != nil {
		return Page{}, err
	}
	return Page{Decision: d, Match: m}, nil
}

func (v *Views) success(title string) {
	v.notifier.Notify(Notification{Level: LevelSuccess, Title: title})
}

// failure reports err. Validation errors are shown inline by the caller, and
// a second submit while one is running is silently ignored.
func (v *Views) failure(title, fallback string, err error) {
	var invalid forms.ValidationErrors
	if errors.As(err, &invalid) || errors.Is(err, inflight.ErrInFlight) || errors.Is(err, inflight.ErrStale) {
		return
	}
	v.notifier.Notify(Notification{
		Level:       LevelError,
		Title:       title,
		Description: apperrors.UserMessage(err, fallback),
	})
}

// loadError reports a failed page load unless the load was superseded.
func (v *Views) loadError(title string, err error) error {
	if errors.Is(err, inflight.ErrStale) {
		return err
	}
	v.log.Warn("page load failed", "page", title, "error", err)
	v.failure(title, "Something went wrong", err)
	return err
}

// report runs a submitted mutation and notifies the outcome.
func report[T any](ctx context.Context, v *Views, m *inflight.Mutation, ok, failed, fallback string, fn func(context.Context) (T, error)) (T, error) {
	out, err := inflight.Do(ctx, m, fn)
	if err != nil {
		v.failure(failed, fallback, err)
		return out, err
	}
	v.success(ok)
	return out, nil
}

func (v *Views) currentUserID() (string, error) {
	user := v.session.CurrentUser()
	if user == nil {
		return "", ErrNotLoggedIn
	}
	return user.ID, nil
}
