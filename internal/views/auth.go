package views

import (
	"context"

	"venuebook/internal/forms"
	"venuebook/pkg/inflight"
	"venuebook/pkg/model"
)

// AuthView backs the login and register pages and the logout action.
type AuthView struct {
	*Views
	login    inflight.Mutation
	register inflight.Mutation
}

func (v *Views) Auth() *AuthView {
	return &AuthView{Views: v}
}

func (a *AuthView) LoggingIn() bool   { return a.login.InFlight() }
func (a *AuthView) Registering() bool { return a.register.InFlight() }

// Login signs in and returns where to go next: from when the account may
// open it, otherwise the account's home.
func (a *AuthView) Login(ctx context.Context, in forms.LoginInput, from string) (string, error) {
	if err := a.forms.Validate(&in); err != nil {
		return "", err
	}

	payload, err := report(ctx, a.Views, &a.login, "Logged in successfully", "Login failed. Check your credentials.", "Something went wrong",
		func(ctx context.Context) (*model.AuthPayload, error) {
			payload, err := a.client.Accounts.Login(ctx, in.Request())
			if err != nil {
				return nil, err
			}
			if err := a.session.SetCredentials(ctx, payload.User, payload.AccessToken); err != nil {
				return nil, err
			}
			return payload, nil
		})
	if err != nil {
		return "", err
	}
	return a.router.AfterLogin(&payload.User, from), nil
}

// Register creates a regular account and returns it with the login path.
// The session is left untouched; the new account logs in like any other.
func (a *AuthView) Register(ctx context.Context, in forms.RegisterInput) (*model.Account, string, error) {
	if err := a.forms.Validate(&in); err != nil {
		return nil, "", err
	}

	payload, err := report(ctx, a.Views, &a.register, "Registered successfully", "Registration failed. Check your details.", "Something went wrong",
		func(ctx context.Context) (*model.AuthPayload, error) {
			return a.client.Accounts.Register(ctx, in.Request())
		})
	if err != nil {
		return nil, "", err
	}
	return &payload.User, a.router.Options().LoginPath, nil
}

// Logout ends the session, drops every cached query and returns the login
// path.
func (a *AuthView) Logout(ctx context.Context) (string, error) {
	err := a.session.Logout(ctx)
	a.client.Cache.Reset()
	if err != nil {
		a.failure("Logout failed", "Could not clear the saved session", err)
	}
	return a.router.Options().LoginPath, err
}

// Profile fetches the logged-in account from the server.
func (a *AuthView) Profile(ctx context.Context) (*model.Account, error) {
	if a.session.CurrentUser() == nil {
		return nil, ErrNotLoggedIn
	}
	return a.client.Accounts.Profile(ctx)
}
