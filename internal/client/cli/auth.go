package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkovs/weatherdeck/internal/client/api"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username, email, and password and creates an
// account. A successful registration also logs the user in and merges any
// local favorites into the new account.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Choose a username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.auth.Register(ctx, username, email, password)
	if err != nil {
		a.printAuthError(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s! Your favorites now live in your account.\n", user.Username)
	return nil
}

// Login prompts for credentials and authenticates. Local favorites saved
// while anonymous are merged into the account on success.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, username, password)
	if err != nil {
		a.printAuthError(ctx, err)
		return err
	}

	fmt.Fprintf(a.out, "Welcome back, %s!\n", user.Username)
	return nil
}

// Logout erases the stored session. Favorites added from now on stay on this
// device until the next login.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn(ctx) {
		fmt.Fprintln(a.out, "You are not logged in.")
		return nil
	}
	if err := a.auth.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Logout failed:", err)
		return err
	}
	fmt.Fprintln(a.out, "Logged out. New favorites will be kept on this device.")
	return nil
}

// WhoAmI prints the current session state.
func (a *App) WhoAmI(ctx context.Context) {
	user := a.session.User(ctx)
	if user == nil {
		fmt.Fprintln(a.out, "Anonymous. Favorites are stored on this device only.")
		return
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Username, user.Email)
}

func (a *App) printAuthError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintln(a.out, "Invalid credentials.")
	case errors.Is(err, api.ErrUnavailable):
		fmt.Fprintln(a.out, "The server is unreachable. Try again later; your local favorites are safe.")
	default:
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			fmt.Fprintln(a.out, apiErr.Message)
			return
		}
		a.log.Error(ctx, "auth command failed", "error", err)
		fmt.Fprintln(a.out, "Something went wrong:", err)
	}
}
