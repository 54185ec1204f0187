package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkovs/weatherdeck/internal/client/api"
	"github.com/avolkovs/weatherdeck/internal/client/localstore"
	"github.com/avolkovs/weatherdeck/internal/client/models"
	"github.com/avolkovs/weatherdeck/internal/logging"
)

// AuthService owns the login, registration, verification, and logout flows,
// including persisting the session and triggering the one-time favorites
// merge.
type AuthService struct {
	client      api.Client
	session     *localstore.SessionStore
	coordinator *FavoritesCoordinator
	log         logging.Logger
}

func NewAuthService(client api.Client, session *localstore.SessionStore, coordinator *FavoritesCoordinator, log logging.Logger) *AuthService {
	return &AuthService{client: client, session: session, coordinator: coordinator, log: log}
}

// Login authenticates against the backend, persists the session, and merges
// local favorites into the account. Merge problems never fail the login.
func (a *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	sess, err := a.client.Login(ctx, username, password)
	if err != nil {
		a.discardStaleSession(ctx, err)
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return a.establishSession(ctx, sess)
}

// Register creates an account, persists the returned session, and merges
// local favorites, mirroring Login.
func (a *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	sess, err := a.client.Register(ctx, username, email, password)
	if err != nil {
		a.discardStaleSession(ctx, err)
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return a.establishSession(ctx, sess)
}

// discardStaleSession erases a previously stored session when re-auth is
// rejected with 401. The transport-level teardown hook deliberately skips
// auth-flow requests, so without this a stale token would outlive a failed
// re-login.
func (a *AuthService) discardStaleSession(ctx context.Context, err error) {
	if !errors.Is(err, api.ErrUnauthorized) {
		return
	}
	if a.session.Token(ctx) == "" {
		return
	}
	a.log.Info(ctx, "discarding stored session after rejected credentials")
	if logoutErr := a.session.Logout(ctx); logoutErr != nil {
		a.log.Error(ctx, "failed to clear stored session", "error", logoutErr)
	}
}

func (a *AuthService) establishSession(ctx context.Context, sess models.Session) (*models.User, error) {
	if !sess.Authenticated() {
		return nil, fmt.Errorf("backend returned an incomplete session")
	}

	if err := a.session.SetToken(ctx, sess.Token); err != nil {
		return nil, err
	}
	if err := a.session.SetUser(ctx, sess.User); err != nil {
		return nil, err
	}

	a.coordinator.MergeOnAuth(ctx)

	return sess.User, nil
}

// Verify checks the stored session against the backend and demotes to
// anonymous when it no longer holds. Intended for startup. An unreachable
// backend keeps the session as-is: that is the read-degradation case, not
// an auth failure.
func (a *AuthService) Verify(ctx context.Context) *models.User {
	if !a.session.IsAuthenticated(ctx) {
		return nil
	}

	if a.session.TokenExpired(ctx) {
		a.log.Info(ctx, "stored token expired, demoting to anonymous")
		if err := a.session.Logout(ctx); err != nil {
			a.log.Error(ctx, "failed to clear expired session", "error", err)
		}
		return nil
	}

	user, err := a.client.Verify(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			a.log.Info(ctx, "stored session rejected by backend, demoting to anonymous")
			if logoutErr := a.session.Logout(ctx); logoutErr != nil {
				a.log.Error(ctx, "failed to clear rejected session", "error", logoutErr)
			}
			return nil
		}
		a.log.Warn(ctx, "session verification unavailable, keeping stored session", "error", err)
		return a.session.User(ctx)
	}

	return user
}

// Logout erases the stored session.
func (a *AuthService) Logout(ctx context.Context) error {
	return a.session.Logout(ctx)
}
