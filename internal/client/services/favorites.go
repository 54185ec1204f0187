// Package services contains the client's application services: the
// favorites coordinator that arbitrates between the account backend and the
// local store, and the auth service that owns login, registration, and the
// one-time favorites merge.
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

// FavoritesCoordinator decides, per call, whether a favorites operation
// goes to the account backend or the local store. The mode is read from the
// session store on every call; nothing is cached.
//
// Failure policy: remote failures on reads degrade to local data; remote
// failures on writes are returned to the caller so lost writes are never
// masked; merge failures are logged and never block authentication.
type FavoritesCoordinator struct {
	client  api.Client
	local   *localstore.Favorites
	session *localstore.SessionStore
	log     logging.Logger
}

func NewFavoritesCoordinator(client api.Client, local *localstore.Favorites, session *localstore.SessionStore, log logging.Logger) *FavoritesCoordinator {
	return &FavoritesCoordinator{client: client, local: local, session: session, log: log}
}

// Load returns the favorites the user should see. Authenticated: the
// account's list, normalized to the common City shape; any remote failure
// degrades to whatever the local store holds. Anonymous: the local list.
func (c *FavoritesCoordinator) Load(ctx context.Context) []models.City {
	if !c.session.IsAuthenticated(ctx) {
		return c.local.List(ctx)
	}

	cities, err := c.client.ListCities(ctx)
	if err != nil {
		c.log.Warn(ctx, "remote favorites unavailable, falling back to local", "error", err)
		return c.local.List(ctx)
	}
	if cities == nil {
		cities = []models.City{}
	}
	return cities
}

// Add stores a new favorite and returns the updated list. A coordinate
// duplicate comes back as localstore.ErrDuplicate (anonymous) or an
// *api.APIError carrying the backend's message (authenticated); both are
// informational, not fatal. Other write failures are returned as-is and
// mutate nothing locally.
func (c *FavoritesCoordinator) Add(ctx context.Context, candidate models.CityCandidate) ([]models.City, error) {
	if !c.session.IsAuthenticated(ctx) {
		return c.local.Add(ctx, candidate)
	}

	cities, err := c.client.AddCity(ctx, candidate)
	if err != nil {
		return nil, err
	}
	return cities, nil
}

// Remove deletes a favorite by identifier and returns the updated list.
func (c *FavoritesCoordinator) Remove(ctx context.Context, id string) ([]models.City, error) {
	if !c.session.IsAuthenticated(ctx) {
		return c.local.Remove(ctx, id)
	}

	cities, err := c.client.RemoveCity(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return cities, nil
}

// Toggle removes the candidate when it is already in current, and adds it
// otherwise. Presence is decided by tagged identifier equality when the
// candidate carries an identifier, by coordinates when it does not (search
// results have no identifier yet).
func (c *FavoritesCoordinator) Toggle(ctx context.Context, current []models.City, candidate models.City) ([]models.City, error) {
	if existing, ok := findFavorite(current, candidate); ok {
		return c.Remove(ctx, existing.ID)
	}
	return c.Add(ctx, models.CityCandidate{
		Name:    candidate.Name,
		Country: candidate.Country,
		State:   candidate.State,
		Lat:     candidate.Lat,
		Lon:     candidate.Lon,
	})
}

func findFavorite(current []models.City, candidate models.City) (models.City, bool) {
	if candidate.ID != "" {
		want := candidate.FavoriteID()
		for _, c := range current {
			if c.FavoriteID().Equal(want) {
				return c, true
			}
		}
		return models.City{}, false
	}
	for _, c := range current {
		if c.SameCoordinates(candidate) {
			return c, true
		}
	}
	return models.City{}, false
}

// MergeOnAuth pushes the local favorites into the freshly authenticated
// account, then clears the local list. Called once, right after a
// successful login or registration, before any other favorites operation.
// Failures are logged only: the local list stays intact so a later login
// retries the merge, and authentication is never blocked.
func (c *FavoritesCoordinator) MergeOnAuth(ctx context.Context) {
	cities := c.local.ForMerging(ctx)
	if len(cities) == 0 {
		return
	}

	if err := c.client.MergeCities(ctx, cities); err != nil {
		c.log.Warn(ctx, "favorites merge failed, keeping local list for retry",
			"cities", len(cities), "error", err)
		return
	}

	if err := c.local.Clear(ctx); err != nil {
		c.log.Error(ctx, "merged favorites could not be cleared locally", "error", err)
	}
}

// IsDuplicate reports whether err is a duplicate-favorite rejection from
// either tier.
func IsDuplicate(err error) bool {
	if errors.Is(err, localstore.ErrDuplicate) {
		return true
	}
	var apiErr *api.APIError
	return errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Message != ""
}
