// Package api is the HTTP/JSON client for the weather backend: auth, city
// search, weather lookups, and per-account favorites CRUD. The backend is
// collaborator-owned; this package only consumes it.
package api

import (
	"context"

	"github.com/avolkovs/weatherdeck/internal/client/models"
)

// Client is the remote surface the services layer depends on.
type Client interface {
	Register(ctx context.Context, username, email, password string) (models.Session, error)
	Login(ctx context.Context, username, password string) (models.Session, error)
	Verify(ctx context.Context) (*models.User, error)
	MergeCities(ctx context.Context, cities []models.CityCandidate) error

	SearchCity(ctx context.Context, name string) ([]models.SearchResult, error)
	CurrentWeather(ctx context.Context, lat, lon float64) (*models.CurrentConditions, error)
	Forecast(ctx context.Context, lat, lon float64) ([]models.ForecastEntry, error)

	ListCities(ctx context.Context) ([]models.City, error)
	AddCity(ctx context.Context, candidate models.CityCandidate) ([]models.City, error)
	RemoveCity(ctx context.Context, id string) ([]models.City, error)
}

// TokenSource supplies the bearer credential attached to outgoing requests.
// An empty string means no credential is held.
type TokenSource interface {
	Token(ctx context.Context) string
}
