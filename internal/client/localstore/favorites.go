// Package localstore keeps the anonymous user's data in the key-value
// store: the favorites list and the session (token + profile). It is the
// fallback tier when the account backend is unreachable.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolkovs/weatherdeck/internal/client/models"
	"github.com/avolkovs/weatherdeck/internal/client/repositories/kv"
	"github.com/avolkovs/weatherdeck/internal/dbx"
	"github.com/avolkovs/weatherdeck/internal/logging"
	"github.com/google/uuid"
)

// Namespaced keys inside the kv store.
const (
	KeyPrefix = "weatherdeck-"

	KeyCities = KeyPrefix + "cities"
	KeyToken  = KeyPrefix + "token"
	KeyUser   = KeyPrefix + "user"
)

// ErrDuplicate is returned by Add when the candidate's coordinates are
// already in the list. Its message is shown to the user as-is.
var ErrDuplicate = errors.New("this city is already in your favorites")

// Favorites is CRUD over the JSON-encoded favorites list stored under
// KeyCities. Reads fail soft: a missing, unreadable, or malformed list is
// an empty list, never an error.
type Favorites struct {
	db  *sql.DB
	log logging.Logger

	// test seams
	now   func() time.Time
	newID func() string
}

func NewFavorites(db *sql.DB, log logging.Logger) *Favorites {
	return &Favorites{
		db:  db,
		log: log,
		now: time.Now,
		newID: func() string {
			return models.LocalIDPrefix + uuid.NewString()
		},
	}
}

// List returns the stored favorites in insertion order. Storage problems
// and malformed data degrade to an empty list.
func (f *Favorites) List(ctx context.Context) []models.City {
	return f.read(ctx, kv.NewSQLiteRepository(f.db))
}

func (f *Favorites) read(ctx context.Context, repo kv.Repository) []models.City {
	raw, err := repo.Get(ctx, KeyCities)
	if err != nil {
		f.log.Warn(ctx, "local favorites unreadable, treating as empty", "error", err)
		return []models.City{}
	}
	if len(raw) == 0 {
		return []models.City{}
	}

	var cities []models.City
	if err := json.Unmarshal(raw, &cities); err != nil {
		f.log.Warn(ctx, "local favorites malformed, treating as empty", "error", err)
		return []models.City{}
	}
	return cities
}

func (f *Favorites) write(ctx context.Context, repo kv.Repository, cities []models.City) error {
	raw, err := json.Marshal(cities)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	return repo.Set(ctx, KeyCities, raw)
}

// Add appends the candidate with a fresh local identifier and timestamp and
// returns the updated list. When an entry with the same coordinates already
// exists the list is returned unchanged together with ErrDuplicate.
func (f *Favorites) Add(ctx context.Context, candidate models.CityCandidate) ([]models.City, error) {
	var cities []models.City

	err := dbx.WithTx(ctx, f.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		cities = f.read(ctx, repo)

		probe := models.City{Lat: candidate.Lat, Lon: candidate.Lon}
		for _, c := range cities {
			if c.SameCoordinates(probe) {
				return ErrDuplicate
			}
		}

		cities = append(cities, models.City{
			ID:      f.newID(),
			Name:    candidate.Name,
			Country: candidate.Country,
			State:   candidate.State,
			Lat:     candidate.Lat,
			Lon:     candidate.Lon,
			AddedAt: f.now().UTC(),
		})
		return f.write(ctx, repo, cities)
	})
	if errors.Is(err, ErrDuplicate) {
		return cities, ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add favorite: %w", err)
	}
	return cities, nil
}

// Remove filters out the entry with the given identifier and persists the
// result. A missing identifier is a no-op, not an error.
func (f *Favorites) Remove(ctx context.Context, id string) ([]models.City, error) {
	target := models.ParseFavoriteID(id)
	var cities []models.City

	err := dbx.WithTx(ctx, f.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)

		current := f.read(ctx, repo)
		cities = make([]models.City, 0, len(current))
		for _, c := range current {
			if !c.FavoriteID().Equal(target) {
				cities = append(cities, c)
			}
		}
		return f.write(ctx, repo, cities)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return cities, nil
}

// Clear erases the stored list entirely. Used after a successful merge into
// the account.
func (f *Favorites) Clear(ctx context.Context) error {
	repo := kv.NewSQLiteRepository(f.db)
	if err := repo.Delete(ctx, KeyCities); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	return nil
}

// ForMerging projects the list to the shape the merge endpoint accepts.
// Local identifiers and timestamps are meaningless to the backend.
func (f *Favorites) ForMerging(ctx context.Context) []models.CityCandidate {
	cities := f.List(ctx)
	out := make([]models.CityCandidate, 0, len(cities))
	for _, c := range cities {
		out = append(out, models.CityCandidate{
			Name:    c.Name,
			Country: c.Country,
			Lat:     c.Lat,
			Lon:     c.Lon,
		})
	}
	return out
}

// Usage reports how many bytes the application's namespaced keys occupy in
// the kv store, counting keys and values alike.
func (f *Favorites) Usage(ctx context.Context) (int64, error) {
	entries, err := kv.NewSQLiteRepository(f.db).List(ctx)
	if err != nil {
		return 0, err
	}

	var total int64
	for key, value := range entries {
		if !strings.HasPrefix(key, KeyPrefix) {
			continue
		}
		total += int64(len(key) + len(value))
	}
	return total, nil
}
