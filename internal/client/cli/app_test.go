package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avolkovs/weatherdeck/internal/client/api"
	"github.com/avolkovs/weatherdeck/internal/client/localstore"
	"github.com/avolkovs/weatherdeck/internal/client/models"
	"github.com/avolkovs/weatherdeck/internal/client/prefs"
	"github.com/avolkovs/weatherdeck/internal/client/services"
	"github.com/avolkovs/weatherdeck/internal/client/storage"
	"github.com/avolkovs/weatherdeck/internal/logging"

	_ "modernc.org/sqlite"
)

// stubClient implements api.Client with overridable behavior per method.
type stubClient struct {
	searchCity     func(ctx context.Context, name string) ([]models.SearchResult, error)
	currentWeather func(ctx context.Context, lat, lon float64) (*models.CurrentConditions, error)
	forecast       func(ctx context.Context, lat, lon float64) ([]models.ForecastEntry, error)
	listCities     func(ctx context.Context) ([]models.City, error)
	addCity        func(ctx context.Context, c models.CityCandidate) ([]models.City, error)
	removeCity     func(ctx context.Context, id string) ([]models.City, error)
	mergeCities    func(ctx context.Context, cities []models.CityCandidate) error
	login          func(ctx context.Context, username, password string) (models.Session, error)
	register       func(ctx context.Context, username, email, password string) (models.Session, error)
	verify         func(ctx context.Context) (*models.User, error)
}

func (s *stubClient) Register(ctx context.Context, username, email, password string) (models.Session, error) {
	if s.register == nil {
		return models.Session{}, errors.New("unexpected Register call")
	}
	return s.register(ctx, username, email, password)
}

func (s *stubClient) Login(ctx context.Context, username, password string) (models.Session, error) {
	if s.login == nil {
		return models.Session{}, errors.New("unexpected Login call")
	}
	return s.login(ctx, username, password)
}

func (s *stubClient) Verify(ctx context.Context) (*models.User, error) {
	if s.verify == nil {
		return nil, errors.New("unexpected Verify call")
	}
	return s.verify(ctx)
}

func (s *stubClient) MergeCities(ctx context.Context, cities []models.CityCandidate) error {
	if s.mergeCities == nil {
		return nil
	}
	return s.mergeCities(ctx, cities)
}

func (s *stubClient) SearchCity(ctx context.Context, name string) ([]models.SearchResult, error) {
	if s.searchCity == nil {
		return nil, errors.New("unexpected SearchCity call")
	}
	return s.searchCity(ctx, name)
}

func (s *stubClient) CurrentWeather(ctx context.Context, lat, lon float64) (*models.CurrentConditions, error) {
	if s.currentWeather == nil {
		return nil, errors.New("unexpected CurrentWeather call")
	}
	return s.currentWeather(ctx, lat, lon)
}

func (s *stubClient) Forecast(ctx context.Context, lat, lon float64) ([]models.ForecastEntry, error) {
	if s.forecast == nil {
		return nil, errors.New("unexpected Forecast call")
	}
	return s.forecast(ctx, lat, lon)
}

func (s *stubClient) ListCities(ctx context.Context) ([]models.City, error) {
	if s.listCities == nil {
		return nil, errors.New("unexpected ListCities call")
	}
	return s.listCities(ctx)
}

func (s *stubClient) AddCity(ctx context.Context, c models.CityCandidate) ([]models.City, error) {
	if s.addCity == nil {
		return nil, errors.New("unexpected AddCity call")
	}
	return s.addCity(ctx, c)
}

func (s *stubClient) RemoveCity(ctx context.Context, id string) ([]models.City, error) {
	if s.removeCity == nil {
		return nil, errors.New("unexpected RemoveCity call")
	}
	return s.removeCity(ctx, id)
}

var _ api.Client = (*stubClient)(nil)

// newTestApp wires an App over an in-memory database, a stubbed backend, and
// a capture buffer for output. The returned buffer holds everything the app
// printed.
func newTestApp(t *testing.T, client *stubClient, input string) (*App, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()

	db, err := storage.Open(ctx, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	log := logging.NewDefault(io.Discard)
	session := localstore.NewSessionStore(db, log)
	local := localstore.NewFavorites(db, log)
	coordinator := services.NewFavoritesCoordinator(client, local, session, log)
	auth := services.NewAuthService(client, session, coordinator, log)

	var out bytes.Buffer
	return &App{
		log:         log,
		db:          db,
		session:     session,
		local:       local,
		coordinator: coordinator,
		auth:        auth,
		client:      client,
		weather:     client,
		prefs:       prefs.Prefs{Units: prefs.Metric},
		prefsPath:   t.TempDir() + "/prefs.toml",
		reader:      bufio.NewReader(strings.NewReader(input)),
		out:         &out,
	}, &out
}

func TestRoot_ExitCommand(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "exit\n")
	a.Root(context.Background())
	require.Contains(t, out.String(), "Bye!")
}

func TestRoot_UnknownCommand(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "frobnicate\nexit\n")
	a.Root(context.Background())
	require.Contains(t, out.String(), "Unknown command: frobnicate")
}

func TestRoot_HelpAnonymous(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "help\nexit\n")
	a.Root(context.Background())
	require.Contains(t, out.String(), "register, login")
}

func TestPick_OutOfRange(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	a.shown = []models.City{{Name: "Riga"}}

	_, ok := a.pick([]string{"2"})
	require.False(t, ok)
	require.Contains(t, out.String(), "No entry")

	_, ok = a.pick([]string{"abc"})
	require.False(t, ok)

	i, ok := a.pick([]string{"1"})
	require.True(t, ok)
	require.Equal(t, 0, i)
}
