// Package cli is the interactive terminal frontend: it wires the stores,
// the API clients, and the offline cache together and drives them from a
// small REPL.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/avolkovs/weatherdeck/internal/client/api"
	"github.com/avolkovs/weatherdeck/internal/client/config"
	"github.com/avolkovs/weatherdeck/internal/client/localstore"
	"github.com/avolkovs/weatherdeck/internal/client/models"
	"github.com/avolkovs/weatherdeck/internal/client/offline"
	"github.com/avolkovs/weatherdeck/internal/client/prefs"
	"github.com/avolkovs/weatherdeck/internal/client/repositories/webcache"
	"github.com/avolkovs/weatherdeck/internal/client/services"
	"github.com/avolkovs/weatherdeck/internal/client/storage"
	"github.com/avolkovs/weatherdeck/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB

	session     *localstore.SessionStore
	local       *localstore.Favorites
	coordinator *services.FavoritesCoordinator
	auth        *services.AuthService

	// account and auth calls go through the plain client; weather lookups
	// go through the offline-cache transport so the dashboard can degrade
	// to the last seen data
	client  api.Client
	weather api.Client
	cache   *offline.Cache

	prefs     prefs.Prefs
	prefsPath string

	reader *bufio.Reader
	out    io.Writer

	// last displayed list; numeric commands (add 2, current 1, ...) index
	// into it
	shown []models.City
}

func NewApp(cfg *config.Config) (*App, error) {
	ctx := context.Background()
	log := logging.NewDefault(os.Stderr)

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	session := localstore.NewSessionStore(db, log)
	local := localstore.NewFavorites(db, log)

	client, err := api.NewHTTPClient(cfg.APIBaseURL, session, log.With("component", "api"))
	if err != nil {
		return nil, err
	}

	cache, err := offline.NewCache(cfg.CacheVersion, cfg.APIBaseURL, nil, webcache.NewSQLiteRepository(db), log.With("component", "cache"))
	if err != nil {
		return nil, err
	}

	weather, err := api.NewHTTPClient(cfg.APIBaseURL, session, log.With("component", "api"))
	if err != nil {
		return nil, err
	}
	weather.SetHTTPClient(&http.Client{Transport: cache})

	coordinator := services.NewFavoritesCoordinator(client, local, session, log)
	auth := services.NewAuthService(client, session, coordinator, log)

	a := &App{
		config:      cfg,
		log:         log,
		db:          db,
		session:     session,
		local:       local,
		coordinator: coordinator,
		auth:        auth,
		client:      client,
		weather:     weather,
		cache:       cache,
		prefs:       prefs.Load(prefs.DefaultPath()),
		prefsPath:   prefs.DefaultPath(),
		reader:      bufio.NewReader(os.Stdin),
		out:         os.Stdout,
	}

	// A rejected credential anywhere outside the auth flow tears the
	// session down and sends the user back to the login prompt.
	client.OnUnauthorized(func(ctx context.Context) {
		if err := session.Logout(ctx); err != nil {
			log.Error(ctx, "failed to clear rejected session", "error", err)
		}
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	})
	weather.OnUnauthorized(func(ctx context.Context) {
		if err := session.Logout(ctx); err != nil {
			log.Error(ctx, "failed to clear rejected session", "error", err)
		}
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	})

	return a, nil
}

// Run verifies the stored session, starts the offline cache lifecycle, and
// enters the REPL. It owns the database handle.
func (a *App) Run(ctx context.Context) {
	defer func() {
		a.cache.Flush()
		_ = a.db.Close()
	}()

	if user := a.auth.Verify(ctx); user != nil {
		fmt.Fprintf(a.out, "Welcome back, %s!\n", user.Username)
	}

	// Cache install/activate runs decoupled from the REPL, like a worker
	// with its own lifecycle.
	go func() {
		a.cache.Install(ctx)
		a.cache.Activate(ctx)
	}()

	// Announce session flips triggered outside the current command (e.g. a
	// forced logout on a rejected credential).
	sessions, unsubscribe := a.session.Subscribe()
	defer unsubscribe()
	go func() {
		for snap := range sessions {
			if snap.Authenticated() {
				a.log.Info(ctx, "session established", "user", snap.User.Username)
			} else {
				a.log.Info(ctx, "session cleared")
			}
		}
	}()

	a.Root(ctx)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.session.IsAuthenticated(ctx)
}
