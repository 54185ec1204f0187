package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avolkovs/weatherdeck/internal/client/models"
)

func TestSearch_PrintsCandidates(t *testing.T) {
	client := &stubClient{
		searchCity: func(_ context.Context, name string) ([]models.SearchResult, error) {
			require.Equal(t, "riga", name)
			return []models.SearchResult{
				{Name: "Riga", Country: "LV", Lat: 56.9496, Lon: 24.1052},
				{Name: "Riga", Country: "US", State: "Michigan", Lat: 41.8234, Lon: -83.8291},
			}, nil
		},
	}
	a, out := newTestApp(t, client, "")

	a.Search(context.Background(), "riga")

	require.Contains(t, out.String(), "1. Riga, LV")
	require.Contains(t, out.String(), "2. Riga, Michigan, US")
	require.Len(t, a.shown, 2)
}

func TestSearch_NoMatches(t *testing.T) {
	client := &stubClient{
		searchCity: func(context.Context, string) ([]models.SearchResult, error) {
			return nil, nil
		},
	}
	a, out := newTestApp(t, client, "")
	a.shown = []models.City{{Name: "stale"}}

	a.Search(context.Background(), "xyzzy")

	require.Contains(t, out.String(), "No cities found")
	require.Empty(t, a.shown)
}

func TestFavorites_EmptyHint(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	a.Favorites(context.Background())
	require.Contains(t, out.String(), "No favorites yet")
}

func TestAdd_AnonymousStoresLocally(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	a.shown = []models.City{{Name: "Riga", Country: "LV", Lat: 56.9496, Lon: 24.1052}}

	a.Add(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "Added Riga. You now have 1 favorite(s).")
	cities := a.local.List(context.Background())
	require.Len(t, cities, 1)
	require.Equal(t, "Riga", cities[0].Name)
}

func TestAdd_DuplicateIsInformational(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	a.shown = []models.City{{Name: "Riga", Country: "LV", Lat: 56.9496, Lon: 24.1052}}

	a.Add(context.Background(), []string{"1"})
	a.Add(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "Riga is already in your favorites.")
	require.Len(t, a.local.List(context.Background()), 1)
}

func TestRemove_FromFavoritesList(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	a.shown = []models.City{{Name: "Riga", Country: "LV", Lat: 56.9496, Lon: 24.1052}}
	a.Add(context.Background(), []string{"1"})

	a.Favorites(context.Background())
	a.Remove(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "Removed Riga. You now have 0 favorite(s).")
	require.Empty(t, a.local.List(context.Background()))
}

func TestRemove_SearchResultHasNoID(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	a.shown = []models.City{{Name: "Riga", Lat: 56.9496, Lon: 24.1052}}

	a.Remove(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "not a saved favorite")
}

func TestToggle_AddsThenRemoves(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	a.shown = []models.City{{Name: "Riga", Country: "LV", Lat: 56.9496, Lon: 24.1052}}

	a.Toggle(context.Background(), []string{"1"})
	require.Contains(t, out.String(), "Added Riga")
	require.Len(t, a.local.List(context.Background()), 1)

	out.Reset()
	a.Toggle(context.Background(), []string{"1"})
	require.Contains(t, out.String(), "Removed Riga")
	require.Empty(t, a.local.List(context.Background()))
}

func TestReset_WipesFavoritesAndSession(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	ctx := context.Background()

	a.shown = []models.City{{Name: "Riga", Country: "LV", Lat: 56.9496, Lon: 24.1052}}
	a.Add(ctx, []string{"1"})
	require.NoError(t, a.session.SetToken(ctx, "tok"))
	require.NoError(t, a.session.SetUser(ctx, &models.User{Username: "alice"}))

	stubInputs(t, []string{"yes"}, "")
	a.Reset(ctx)

	require.Contains(t, out.String(), "Local storage cleared.")
	require.Empty(t, a.local.List(ctx))
	require.False(t, a.isLoggedIn(ctx))
	require.Nil(t, a.shown)
}

func TestReset_CancelledWithoutConfirmation(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	ctx := context.Background()

	a.shown = []models.City{{Name: "Riga", Country: "LV", Lat: 56.9496, Lon: 24.1052}}
	a.Add(ctx, []string{"1"})

	stubInputs(t, []string{"no"}, "")
	a.Reset(ctx)

	require.Contains(t, out.String(), "Reset cancelled.")
	require.Len(t, a.local.List(ctx), 1)
}

func TestUsage_ReportsBytes(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")
	a.shown = []models.City{{Name: "Riga", Country: "LV", Lat: 56.9496, Lon: 24.1052}}
	a.Add(context.Background(), []string{"1"})

	a.Usage(context.Background())

	require.Regexp(t, `Local favorites use \d+ byte\(s\)`, out.String())
}
