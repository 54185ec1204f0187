package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/avolkovs/weatherdeck/internal/client/api"
	"github.com/avolkovs/weatherdeck/internal/client/models"
	"github.com/avolkovs/weatherdeck/internal/client/prefs"
)

func TestCurrent_Metric(t *testing.T) {
	client := &stubClient{
		currentWeather: func(_ context.Context, lat, lon float64) (*models.CurrentConditions, error) {
			require.Equal(t, 56.9496, lat)
			require.Equal(t, 24.1052, lon)
			return &models.CurrentConditions{
				Temp: 21.3, FeelsLike: 20.1, HumidityPct: 60, WindSpeed: 3.4, Description: "clear sky",
			}, nil
		},
	}
	a, out := newTestApp(t, client, "")
	a.shown = []models.City{{Name: "Riga", Lat: 56.9496, Lon: 24.1052}}

	a.Current(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "Riga: clear sky, 21.3°C (feels like 20.1°C), humidity 60%, wind 3.4 m/s")
}

func TestCurrent_Imperial(t *testing.T) {
	client := &stubClient{
		currentWeather: func(context.Context, float64, float64) (*models.CurrentConditions, error) {
			return &models.CurrentConditions{Temp: 0, Description: "snow"}, nil
		},
	}
	a, out := newTestApp(t, client, "")
	a.prefs.Units = prefs.Imperial
	a.shown = []models.City{{Name: "Riga"}}

	a.Current(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "32.0°F")
}

func TestCurrent_Unavailable(t *testing.T) {
	client := &stubClient{
		currentWeather: func(context.Context, float64, float64) (*models.CurrentConditions, error) {
			return nil, api.ErrUnavailable
		},
	}
	a, out := newTestApp(t, client, "")
	a.shown = []models.City{{Name: "Riga"}}

	a.Current(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "unreachable")
}

func TestForecast_PrintsEntries(t *testing.T) {
	ts := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	client := &stubClient{
		forecast: func(context.Context, float64, float64) ([]models.ForecastEntry, error) {
			return []models.ForecastEntry{
				{Timestamp: ts, Temp: 18.5, Description: "light rain"},
				{Timestamp: ts.Add(3 * time.Hour), Temp: 17.0, Description: "overcast"},
			}, nil
		},
	}
	a, out := newTestApp(t, client, "")
	a.shown = []models.City{{Name: "Riga"}}

	a.Forecast(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "Forecast for Riga:")
	require.Contains(t, out.String(), "18.5°C")
	require.Contains(t, out.String(), "light rain")
	require.Contains(t, out.String(), "overcast")
}

func TestForecast_Empty(t *testing.T) {
	client := &stubClient{
		forecast: func(context.Context, float64, float64) ([]models.ForecastEntry, error) {
			return nil, nil
		},
	}
	a, out := newTestApp(t, client, "")
	a.shown = []models.City{{Name: "Riga"}}

	a.Forecast(context.Background(), []string{"1"})

	require.Contains(t, out.String(), "No forecast available for Riga.")
}

func TestUnits_TogglesAndPersists(t *testing.T) {
	a, out := newTestApp(t, &stubClient{}, "")

	a.Units(context.Background())
	require.Contains(t, out.String(), "Units set to imperial.")
	require.Equal(t, prefs.Imperial, prefs.Load(a.prefsPath).Units)

	a.Units(context.Background())
	require.Contains(t, out.String(), "Units set to metric.")
	require.Equal(t, prefs.Metric, prefs.Load(a.prefsPath).Units)
}
