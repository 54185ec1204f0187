package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/avolkovs/weatherdeck/internal/client/api"
	"github.com/avolkovs/weatherdeck/internal/client/prefs"
)

// Current prints current conditions for the n-th entry of the last printed
// list. Lookups go through the offline cache, so a previously seen city
// still renders when the network is gone.
func (a *App) Current(ctx context.Context, args []string) {
	i, ok := a.pick(args)
	if !ok {
		return
	}
	city := a.shown[i]

	cond, err := a.weather.CurrentWeather(ctx, city.Lat, city.Lon)
	if err != nil {
		a.printWeatherError(err)
		return
	}

	fmt.Fprintf(a.out, "%s: %s, %s (feels like %s), humidity %.0f%%, wind %s\n",
		city.Name,
		cond.Description,
		a.prefs.FormatTemp(cond.Temp),
		a.prefs.FormatTemp(cond.FeelsLike),
		cond.HumidityPct,
		a.prefs.FormatWind(cond.WindSpeed),
	)
}

// Forecast prints the forecast for the n-th entry of the last printed list.
func (a *App) Forecast(ctx context.Context, args []string) {
	i, ok := a.pick(args)
	if !ok {
		return
	}
	city := a.shown[i]

	entries, err := a.weather.Forecast(ctx, city.Lat, city.Lon)
	if err != nil {
		a.printWeatherError(err)
		return
	}
	if len(entries) == 0 {
		fmt.Fprintf(a.out, "No forecast available for %s.\n", city.Name)
		return
	}

	fmt.Fprintf(a.out, "Forecast for %s:\n", city.Name)
	for _, e := range entries {
		fmt.Fprintf(a.out, "  %s  %s  %s\n",
			e.Timestamp.Local().Format("Mon 15:04"),
			a.prefs.FormatTemp(e.Temp),
			e.Description,
		)
	}
}

// Units flips between metric and imperial and persists the choice.
func (a *App) Units(ctx context.Context) {
	if a.prefs.Units == prefs.Imperial {
		a.prefs.Units = prefs.Metric
	} else {
		a.prefs.Units = prefs.Imperial
	}

	if err := prefs.Save(a.prefsPath, a.prefs); err != nil {
		a.log.Warn(ctx, "failed to save preferences", "error", err)
	}
	fmt.Fprintf(a.out, "Units set to %s.\n", a.prefs.Units)
}

func (a *App) printWeatherError(err error) {
	if errors.Is(err, api.ErrUnavailable) {
		fmt.Fprintln(a.out, "The weather service is unreachable and nothing is cached for this city yet.")
		return
	}
	fmt.Fprintln(a.out, "Weather lookup failed:", err)
}
