package cli

import (
	"context"
	"fmt"

	"github.com/avolkovs/weatherdeck/internal/client/localstore"
	"github.com/avolkovs/weatherdeck/internal/client/models"
	"github.com/avolkovs/weatherdeck/internal/client/services"
)

// Search looks a city up by name and prints the candidates. The printed
// list becomes the target for index arguments to add/toggle/current.
func (a *App) Search(ctx context.Context, name string) {
	results, err := a.weather.SearchCity(ctx, name)
	if err != nil {
		fmt.Fprintln(a.out, "Search failed:", err)
		return
	}
	if len(results) == 0 {
		fmt.Fprintf(a.out, "No cities found matching %q\n", name)
		a.shown = nil
		return
	}

	a.shown = make([]models.City, 0, len(results))
	for i, r := range results {
		c := r.Candidate()
		a.shown = append(a.shown, models.City{Name: c.Name, Country: c.Country, State: c.State, Lat: c.Lat, Lon: c.Lon})
		fmt.Fprintf(a.out, "%d. %s\n", i+1, describeCity(a.shown[i]))
	}
}

// Favorites prints the favorites list for the current mode: the account's
// list when logged in (local on failure), the device list otherwise.
func (a *App) Favorites(ctx context.Context) {
	cities := a.coordinator.Load(ctx)
	if len(cities) == 0 {
		fmt.Fprintln(a.out, "No favorites yet. Try: search <city>, then add <n>.")
		a.shown = nil
		return
	}

	a.shown = cities
	for i, c := range cities {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, describeCity(c))
	}
}

// Add favorites the n-th entry of the last printed list.
func (a *App) Add(ctx context.Context, args []string) {
	i, ok := a.pick(args)
	if !ok {
		return
	}
	city := a.shown[i]

	updated, err := a.coordinator.Add(ctx, models.CityCandidate{
		Name:    city.Name,
		Country: city.Country,
		State:   city.State,
		Lat:     city.Lat,
		Lon:     city.Lon,
	})
	if err != nil {
		if services.IsDuplicate(err) {
			fmt.Fprintf(a.out, "%s is already in your favorites.\n", city.Name)
			return
		}
		fmt.Fprintln(a.out, "Could not add favorite:", err)
		return
	}

	fmt.Fprintf(a.out, "Added %s. You now have %d favorite(s).\n", city.Name, len(updated))
}

// Remove drops the n-th entry of the last printed list from the favorites.
func (a *App) Remove(ctx context.Context, args []string) {
	i, ok := a.pick(args)
	if !ok {
		return
	}
	city := a.shown[i]
	if city.ID == "" {
		fmt.Fprintf(a.out, "%s is not a saved favorite. Use 'favorites' first, or 'toggle'.\n", city.Name)
		return
	}

	updated, err := a.coordinator.Remove(ctx, city.ID)
	if err != nil {
		fmt.Fprintln(a.out, "Could not remove favorite:", err)
		return
	}

	fmt.Fprintf(a.out, "Removed %s. You now have %d favorite(s).\n", city.Name, len(updated))
}

// Toggle adds the n-th entry of the last printed list when it is not a
// favorite yet and removes it when it is. Works on search results and on
// the favorites list alike.
func (a *App) Toggle(ctx context.Context, args []string) {
	i, ok := a.pick(args)
	if !ok {
		return
	}
	city := a.shown[i]

	current := a.coordinator.Load(ctx)
	updated, err := a.coordinator.Toggle(ctx, current, city)
	if err != nil {
		if services.IsDuplicate(err) {
			fmt.Fprintf(a.out, "%s is already in your favorites.\n", city.Name)
			return
		}
		fmt.Fprintln(a.out, "Toggle failed:", err)
		return
	}

	if len(updated) < len(current) {
		fmt.Fprintf(a.out, "Removed %s. You now have %d favorite(s).\n", city.Name, len(updated))
	} else {
		fmt.Fprintf(a.out, "Added %s. You now have %d favorite(s).\n", city.Name, len(updated))
	}
}

// Usage reports how many bytes the device-local favorites occupy.
func (a *App) Usage(ctx context.Context) {
	size, err := a.local.Usage(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Could not read storage usage:", err)
		return
	}
	fmt.Fprintf(a.out, "Local favorites use %d byte(s) on this device.\n", size)
}

// Reset wipes everything stored on this device, favorites and session
// alike, after an explicit confirmation.
func (a *App) Reset(ctx context.Context) {
	answer, err := getSimpleText(a.reader, "This erases local favorites and your session. Type 'yes' to confirm", a.out)
	if err != nil || answer != "yes" {
		fmt.Fprintln(a.out, "Reset cancelled.")
		return
	}

	// Logout first so session subscribers hear about the change.
	if err := a.session.Logout(ctx); err != nil {
		fmt.Fprintln(a.out, "Reset failed:", err)
		return
	}
	if err := localstore.Wipe(ctx, a.db); err != nil {
		fmt.Fprintln(a.out, "Reset failed:", err)
		return
	}

	a.shown = nil
	fmt.Fprintln(a.out, "Local storage cleared.")
}

func describeCity(c models.City) string {
	s := c.Name
	if c.State != "" {
		s += ", " + c.State
	}
	if c.Country != "" {
		s += ", " + c.Country
	}
	return fmt.Sprintf("%s (%.4f, %.4f)", s, c.Lat, c.Lon)
}
