// Package prefs handles WeatherDeck display preferences. Preferences are
// stored in ~/.config/weatherdeck/prefs.toml and degrade to defaults on any
// read problem.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Units selects the measurement system used when rendering weather.
type Units string

const (
	Metric   Units = "metric"
	Imperial Units = "imperial"
)

// Prefs holds user display preferences.
type Prefs struct {
	Units Units `toml:"units"`
}

const defaultPrefsPath = "~/.config/weatherdeck/prefs.toml"

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults when
// the file is missing, unreadable, or malformed.
func Load(path string) Prefs {
	p := Prefs{Units: Metric}

	resolved, err := resolvePath(path)
	if err != nil {
		return p
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return p
	}

	if err := toml.Unmarshal(raw, &p); err != nil {
		return Prefs{Units: Metric}
	}

	if p.Units != Metric && p.Units != Imperial {
		p.Units = Metric
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	raw, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, raw, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

// FormatTemp renders a Celsius temperature in the preferred units.
func (p Prefs) FormatTemp(celsius float64) string {
	if p.Units == Imperial {
		return fmt.Sprintf("%.1f°F", celsius*9/5+32)
	}
	return fmt.Sprintf("%.1f°C", celsius)
}

// FormatWind renders a wind speed given in m/s in the preferred units.
func (p Prefs) FormatWind(metersPerSecond float64) string {
	if p.Units == Imperial {
		return fmt.Sprintf("%.1f mph", metersPerSecond*2.23694)
	}
	return fmt.Sprintf("%.1f m/s", metersPerSecond)
}

func resolvePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = defaultPrefsPath
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	if trimmed == "" {
		return "", errors.New("path is empty")
	}
	return filepath.Abs(trimmed)
}
