package config

// Config holds runtime settings for the WeatherDeck CLI.
//
// Fields:
//   - APIBaseURL: base URL of the weather backend.
//   - DatabasePath: path of the local SQLite database (kv store + offline cache).
//   - CacheVersion: name of the active offline cache version; changing it
//     rotates the cache at the next activation.
type Config struct {
	APIBaseURL   string
	DatabasePath string
	CacheVersion string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://localhost:3000"
	c.DatabasePath = "weatherdeck.db"
	c.CacheVersion = "weatherdeck-v1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
