package models

import "time"

// SearchResult is one match from the city search endpoint.
type SearchResult struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Candidate converts a search result into the shape favorites operations
// accept.
func (r SearchResult) Candidate() CityCandidate {
	return CityCandidate{Name: r.Name, Country: r.Country, State: r.State, Lat: r.Lat, Lon: r.Lon}
}

// CurrentConditions is the current-weather payload for one coordinate.
type CurrentConditions struct {
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feelsLike"`
	HumidityPct float64 `json:"humidity"`
	WindSpeed   float64 `json:"windSpeed"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

// ForecastEntry is one step of the forecast payload.
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Temp        float64   `json:"temp"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}
