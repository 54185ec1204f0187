// Package models defines the data shapes shared by the client: favorite
// cities, the session, and the weather payloads returned by the backend.
package models

import (
	"strings"
	"time"
)

// LocalIDPrefix marks identifiers generated on this device, as opposed to
// identifiers assigned by the backend when a favorite is persisted remotely.
const LocalIDPrefix = "local_"

// IDKind tells where a favorite identifier was minted.
type IDKind int

const (
	// KindLocal is an identifier generated on this device.
	KindLocal IDKind = iota
	// KindRemote is an identifier assigned by the backend.
	KindRemote
)

// FavoriteID is a tagged favorite identifier. Local and remote identifiers
// live in separate namespaces and never compare equal to each other.
type FavoriteID struct {
	Kind  IDKind
	Value string
}

// ParseFavoriteID classifies a raw identifier string by its provenance
// prefix.
func ParseFavoriteID(raw string) FavoriteID {
	if strings.HasPrefix(raw, LocalIDPrefix) {
		return FavoriteID{Kind: KindLocal, Value: raw}
	}
	return FavoriteID{Kind: KindRemote, Value: raw}
}

// Equal reports whether two identifiers name the same favorite. Both the
// kind and the value must match.
func (id FavoriteID) Equal(other FavoriteID) bool {
	return id.Kind == other.Kind && id.Value == other.Value
}

func (id FavoriteID) String() string {
	return id.Value
}

// City is one favorite record. ID carries provenance: locally generated ids
// are prefixed with LocalIDPrefix, server-assigned ids are used as-is.
// Identity for dedup purposes is the (Lat, Lon) pair, not ID.
type City struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Country string    `json:"country"`
	State   string    `json:"state,omitempty"`
	Lat     float64   `json:"lat"`
	Lon     float64   `json:"lon"`
	AddedAt time.Time `json:"addedAt"`
}

// FavoriteID returns the city's identifier with its provenance tag.
func (c City) FavoriteID() FavoriteID {
	return ParseFavoriteID(c.ID)
}

// SameCoordinates reports whether two cities name the same place. The
// backend and the local store both dedup on the exact coordinate pair.
func (c City) SameCoordinates(other City) bool {
	return c.Lat == other.Lat && c.Lon == other.Lon
}

// CityCandidate is the user-supplied part of a favorite, before an
// identifier and timestamp are assigned. It is also the wire shape the
// merge endpoint accepts.
type CityCandidate struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
