// Package webcache persists snapshots of HTTP responses, grouped under
// named cache versions. It is the backing store for the offline cache: one
// row per (cache name, URL), holding enough of the response to replay it.
package webcache

import (
	"context"
	"net/http"
)

// Entry is one stored response.
type Entry struct {
	URL    string
	Status int
	Header http.Header
	Body   []byte
}

type Repository interface {
	// Get returns the entry stored for url under cacheName, or (nil, nil)
	// when there is no match.
	Get(ctx context.Context, cacheName, url string) (*Entry, error)
	// Put stores or replaces the entry for e.URL under cacheName.
	Put(ctx context.Context, cacheName string, e *Entry) error
	// Names lists the distinct cache names currently stored.
	Names(ctx context.Context) ([]string, error)
	// DeleteName removes every entry stored under cacheName.
	DeleteName(ctx context.Context, cacheName string) error
}
