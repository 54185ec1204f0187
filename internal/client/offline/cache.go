// Package offline gives the client a best-effort response cache in the
// shape of an http.RoundTripper: cache-first reads, opportunistic
// population from successful same-origin responses, and a cached
// root-document fallback when the network is gone entirely. Cached entries
// live under a versioned cache name; activating a new version evicts every
// other one.
package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/avolkovs/weatherdeck/internal/client/repositories/webcache"
	"github.com/avolkovs/weatherdeck/internal/logging"
)

// DefaultShellPaths is the fixed list of application shell assets
// pre-populated at install time.
var DefaultShellPaths = []string{
	"/",
	"/static/js/bundle.js",
	"/static/css/main.css",
	"/manifest.json",
}

// Cache is a cache-first transport over a persistent response store.
type Cache struct {
	name     string
	origin   *url.URL
	base     http.RoundTripper
	repo     webcache.Repository
	precache []string
	log      logging.Logger

	// in-flight best-effort stores; Flush waits for them
	pending sync.WaitGroup
}

var _ http.RoundTripper = (*Cache)(nil)

// NewCache builds a cache named name for assets under origin. Requests pass
// through base on a miss; matched and successfully fetched GET responses
// are replayed from and stored into repo.
func NewCache(name, origin string, base http.RoundTripper, repo webcache.Repository, log logging.Logger) (*Cache, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse cache origin %q: %w", origin, err)
	}
	if base == nil {
		base = http.DefaultTransport
	}
	return &Cache{
		name:     name,
		origin:   u,
		base:     base,
		repo:     repo,
		precache: DefaultShellPaths,
		log:      log,
	}, nil
}

// Name returns the cache version name.
func (c *Cache) Name() string { return c.name }

// Install pre-populates the cache with the shell asset list. Individual
// failures are logged and skipped, never retried.
func (c *Cache) Install(ctx context.Context) {
	for _, path := range c.precache {
		target := c.origin.ResolveReference(&url.URL{Path: path})

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			c.log.Warn(ctx, "precache request invalid", "path", path, "error", err)
			continue
		}
		resp, err := c.base.RoundTrip(req)
		if err != nil {
			c.log.Warn(ctx, "precache fetch failed", "path", path, "error", err)
			continue
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil || resp.StatusCode != http.StatusOK {
			c.log.Warn(ctx, "precache response unusable", "path", path, "status", resp.StatusCode)
			continue
		}

		entry := &webcache.Entry{URL: target.String(), Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body}
		if err := c.repo.Put(ctx, c.name, entry); err != nil {
			c.log.Warn(ctx, "precache store failed", "path", path, "error", err)
		}
	}
}

// Activate evicts every stored cache version other than this one.
func (c *Cache) Activate(ctx context.Context) {
	names, err := c.repo.Names(ctx)
	if err != nil {
		c.log.Warn(ctx, "cache version listing failed", "error", err)
		return
	}
	for _, name := range names {
		if name == c.name {
			continue
		}
		c.log.Info(ctx, "deleting old cache version", "name", name)
		if err := c.repo.DeleteName(ctx, name); err != nil {
			c.log.Warn(ctx, "cache version eviction failed", "name", name, "error", err)
		}
	}
}

// RoundTrip serves GET requests cache-first. A network response with a
// success status from our own origin is stored opportunistically; the store
// never delays returning the response. When the network fails outright the
// cached root document is the fallback.
func (c *Cache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.base.RoundTrip(req)
	}

	ctx := req.Context()
	key := req.URL.String()

	if entry, err := c.repo.Get(ctx, c.name, key); err == nil && entry != nil {
		c.log.Debug(ctx, "cache hit", "url", key)
		return replay(req, entry), nil
	} else if err != nil {
		c.log.Warn(ctx, "cache lookup failed", "url", key, "error", err)
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		if entry, getErr := c.repo.Get(ctx, c.name, c.rootURL()); getErr == nil && entry != nil {
			c.log.Info(ctx, "network gone, serving cached root document", "url", key)
			return replay(req, entry), nil
		}
		return nil, err
	}

	if resp.StatusCode == http.StatusOK && c.sameOrigin(req.URL) {
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, readErr
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))

		entry := &webcache.Entry{URL: key, Status: resp.StatusCode, Header: resp.Header.Clone(), Body: body}
		c.pending.Add(1)
		go func() {
			defer c.pending.Done()
			if err := c.repo.Put(context.WithoutCancel(ctx), c.name, entry); err != nil {
				c.log.Warn(context.Background(), "cache store failed", "url", key, "error", err)
			}
		}()
	}

	return resp, nil
}

// Flush waits for in-flight cache stores. Call before closing the backing
// database.
func (c *Cache) Flush() {
	c.pending.Wait()
}

func (c *Cache) rootURL() string {
	return c.origin.ResolveReference(&url.URL{Path: "/"}).String()
}

func (c *Cache) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Host, c.origin.Host) && u.Scheme == c.origin.Scheme
}

func replay(req *http.Request, entry *webcache.Entry) *http.Response {
	header := entry.Header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        http.StatusText(entry.Status),
		StatusCode:    entry.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(entry.Body)),
		ContentLength: int64(len(entry.Body)),
		Request:       req,
	}
}
