package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/avolkovs/weatherdeck/internal/client/models"
	"github.com/avolkovs/weatherdeck/internal/logging"
)

const authPathPrefix = "/api/auth/"

// HTTPClient talks to the backend over HTTP/JSON. It is stateless apart
// from its configuration: the credential comes from the TokenSource on
// every request.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	log     logging.Logger

	// onUnauthorized runs when a request that carried a credential comes
	// back with 401 outside the auth flow. It is expected to tear the
	// session down and send the user to the login prompt.
	onUnauthorized func(ctx context.Context)
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client for the backend at baseURL. The http.Client
// carries no timeout: a stalled request stalls its command, and the caller's
// context is the only cancellation mechanism.
func NewHTTPClient(baseURL string, tokens TokenSource, log logging.Logger) (*HTTPClient, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &HTTPClient{
		baseURL: base,
		http:    &http.Client{},
		tokens:  tokens,
		log:     log,
	}, nil
}

// SetHTTPClient swaps the underlying http.Client, e.g. to route requests
// through the offline cache transport.
func (c *HTTPClient) SetHTTPClient(h *http.Client) {
	c.http = h
}

// OnUnauthorized installs the forced-logout hook.
func (c *HTTPClient) OnUnauthorized(fn func(ctx context.Context)) {
	c.onUnauthorized = fn
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (c *HTTPClient) Register(ctx context.Context, username, email, password string) (models.Session, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var payload authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", body, &payload); err != nil {
		return models.Session{}, err
	}
	return models.Session{Token: payload.Token, User: payload.User}, nil
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (models.Session, error) {
	body := map[string]string{"username": username, "password": password}
	var payload authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &payload); err != nil {
		return models.Session{}, err
	}
	return models.Session{Token: payload.Token, User: payload.User}, nil
}

func (c *HTTPClient) Verify(ctx context.Context) (*models.User, error) {
	var payload struct {
		User *models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify", nil, &payload); err != nil {
		return nil, err
	}
	return payload.User, nil
}

func (c *HTTPClient) MergeCities(ctx context.Context, cities []models.CityCandidate) error {
	body := map[string]any{"cities": cities}
	// The backend dedups against the account's favorites by coordinate;
	// nothing comes back that we must reconcile.
	return c.do(ctx, http.MethodPost, "/api/auth/merge-cities", body, nil)
}

func (c *HTTPClient) SearchCity(ctx context.Context, name string) ([]models.SearchResult, error) {
	var payload []models.SearchResult
	// The raw name goes into url.URL.Path; escaping happens once, when the
	// request URL is serialized.
	path := "/api/weather/search/" + name
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) CurrentWeather(ctx context.Context, lat, lon float64) (*models.CurrentConditions, error) {
	var payload models.CurrentConditions
	path := "/api/weather/current/" + coord(lat) + "/" + coord(lon)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *HTTPClient) Forecast(ctx context.Context, lat, lon float64) ([]models.ForecastEntry, error) {
	var payload []models.ForecastEntry
	path := "/api/weather/forecast/" + coord(lat) + "/" + coord(lon)
	if err := c.do(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) ListCities(ctx context.Context) ([]models.City, error) {
	var payload []models.City
	if err := c.do(ctx, http.MethodGet, "/api/cities", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) AddCity(ctx context.Context, candidate models.CityCandidate) ([]models.City, error) {
	var payload []models.City
	if err := c.do(ctx, http.MethodPost, "/api/cities", candidate, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *HTTPClient) RemoveCity(ctx context.Context, id string) ([]models.City, error) {
	var payload []models.City
	path := "/api/cities/" + id
	if err := c.do(ctx, http.MethodDelete, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	tokenAttached := false
	if c.tokens != nil {
		if token := c.tokens.Token(ctx); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			tokenAttached = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		// A rejected credential outside the auth flow forces a logout. A
		// 401 during login/register/verify is the flow itself failing.
		if tokenAttached && !strings.HasPrefix(path, authPathPrefix) && c.onUnauthorized != nil {
			c.log.Warn(ctx, "credential rejected, clearing session", "path", path)
			c.onUnauthorized(ctx)
		}
		return ErrUnauthorized
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		var msg struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&msg); decodeErr == nil {
			apiErr.Message = msg.Message
		}
		return apiErr
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
