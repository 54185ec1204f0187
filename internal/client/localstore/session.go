package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avolkovs/weatherdeck/internal/client/models"
	"github.com/avolkovs/weatherdeck/internal/client/repositories/kv"
	"github.com/avolkovs/weatherdeck/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// SessionStore persists the bearer token and the user profile independently
// and tells subscribers when the authenticated state flips. Readers fail
// soft: a storage problem reads as "no session".
type SessionStore struct {
	db  *sql.DB
	log logging.Logger

	mu     sync.Mutex
	subs   map[int]chan models.Session
	nextID int

	// test seam for expiry checks
	now func() time.Time
}

func NewSessionStore(db *sql.DB, log logging.Logger) *SessionStore {
	return &SessionStore{
		db:   db,
		log:  log,
		subs: make(map[int]chan models.Session),
		now:  time.Now,
	}
}

func (s *SessionStore) repo() kv.Repository {
	return kv.NewSQLiteRepository(s.db)
}

// Token returns the stored bearer token, or "" when absent or unreadable.
func (s *SessionStore) Token(ctx context.Context) string {
	raw, err := s.repo().Get(ctx, KeyToken)
	if err != nil {
		s.log.Warn(ctx, "token unreadable", "error", err)
		return ""
	}
	return string(raw)
}

func (s *SessionStore) SetToken(ctx context.Context, token string) error {
	if err := s.repo().Set(ctx, KeyToken, []byte(token)); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	s.notify(ctx)
	return nil
}

func (s *SessionStore) RemoveToken(ctx context.Context) error {
	if err := s.repo().Delete(ctx, KeyToken); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	s.notify(ctx)
	return nil
}

// User returns the stored profile, or nil when absent, unreadable, or
// malformed.
func (s *SessionStore) User(ctx context.Context) *models.User {
	raw, err := s.repo().Get(ctx, KeyUser)
	if err != nil {
		s.log.Warn(ctx, "user profile unreadable", "error", err)
		return nil
	}
	if len(raw) == 0 {
		return nil
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.log.Warn(ctx, "user profile malformed", "error", err)
		return nil
	}
	return &u
}

func (s *SessionStore) SetUser(ctx context.Context, u *models.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("failed to encode user profile: %w", err)
	}
	if err := s.repo().Set(ctx, KeyUser, raw); err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	s.notify(ctx)
	return nil
}

func (s *SessionStore) RemoveUser(ctx context.Context) error {
	if err := s.repo().Delete(ctx, KeyUser); err != nil {
		return fmt.Errorf("failed to remove user profile: %w", err)
	}
	s.notify(ctx)
	return nil
}

// Logout erases both session fields. The two deletes are sequential; a
// crash between them leaves a partial session, which reads as not
// authenticated.
func (s *SessionStore) Logout(ctx context.Context) error {
	if err := s.RemoveToken(ctx); err != nil {
		return err
	}
	return s.RemoveUser(ctx)
}

// Session returns the current session snapshot.
func (s *SessionStore) Session(ctx context.Context) models.Session {
	return models.Session{Token: s.Token(ctx), User: s.User(ctx)}
}

// IsAuthenticated reports whether both the token and the user profile are
// present. It is re-evaluated on every call; nothing is cached.
func (s *SessionStore) IsAuthenticated(ctx context.Context) bool {
	return s.Session(ctx).Authenticated()
}

// TokenExpired reports whether the stored token carries a JWT exp claim
// that is already in the past. Tokens that are absent, not JWTs, or have no
// exp claim are treated as not expired: the token is opaque by contract and
// the backend has the final word.
func (s *SessionStore) TokenExpired(ctx context.Context) bool {
	token := s.Token(ctx)
	if token == "" {
		return false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}

// Subscribe registers a listener for session changes. Every state change is
// sent as a snapshot on the returned channel. The returned function
// unsubscribes and closes the channel.
func (s *SessionStore) Subscribe() (<-chan models.Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan models.Session, 8)
	s.subs[id] = ch

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
	return ch, unsubscribe
}

func (s *SessionStore) notify(ctx context.Context) {
	snapshot := s.Session(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber; drop rather than stall a storage write.
		}
	}
}
