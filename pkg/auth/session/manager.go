package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sijangmap/marketmap-backend/pkg/redis"
)

// ErrInvalidRefreshToken is returned when a refresh token does not match
// the stored session or the session no longer exists.
var ErrInvalidRefreshToken = fmt.Errorf("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer func(adminID int64, accessID string) string

// Manager issues, rotates and revokes admin refresh sessions backed by redis.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// NewManager wires a session manager. The TTL must cover at least the
// access-token lifetime or refresh would never be possible.
func NewManager(store sessionStore, refreshTTL, accessTTL time.Duration) (*Manager, error) {
	if store == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if refreshTTL <= 0 {
		return nil, fmt.Errorf("refresh ttl must be positive")
	}
	if refreshTTL <= accessTTL {
		return nil, fmt.Errorf("refresh ttl must exceed access ttl")
	}
	return &Manager{
		store: store,
		keyer: redis.AccessSessionKey,
		ttl:   refreshTTL,
	}, nil
}

// NewAccessID returns a fresh opaque session identifier.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate stores a new refresh token for the session and returns it.
func (m *Manager) Generate(ctx context.Context, adminID int64, accessID string) (string, error) {
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Set(ctx, m.keyer(adminID, accessID), token, m.ttl); err != nil {
		return "", fmt.Errorf("store refresh session: %w", err)
	}
	return token, nil
}

// Rotate validates the presented refresh token against the stored session,
// revokes the old session and returns a replacement access id and token.
func (m *Manager) Rotate(ctx context.Context, adminID int64, accessID, presented string) (string, string, error) {
	stored, err := m.store.Get(ctx, m.keyer(adminID, accessID))
	if err != nil {
		if redis.IsNil(err) {
			return "", "", ErrInvalidRefreshToken
		}
		return "", "", fmt.Errorf("load refresh session: %w", err)
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	if err := m.store.Del(ctx, m.keyer(adminID, accessID)); err != nil {
		return "", "", fmt.Errorf("revoke refresh session: %w", err)
	}

	nextAccessID := NewAccessID()
	nextToken, err := m.Generate(ctx, adminID, nextAccessID)
	if err != nil {
		return "", "", err
	}
	return nextAccessID, nextToken, nil
}

// Revoke removes the session, invalidating its refresh token.
func (m *Manager) Revoke(ctx context.Context, adminID int64, accessID string) error {
	if err := m.store.Del(ctx, m.keyer(adminID, accessID)); err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

// HasSession reports whether an active session exists for the access id.
func (m *Manager) HasSession(ctx context.Context, adminID int64, accessID string) (bool, error) {
	_, err := m.store.Get(ctx, m.keyer(adminID, accessID))
	if err != nil {
		if redis.IsNil(err) {
			return false, nil
		}
		return false, fmt.Errorf("load refresh session: %w", err)
	}
	return true, nil
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
