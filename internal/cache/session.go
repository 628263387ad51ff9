package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"time"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
	"github.com/andresuchdata/inventory-optimizer/internal/domain"
)

const sessionKeyPrefix = "session:"

var ErrEmptySessionID = errors.New("empty session id")

// Session is the dataset and configuration a user works on.
type Session struct {
	Items     []domain.InputItem       `msgpack:"items"`
	Config    domain.CalculationConfig `msgpack:"config"`
	FileName  string                   `msgpack:"file_name"`
	UpdatedAt time.Time                `msgpack:"updated_at"`
}

// HasData reports whether an upload has been stored.
func (s *Session) HasData() bool {
	return s != nil && len(s.Items) > 0
}

// SessionStore persists sessions keyed by an opaque id.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, bool, error)
	Save(ctx context.Context, id string, session *Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// NewSessionStore returns a redis-backed store when the cache is enabled and
// an in-memory one otherwise.
func NewSessionStore(cfg config.CacheConfig) (SessionStore, error) {
	ttl := time.Duration(cfg.SessionTTLSeconds) * time.Second
	if !cfg.Enabled {
		return NewMemorySessionStore(ttl), nil
	}

	store, err := newRedisSessionStore(cfg)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func buildSessionKey(id string) string {
	sum := sha1.Sum([]byte(id))
	return sessionKeyPrefix + hex.EncodeToString(sum[:])
}
