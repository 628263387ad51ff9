package cache

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/andresuchdata/inventory-optimizer/internal/config"
)

const (
	defaultSessionTTL = 24 * time.Hour
	redisPingTimeout  = 5 * time.Second
)

type redisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// newRedisSessionStore connects to redis and fails fast when the server does
// not answer a ping.
func newRedisSessionStore(cfg config.CacheConfig) (*redisSessionStore, error) {
	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s failed: %w", opts.Addr, err)
	}

	ttl := time.Duration(cfg.SessionTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &redisSessionStore{client: client, ttl: ttl}, nil
}

// redisOptions prefers REDIS_URL and otherwise assembles host, port and
// credentials, defaulting to a local server.
func redisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:     net.JoinHostPort(cmp.Or(cfg.RedisHost, "127.0.0.1"), cmp.Or(cfg.RedisPort, "6379")),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (*Session, bool, error) {
	if id == "" {
		return nil, false, ErrEmptySessionID
	}

	payload, err := s.client.Get(ctx, buildSessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	session, err := decodeSession(payload)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

func (s *redisSessionStore) Save(ctx context.Context, id string, session *Session) error {
	if id == "" {
		return ErrEmptySessionID
	}

	payload, err := encodeSession(session)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, buildSessionKey(id), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, buildSessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (s *redisSessionStore) Close() error {
	return s.client.Close()
}

func encodeSession(session *Session) ([]byte, error) {
	payload, err := msgpack.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return payload, nil
}

func decodeSession(payload []byte) (*Session, error) {
	var session Session
	if err := msgpack.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}
