// Package redis provides Redis-backed session storage, state storage and a
// distributed locker, for running several kernel replicas against one game.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/aretw0/gambit/pkg/codec"
	"github.com/aretw0/gambit/pkg/domain"
	"github.com/aretw0/gambit/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by this package.
const DefaultPrefix = "gambit:"

// Store implements ports.SessionStore on Redis.
//
// Each session is a string key holding its JSON encoding. A sorted set
// (prefix + "index") scores session ids by expiry so List does not need SCAN.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var _ ports.SessionStore = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithTTL expires sessions that were not saved again within ttl.
// Zero keeps sessions until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides time.Now for index scores.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New connects to a Redis server and returns a Store.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id string) string { return s.prefix + id }
func (s *Store) index() string        { return s.prefix + "index" }

// Save writes the session and refreshes its expiry.
func (s *Store) Save(ctx context.Context, session *domain.SessionContext) error {
	data, err := codec.EncodeSession(session)
	if err != nil {
		return err
	}

	score := float64(1<<53 - 1)
	if s.ttl > 0 {
		score = float64(s.now().Add(s.ttl).UnixMilli())
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.key(session.SessionID), data, s.ttl)
		pipe.ZAdd(ctx, s.index(), backend.Z{Score: score, Member: session.SessionID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session %s: %w", session.SessionID, err)
	}
	return nil
}

// Load reads a session.
func (s *Store) Load(ctx context.Context, sessionID string) (*domain.SessionContext, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, backend.Nil) {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis load session %s: %w", sessionID, err)
	}
	return codec.DecodeSession(data)
}

// Delete removes a session and its index entry.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.key(sessionID))
		pipe.ZRem(ctx, s.index(), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete session %s: %w", sessionID, err)
	}
	return nil
}

// List prunes expired index entries and returns the remaining ids, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := strconv.FormatInt(s.now().UnixMilli(), 10)
	if err := s.client.ZRemRangeByScore(ctx, s.index(), "-inf", "("+now).Err(); err != nil {
		return nil, fmt.Errorf("redis prune index: %w", err)
	}
	ids, err := s.client.ZRange(ctx, s.index(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list sessions: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Client returns the underlying client, for sharing with a Locker or Repository.
func (s *Store) Client() *backend.Client {
	return s.client
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
