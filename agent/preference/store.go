package preference

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrRecordNotFound   = errors.New("preference record not found")
	ErrIncompleteRecord = errors.New("preference record is incomplete")
	ErrInvalidSession   = errors.New("session id is empty")
)

const defaultKeyPrefix = "concierge:preferences:"

// Config is read with the PREFERENCE prefix. A zero TTL keeps records forever.
type Config struct {
	KeyPrefix string        `split_words:"true" default:"concierge:preferences:"`
	TTL       time.Duration `envconfig:"TTL" default:"0"`
}

type Option func(*RedisStore)

func WithKeyPrefix(prefix string) Option {
	return func(s *RedisStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) Option {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

// RedisStore keeps one hash per session, one field per slot.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client redis.UniversalClient, opts ...Option) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	s := &RedisStore{
		client:    client,
		keyPrefix: defaultKeyPrefix,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return s, nil
}

// Get returns ErrRecordNotFound for a missing or partially written hash.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (Record, error) {
	key, err := s.key(sessionID)
	if err != nil {
		return Record{}, err
	}
	hash, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return Record{}, fmt.Errorf("read preferences: %w", err)
	}
	if len(hash) == 0 {
		return Record{}, ErrRecordNotFound
	}
	rec := recordFromHash(hash)
	if !rec.Complete() {
		return Record{}, ErrRecordNotFound
	}
	return rec, nil
}

// Put replaces the stored record.
func (s *RedisStore) Put(ctx context.Context, sessionID string, rec Record) error {
	key, err := s.key(sessionID)
	if err != nil {
		return err
	}
	if !rec.Complete() {
		return ErrIncompleteRecord
	}
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, hashArgs(rec)...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}

// Update overwrites the record field by field without deleting the hash first.
func (s *RedisStore) Update(ctx context.Context, sessionID string, rec Record) error {
	key, err := s.key(sessionID)
	if err != nil {
		return err
	}
	if !rec.Complete() {
		return ErrIncompleteRecord
	}
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, hashArgs(rec)...)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	return nil
}

func (s *RedisStore) key(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return s.keyPrefix + sessionID, nil
}

func hashArgs(rec Record) []any {
	fields := rec.fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([]any, 0, len(names)*2)
	for _, name := range names {
		args = append(args, name, fields[name])
	}
	return args
}
