package state

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultStoreKeyPrefix = "concierge:session:"
	defaultStoreTTL       = 24 * time.Hour
)

// Store is the persistence contract used by the conversation service.
type Store interface {
	Load(ctx context.Context, sessionID string) (*DialogueSession, error)
	Save(ctx context.Context, st *DialogueSession) error
	Delete(ctx context.Context, sessionID string) error
}

type Driver string

const (
	DriverMemory  Driver = "memory"
	DriverRedis   Driver = "redis"
	DriverUpstash Driver = "upstash"
)

// Config is read with the SESSION prefix.
type Config struct {
	Driver    Driver        `default:"redis" validate:"oneof=memory redis upstash"`
	KeyPrefix string        `split_words:"true" default:"concierge:session:"`
	TTL       time.Duration `envconfig:"TTL" default:"24h"`
}

// StoreOption customizes the redis-backed stores.
type StoreOption func(*storeOptions)

type storeOptions struct {
	keyPrefix   string
	ttl         time.Duration
	httpClient  *http.Client
	redisClient redis.UniversalClient
	upstash     *UpstashRedisConfig
}

func WithKeyPrefix(prefix string) StoreOption {
	return func(o *storeOptions) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			o.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) StoreOption {
	return func(o *storeOptions) {
		o.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) StoreOption {
	return func(o *storeOptions) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func WithRedisClient(client redis.UniversalClient) StoreOption {
	return func(o *storeOptions) {
		o.redisClient = client
	}
}

func WithUpstash(cfg UpstashRedisConfig) StoreOption {
	return func(o *storeOptions) {
		o.upstash = &cfg
	}
}

func applyOptions(opts []StoreOption) (*storeOptions, error) {
	o := &storeOptions{
		keyPrefix: defaultStoreKeyPrefix,
		ttl:       defaultStoreTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return o, nil
}

// NewStore builds the store for driver. The redis driver needs WithRedisClient
// and the upstash driver needs WithUpstash.
func NewStore(driver Driver, opts ...StoreOption) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverRedis:
		o, err := applyOptions(opts)
		if err != nil {
			return nil, err
		}
		if o.redisClient == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		return NewRedisStore(o.redisClient, opts...)
	case DriverUpstash:
		o, err := applyOptions(opts)
		if err != nil {
			return nil, err
		}
		if o.upstash == nil {
			return nil, errors.New("upstash session store requires upstash config")
		}
		return NewUpstashRedisStore(*o.upstash, opts...)
	default:
		return nil, fmt.Errorf("unknown session driver %q", driver)
	}
}

func storeKey(prefix, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidSession
	}
	return strings.TrimSpace(prefix) + sessionID, nil
}
