package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config is read with the REDIS prefix.
type Config struct {
	Addr        string        `split_words:"true" default:"localhost:6379"`
	Password    string        `split_words:"true"`
	DB          int           `envconfig:"DB" default:"0"`
	DialTimeout time.Duration `split_words:"true" default:"5s"`
}

func NewClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})
}

// Ping fails fast when the server is unreachable at startup.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
