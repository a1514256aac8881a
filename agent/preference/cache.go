package preference

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
)

type Backend interface {
	Get(ctx context.Context, sessionID string) (Record, error)
	Put(ctx context.Context, sessionID string, rec Record) error
	Update(ctx context.Context, sessionID string, rec Record) error
}

// Cache turns backend read failures into misses so an unavailable store never
// blocks a reservation.
type Cache struct {
	backend Backend
}

func NewCache(backend Backend) *Cache {
	return &Cache{backend: backend}
}

func (c *Cache) Get(ctx context.Context, sessionID string) (Record, bool) {
	if c == nil || c.backend == nil {
		return Record{}, false
	}
	rec, err := c.backend.Get(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, ErrRecordNotFound) {
			log.Ctx(ctx).Warn().Err(err).Str("session_id", sessionID).Msg("preference lookup failed, treating as miss")
		}
		return Record{}, false
	}
	return rec, true
}

func (c *Cache) Put(ctx context.Context, sessionID string, rec Record) error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.Put(ctx, sessionID, rec)
}

func (c *Cache) Update(ctx context.Context, sessionID string, rec Record) error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.Update(ctx, sessionID, rec)
}
