package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	catalogx "github.com/rayadhanush/Dining-concierge-bot/agent/catalog"
	searchx "github.com/rayadhanush/Dining-concierge-bot/agent/search"
)

// Config is read with the INDEXER prefix. ImportFile is optional.
type Config struct {
	ImportFile string `split_words:"true"`
	PageSize   int    `split_words:"true" default:"500" validate:"min=1"`
}

type Catalog interface {
	CreateTable(ctx context.Context) error
	InsertIfAbsent(ctx context.Context, r *catalogx.Restaurant) (bool, error)
	Each(ctx context.Context, pageSize int, fn func(catalogx.Restaurant) error) error
}

type SearchIndex interface {
	EnsureIndex(ctx context.Context) error
	IndexRestaurant(ctx context.Context, doc searchx.Document) error
}

type Stats struct {
	Imported int
	Skipped  int
	Indexed  int
	Failed   int
}

// Loader fills the catalog and mirrors it into the search index.
type Loader struct {
	catalog  Catalog
	index    SearchIndex
	pageSize int
}

func NewLoader(catalog Catalog, index SearchIndex, pageSize int) (*Loader, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if index == nil {
		return nil, errors.New("search index is required")
	}
	if pageSize <= 0 {
		pageSize = 500
	}
	return &Loader{catalog: catalog, index: index, pageSize: pageSize}, nil
}

// Run prepares both stores, imports src when it is not nil, then indexes every
// catalog row. Failures on single rows are logged and counted.
func (l *Loader) Run(ctx context.Context, src io.Reader) (Stats, error) {
	var stats Stats

	if err := l.catalog.CreateTable(ctx); err != nil {
		return stats, err
	}
	if err := l.index.EnsureIndex(ctx); err != nil {
		return stats, err
	}

	if src != nil {
		rows, err := catalogx.DecodeImport(src)
		if err != nil {
			return stats, err
		}
		for i := range rows {
			inserted, err := l.catalog.InsertIfAbsent(ctx, &rows[i])
			switch {
			case err != nil:
				stats.Failed++
				log.Ctx(ctx).Warn().Err(err).Str("restaurant_id", rows[i].ID).Msg("catalog insert failed")
			case inserted:
				stats.Imported++
			default:
				stats.Skipped++
			}
		}
	}

	err := l.catalog.Each(ctx, l.pageSize, func(r catalogx.Restaurant) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc := searchx.Document{ID: r.ID, Cuisine: r.Cuisine, Name: r.Name}
		if err := l.index.IndexRestaurant(ctx, doc); err != nil {
			stats.Failed++
			log.Ctx(ctx).Warn().Err(err).Str("restaurant_id", r.ID).Msg("index restaurant failed")
			return nil
		}
		stats.Indexed++
		return nil
	})
	if err != nil {
		return stats, fmt.Errorf("walk catalog: %w", err)
	}

	log.Ctx(ctx).Info().
		Int("imported", stats.Imported).
		Int("skipped", stats.Skipped).
		Int("indexed", stats.Indexed).
		Int("failed", stats.Failed).
		Msg("index load finished")
	return stats, nil
}
