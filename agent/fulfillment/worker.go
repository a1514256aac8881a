package fulfillment

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	catalogx "github.com/rayadhanush/Dining-concierge-bot/agent/catalog"
	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	notifyx "github.com/rayadhanush/Dining-concierge-bot/agent/notify"
	searchx "github.com/rayadhanush/Dining-concierge-bot/agent/search"
)

type Searcher interface {
	Search(ctx context.Context, cuisine string) ([]searchx.Hit, error)
}

type Catalog interface {
	Get(ctx context.Context, id string) (catalogx.Restaurant, error)
}

type Mailer interface {
	Send(ctx context.Context, email notifyx.Email) error
}

// Worker turns one fulfillment request into exactly one email attempt.
type Worker struct {
	searcher Searcher
	catalog  Catalog
	mailer   Mailer
}

func New(searcher Searcher, catalog Catalog, mailer Mailer) (*Worker, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if mailer == nil {
		return nil, errors.New("mailer is required")
	}
	return &Worker{searcher: searcher, catalog: catalog, mailer: mailer}, nil
}

// Handle returns nil once an email has been attempted, so the transport
// acknowledges the message even when search or delivery failed. It only
// returns an error when ctx ends before any email was attempted.
func (w *Worker) Handle(ctx context.Context, req contractx.FulfillmentRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := log.Ctx(ctx).With().
		Str("cuisine", req.CuisineType).
		Str("location", req.Location).
		Logger()

	suggestions := w.suggest(ctx, req)
	if err := ctx.Err(); err != nil {
		return err
	}

	var email notifyx.Email
	if len(suggestions) == 0 {
		logger.Info().Msg("no restaurants resolved, sending failure email")
		email = notifyx.FailureEmail(req)
	} else {
		logger.Info().Int("count", len(suggestions)).Msg("sending suggestions")
		email = notifyx.SuggestionEmail(req, suggestions)
	}

	if err := w.mailer.Send(ctx, email); err != nil {
		logger.Error().Err(err).Str("subject", email.Subject).Msg("email dispatch failed")
	}
	return nil
}

func (w *Worker) suggest(ctx context.Context, req contractx.FulfillmentRequest) []notifyx.Suggestion {
	hits, err := w.searcher.Search(ctx, req.CuisineType)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("cuisine", req.CuisineType).Msg("restaurant search failed")
		return nil
	}

	suggestions := make([]notifyx.Suggestion, 0, len(hits))
	for _, hit := range hits {
		r, err := w.catalog.Get(ctx, hit.ID)
		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("restaurant_id", hit.ID).Msg("skipping unresolved restaurant")
			continue
		}
		suggestions = append(suggestions, notifyx.Suggestion{
			Name:    r.Name,
			Cuisine: r.Cuisine,
			Address: r.Address,
		})
	}
	return suggestions
}
