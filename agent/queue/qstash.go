package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	qstashx "github.com/rayadhanush/Dining-concierge-bot/pkg/qstash"
)

const maxQStashBodyBytes = 1 << 20

type Publisher interface {
	Publish(ctx context.Context, destination string, body []byte, headers map[string]string) (string, error)
}

type SignatureVerifier interface {
	Verify(signature string, body []byte, destination string) error
}

// QStashSubmitter publishes fulfillment requests through QStash, which then
// pushes them to the fulfiller over HTTP.
type QStashSubmitter struct {
	publisher   Publisher
	destination string
}

func NewQStashSubmitter(publisher Publisher, destination string) (*QStashSubmitter, error) {
	if publisher == nil {
		return nil, errors.New("qstash publisher is required")
	}
	if destination == "" {
		return nil, errors.New("qstash destination is required")
	}
	return &QStashSubmitter{publisher: publisher, destination: destination}, nil
}

func (s *QStashSubmitter) Submit(ctx context.Context, req contractx.FulfillmentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(NewMessage(req))
	if err != nil {
		return fmt.Errorf("marshal fulfillment message: %w", err)
	}
	id, err := s.publisher.Publish(ctx, s.destination, body, map[string]string{"Task-Type": TaskTypeFulfill})
	if err != nil {
		return fmt.Errorf("publish %s: %w", TaskTypeFulfill, err)
	}
	log.Ctx(ctx).Info().
		Str("message_id", id).
		Str("cuisine", req.CuisineType).
		Msg("fulfillment request published")
	return nil
}

// NewQStashHandler serves QStash deliveries. A 2xx reply acknowledges the
// message, a 5xx asks QStash to retry, and malformed messages are rejected as
// non-retryable.
func NewQStashHandler(verifier SignatureVerifier, destination string, h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		body, err := io.ReadAll(io.LimitReader(r.Body, maxQStashBodyBytes))
		if err != nil {
			http.Error(w, "read body failed", http.StatusBadRequest)
			return
		}
		if err := verifier.Verify(r.Header.Get(qstashx.SignatureHeader), body, destination); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("rejected qstash delivery")
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}

		var msg Message
		if err := json.Unmarshal(body, &msg); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("undecodable fulfillment delivery")
			nonRetryable(w)
			return
		}
		req, err := msg.Request()
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("body", msg.Body).Msg("invalid fulfillment delivery")
			nonRetryable(w)
			return
		}

		if err := h.Handle(ctx, req); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("fulfillment handler failed")
			http.Error(w, "handler failed", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func nonRetryable(w http.ResponseWriter) {
	w.Header().Set(qstashx.NonRetryableHeader, "true")
	w.WriteHeader(qstashx.StatusNonRetryable)
}
