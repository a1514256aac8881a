package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
	"github.com/rayadhanush/Dining-concierge-bot/pkg/redisx"
)

const TaskTypeFulfill = "dining:fulfill"

type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func RedisClientOpt(cfg redisx.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	}
}

// AsynqSubmitter enqueues fulfillment requests as asynq tasks.
type AsynqSubmitter struct {
	client Enqueuer
	queue  string
}

func NewAsynqSubmitter(client Enqueuer, queue string) (*AsynqSubmitter, error) {
	if client == nil {
		return nil, errors.New("asynq client is required")
	}
	if queue == "" {
		queue = "default"
	}
	return &AsynqSubmitter{client: client, queue: queue}, nil
}

func (s *AsynqSubmitter) Submit(ctx context.Context, req contractx.FulfillmentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	task, err := NewFulfillTask(req)
	if err != nil {
		return err
	}
	info, err := s.client.EnqueueContext(ctx, task, asynq.Queue(s.queue))
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TaskTypeFulfill, err)
	}
	log.Ctx(ctx).Info().
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Str("cuisine", req.CuisineType).
		Msg("fulfillment request enqueued")
	return nil
}

func NewFulfillTask(req contractx.FulfillmentRequest) (*asynq.Task, error) {
	payload, err := json.Marshal(NewMessage(req))
	if err != nil {
		return nil, fmt.Errorf("marshal fulfillment message: %w", err)
	}
	return asynq.NewTask(TaskTypeFulfill, payload), nil
}

// NewAsynqMux routes fulfillment tasks to h. Payloads that cannot be decoded
// are archived instead of retried.
func NewAsynqMux(h Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeFulfill, func(ctx context.Context, t *asynq.Task) error {
		var msg Message
		if err := json.Unmarshal(t.Payload(), &msg); err != nil {
			log.Ctx(ctx).Error().Err(err).Msg("undecodable fulfillment task")
			return fmt.Errorf("decode task: %v: %w", err, asynq.SkipRetry)
		}
		req, err := msg.Request()
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("body", msg.Body).Msg("invalid fulfillment task")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return h.Handle(ctx, req)
	})
	return mux
}

func NewAsynqServer(opt asynq.RedisClientOpt, cfg Config) *asynq.Server {
	return asynq.NewServer(opt, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Name: 1},
		Logger:      asynqLogger{},
	})
}

// asynqLogger forwards asynq's own logs to zerolog.
type asynqLogger struct{}

func (asynqLogger) Debug(args ...any) { log.Debug().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Info(args ...any)  { log.Info().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Warn(args ...any)  { log.Warn().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Error(args ...any) { log.Error().Msg(fmt.Sprint(args...)) }
func (asynqLogger) Fatal(args ...any) { log.Fatal().Msg(fmt.Sprint(args...)) }
