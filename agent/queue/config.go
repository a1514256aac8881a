package queue

import (
	"context"
	"time"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

type Driver string

const (
	DriverAsynq  Driver = "asynq"
	DriverKafka  Driver = "kafka"
	DriverQStash Driver = "qstash"
)

// Config is read with the QUEUE prefix. Concurrency is how many messages one
// worker handles at a time.
type Config struct {
	Driver      Driver        `default:"asynq" validate:"oneof=asynq kafka qstash"`
	Name        string        `default:"dining"`
	Concurrency int           `default:"5" validate:"min=1"`
	ReceiveWait time.Duration `split_words:"true" default:"20s"`
}

// KafkaConfig is read with the KAFKA prefix.
type KafkaConfig struct {
	Brokers []string `default:"localhost:9092"`
	Topic   string   `default:"dining-requests"`
	Group   string   `default:"dining-fulfiller"`
}

// Handler processes one decoded fulfillment request. A nil return
// acknowledges the message.
type Handler interface {
	Handle(ctx context.Context, req contractx.FulfillmentRequest) error
}

type HandlerFunc func(ctx context.Context, req contractx.FulfillmentRequest) error

func (f HandlerFunc) Handle(ctx context.Context, req contractx.FulfillmentRequest) error {
	return f(ctx, req)
}
