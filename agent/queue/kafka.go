package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	contractx "github.com/rayadhanush/Dining-concierge-bot/agent/contract"
)

const typeHeaderSuffix = ".type"

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewKafkaWriter(cfg KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		RequiredAcks:           kafka.RequireOne,
		Balancer:               &kafka.LeastBytes{},
		BatchTimeout:           5 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaReader(cfg KafkaConfig, wait time.Duration) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.Group,
		Topic:       cfg.Topic,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		MaxWait:     wait,
		StartOffset: kafka.FirstOffset,
	})
}

// KafkaSubmitter publishes the body as the value and each attribute as a
// header pair.
type KafkaSubmitter struct {
	writer MessageWriter
}

func NewKafkaSubmitter(writer MessageWriter) (*KafkaSubmitter, error) {
	if writer == nil {
		return nil, errors.New("kafka writer is required")
	}
	return &KafkaSubmitter{writer: writer}, nil
}

func (s *KafkaSubmitter) Submit(ctx context.Context, req contractx.FulfillmentRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := s.writer.WriteMessages(ctx, EncodeKafka(NewMessage(req))); err != nil {
		return fmt.Errorf("publish fulfillment request: %w", err)
	}
	return nil
}

func EncodeKafka(msg Message) kafka.Message {
	headers := make([]kafka.Header, 0, len(msg.Attributes)*2)
	for name, attr := range msg.Attributes {
		headers = append(headers,
			kafka.Header{Key: name, Value: []byte(attr.StringValue)},
			kafka.Header{Key: name + typeHeaderSuffix, Value: []byte(attr.DataType)},
		)
	}
	return kafka.Message{
		Key:     []byte(msg.Attributes["Email"].StringValue),
		Value:   []byte(msg.Body),
		Headers: headers,
	}
}

func DecodeKafka(m kafka.Message) Message {
	msg := Message{
		Body:       string(m.Value),
		Attributes: map[string]Attribute{},
	}
	types := map[string]string{}
	for _, h := range m.Headers {
		if name, ok := strings.CutSuffix(h.Key, typeHeaderSuffix); ok {
			types[name] = string(h.Value)
			continue
		}
		attr := msg.Attributes[h.Key]
		attr.StringValue = string(h.Value)
		msg.Attributes[h.Key] = attr
	}
	for name, dataType := range types {
		if attr, ok := msg.Attributes[name]; ok {
			attr.DataType = dataType
			msg.Attributes[name] = attr
		}
	}
	return msg
}

// KafkaConsumer commits each message after the handler accepts it.
type KafkaConsumer struct {
	reader  MessageReader
	handler Handler
}

func NewKafkaConsumer(reader MessageReader, handler Handler) *KafkaConsumer {
	return &KafkaConsumer{reader: reader, handler: handler}
}

// Run blocks until ctx is cancelled. Undecodable messages are committed so
// they never block the partition; handler failures leave the offset
// uncommitted for redelivery after a rebalance.
func (c *KafkaConsumer) Run(ctx context.Context) error {
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Ctx(ctx).Error().Err(err).Msg("fetch fulfillment message failed")
			continue
		}

		if !c.handle(ctx, m) {
			continue
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			log.Ctx(ctx).Error().Err(err).Int64("offset", m.Offset).Msg("commit fulfillment message failed")
		}
	}
}

func (c *KafkaConsumer) handle(ctx context.Context, m kafka.Message) bool {
	msg := DecodeKafka(m)
	req, err := msg.Request()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("offset", m.Offset).Msg("invalid fulfillment message")
		return true
	}
	if err := c.handler.Handle(ctx, req); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("offset", m.Offset).Msg("fulfillment handler failed")
		return false
	}
	return true
}
