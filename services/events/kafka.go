package eventsvc

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/skillx/skillx/core"
)

const (
	writeTimeout = 5 * time.Second
	// Publish writes synchronously; kafka-go otherwise holds a partial batch for 1s.
	batchTimeout = 10 * time.Millisecond
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a single topic, keyed by Event.Key.
type KafkaPublisher struct {
	writer messageWriter
}

var _ core.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(conf *core.Config) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(conf.Kafka.Brokers...),
		Topic:        conf.Kafka.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: writeTimeout,
		BatchTimeout: batchTimeout,
		Async:        false,
	}
	if conf.Kafka.Username != "" {
		w.Transport = &kafka.Transport{
			SASL: plain.Mechanism{Username: conf.Kafka.Username, Password: conf.Kafka.Password},
			TLS:  &tls.Config{MinVersion: tls.VersionTLS12},
		}
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...core.Event) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, evt := range events {
		value, err := json.Marshal(evt)
		if err != nil {
			return errors.Wrap(err, "encoding "+evt.Type+" event")
		}
		msgs = append(msgs, kafka.Message{
			Key:     []byte(evt.Key),
			Value:   value,
			Time:    evt.OccurredAt,
			Headers: []kafka.Header{{Key: "type", Value: []byte(evt.Type)}},
		})
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return errors.Wrap(p.writer.WriteMessages(ctx, msgs...), "writing kafka messages")
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
