package eventsvc

import (
	"context"

	"github.com/skillx/skillx/core"
)

// LogPublisher logs events at debug level. Used when no broker is configured.
type LogPublisher struct {
	logger core.Logger
}

var _ core.EventPublisher = (*LogPublisher)(nil)

func NewLogPublisher(logger core.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, events ...core.Event) error {
	for _, evt := range events {
		p.logger.Debug("event "+evt.Type, map[string]interface{}{"key": evt.Key, "occurred_at": evt.OccurredAt})
	}
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Publisher is an EventPublisher that must be closed on shutdown.
type Publisher interface {
	core.EventPublisher
	Close() error
}

// New returns the kafka publisher when brokers are configured, the log publisher otherwise.
func New(conf *core.Config, logger core.Logger) Publisher {
	if conf.KafkaEnabled() {
		return NewKafkaPublisher(conf)
	}
	return NewLogPublisher(logger)
}
