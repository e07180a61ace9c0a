package eventsvc

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillx/skillx/core"
)

type writerMock struct {
	msgs []kafka.Message
	err  error
}

func (w *writerMock) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("missing deadline")
	}
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *writerMock) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := new(writerMock)
	pub := &KafkaPublisher{writer: w}

	evt := core.NewEvent(core.EventSkillApproved, "s1", map[string]string{"title": "Go"})
	require.NoError(t, pub.Publish(context.Background(), evt))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "s1", string(msg.Key))
	assert.Equal(t, []kafka.Header{{Key: "type", Value: []byte(core.EventSkillApproved)}}, msg.Headers)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, core.EventSkillApproved, decoded["type"])
	assert.Equal(t, map[string]interface{}{"title": "Go"}, decoded["payload"])
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	pub := &KafkaPublisher{writer: &writerMock{err: errors.New("broker down")}}
	err := pub.Publish(context.Background(), core.NewEvent(core.EventVideoUploaded, "v1", nil))
	assert.EqualError(t, err, "writing kafka messages: broker down")
}

func TestNewKafkaPublisher(t *testing.T) {
	conf := core.NewTestConfig()
	conf.Kafka.Brokers = []string{"localhost:9092"}
	conf.Kafka.Topic = "skillx.events"

	pub := NewKafkaPublisher(conf)
	w, ok := pub.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "skillx.events", w.Topic)
	assert.Equal(t, batchTimeout, w.BatchTimeout)
	assert.Less(t, int64(w.BatchTimeout), int64(100*time.Millisecond))
	assert.False(t, w.Async)
	assert.Nil(t, w.Transport)
}

func TestNew(t *testing.T) {
	conf := core.NewTestConfig()
	_, ok := New(conf, nil).(*LogPublisher)
	assert.True(t, ok)

	conf.Kafka.Brokers = []string{"localhost:9092"}
	conf.Kafka.Topic = "skillx.events"
	_, ok = New(conf, nil).(*KafkaPublisher)
	assert.True(t, ok)
}
