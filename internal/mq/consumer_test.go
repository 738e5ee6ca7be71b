package mq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConsumer 按顺序吐出消息，Seek 把消息放回队首；队列读空后取消 ctx
type fakeConsumer struct {
	log       []*kafka.Message
	queue     []*kafka.Message
	committed []kafka.Offset
	seeks     []kafka.Offset
	cancel    context.CancelFunc
}

func (c *fakeConsumer) ReadMessage(time.Duration) (*kafka.Message, error) {
	if len(c.queue) == 0 {
		c.cancel()
		return nil, kafka.NewError(kafka.ErrTimedOut, "timed out", false)
	}
	msg := c.queue[0]
	c.queue = c.queue[1:]
	return msg, nil
}

func (c *fakeConsumer) CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error) {
	c.committed = append(c.committed, m.TopicPartition.Offset)
	return nil, nil
}

func (c *fakeConsumer) Seek(tp kafka.TopicPartition, _ int) error {
	c.seeks = append(c.seeks, tp.Offset)
	for _, m := range c.log {
		if m.TopicPartition.Offset == tp.Offset {
			c.queue = append([]*kafka.Message{m}, c.queue...)
			return nil
		}
	}
	return errors.New("unknown offset")
}

func newFakeConsumer(cancel context.CancelFunc, log ...*kafka.Message) *fakeConsumer {
	return &fakeConsumer{log: log, queue: append([]*kafka.Message(nil), log...), cancel: cancel}
}

func testMessage(offset kafka.Offset) *kafka.Message {
	topic := "resolve-request"
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: 0, Offset: offset},
		Value:          []byte{byte(offset)},
	}
}

func TestConsumeRetriesTransientFailures(t *testing.T) {
	backoff := RetryBackoff
	RetryBackoff = time.Millisecond
	defer func() { RetryBackoff = backoff }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := newFakeConsumer(cancel, testMessage(10), testMessage(11), testMessage(12))

	calls := make(map[kafka.Offset]int)
	err := Consume(ctx, c, func(_ context.Context, msg *kafka.Message) error {
		off := msg.TopicPartition.Offset
		calls[off]++
		switch {
		case off == 10 && calls[off] < 3:
			return errors.New("redis unavailable")
		case off == 11:
			return Permanent(ErrUnexpectedEvent)
		}
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)

	assert.Equal(t, 3, calls[10], "暂时失败的消息重新处理直到成功")
	assert.Equal(t, 1, calls[11], "不可重试的消息只处理一次")
	assert.Equal(t, 1, calls[12])
	assert.Equal(t, []kafka.Offset{10, 10}, c.seeks)
	assert.Equal(t, []kafka.Offset{10, 11, 12}, c.committed)
}

func TestConsumeStopsOnCancelDuringFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := newFakeConsumer(cancel, testMessage(1))

	err := Consume(ctx, c, func(context.Context, *kafka.Message) error {
		cancel()
		return context.Canceled
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, c.committed)
	assert.Empty(t, c.seeks)
}

func TestPermanent(t *testing.T) {
	assert.NoError(t, Permanent(nil))
	err := Permanent(ErrUnexpectedEvent)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPermanent)
	assert.ErrorIs(t, err, ErrUnexpectedEvent)
}
