package mq

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"executor-resolver-sol/internal/pkg/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProducer 立即（或永不）回报投递结果
type fakeProducer struct {
	mu        sync.Mutex
	sent      []*kafka.Message
	failTopic string
	silent    bool
}

func (p *fakeProducer) Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error {
	p.mu.Lock()
	p.sent = append(p.sent, msg)
	p.mu.Unlock()

	if p.silent {
		return nil
	}
	if *msg.TopicPartition.Topic == p.failTopic {
		msg.TopicPartition.Error = errors.New("broker down")
	}
	deliveryChan <- msg
	return nil
}

func TestSendKafkaJobs(t *testing.T) {
	p := &fakeProducer{failTopic: "bad"}
	jobs := []*KafkaJob{
		{Topic: "good", Value: []byte("1")},
		{Topic: "bad", Value: []byte("2")},
		{Topic: "good", Value: []byte("3")},
	}
	ok, failed := SendKafkaJobs(context.Background(), p, jobs, time.Second)
	assert.Len(t, ok, 2)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].Job.Topic)
	assert.EqualError(t, failed[0].Err, "broker down")
}

func TestSendKafkaJobs_Empty(t *testing.T) {
	ok, failed := SendKafkaJobs(context.Background(), &fakeProducer{}, nil, time.Second)
	assert.Empty(t, ok)
	assert.Empty(t, failed)
}

func TestSendKafkaJobs_Timeout(t *testing.T) {
	p := &fakeProducer{silent: true}
	ok, failed := SendKafkaJobs(context.Background(), p, []*KafkaJob{{Topic: "t"}}, 5*time.Millisecond)
	assert.Empty(t, ok)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].Err.Error(), "delivery timeout")
}

func TestSendKafkaJobs_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, failed := SendKafkaJobs(ctx, &fakeProducer{silent: true}, []*KafkaJob{{Topic: "t"}}, time.Second)
	require.Len(t, failed, 1)
	assert.ErrorIs(t, failed[0].Err, context.Canceled)
}

func TestResultSender(t *testing.T) {
	p := &fakeProducer{}
	s := NewResultSender(p, "results", 8, time.Second)

	r := &ResolveResult{VaaHash: [32]byte{27: 0x0b}, Status: ResultResolved, Plan: []byte{0, 0, 0, 0, 0}}
	require.NoError(t, s.Send(context.Background(), r))
	require.Len(t, p.sent, 1)

	msg := p.sent[0]
	assert.Equal(t, "results", *msg.TopicPartition.Topic)
	assert.Equal(t, int32(utils.PartitionHashBytes(r.VaaHash[:], 8)), msg.TopicPartition.Partition)
	assert.Equal(t, r.VaaHash[:], msg.Key)

	var got ResolveResult
	require.NoError(t, DecodeEvent(msg.Value, EventResolveResult, &got))
	assert.Equal(t, *r, got)

	bad := NewResultSender(&fakeProducer{failTopic: "results"}, "results", 1, time.Second)
	assert.Error(t, bad.Send(context.Background(), r))
}
