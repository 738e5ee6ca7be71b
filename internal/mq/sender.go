package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaJob 表示一条需要发送的 Kafka 消息
type KafkaJob struct {
	Topic     string
	Partition int32
	Key       []byte
	Value     []byte
}

// KafkaSendResult 表示每条消息的发送结果
type KafkaSendResult struct {
	Job *KafkaJob
	Err error
}

// Producer SendKafkaJobs 依赖的生产者能力，*kafka.Producer 满足该接口
type Producer interface {
	Produce(msg *kafka.Message, deliveryChan chan kafka.Event) error
}

// SendKafkaJobs 并发发送多条 Kafka 消息，支持外部 context 控制超时/取消
func SendKafkaJobs(
	ctx context.Context,
	producer Producer,
	jobs []*KafkaJob,
	perMessageTimeout time.Duration,
) (ok []*KafkaJob, failed []KafkaSendResult) {
	var wg sync.WaitGroup
	resultCh := make(chan KafkaSendResult, len(jobs))

	for _, job := range jobs {
		wg.Add(1)
		go func(job *KafkaJob) {
			defer wg.Done()
			resultCh <- KafkaSendResult{Job: job, Err: sendOne(ctx, producer, job, perMessageTimeout)}
		}(job)
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	for res := range resultCh {
		if res.Err != nil {
			failed = append(failed, res)
		} else {
			ok = append(ok, res.Job)
		}
	}
	return ok, failed
}

func sendOne(ctx context.Context, producer Producer, job *KafkaJob, timeout time.Duration) error {
	deliveryChan := make(chan kafka.Event, 1)
	err := producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &job.Topic,
			Partition: job.Partition,
		},
		Key:   job.Key,
		Value: job.Value,
	}, deliveryChan)
	if err != nil {
		return fmt.Errorf("produce error: %w", err)
	}

	select {
	case e, ok := <-deliveryChan:
		if !ok {
			return errors.New("delivery channel closed unexpectedly")
		}
		msg, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("invalid message type: %T", e)
		}
		return msg.TopicPartition.Error
	case <-time.After(timeout):
		go safeDrain(deliveryChan)
		return fmt.Errorf("delivery timeout (>%v)", timeout)
	case <-ctx.Done():
		go safeDrain(deliveryChan)
		return fmt.Errorf("ctx cancelled: %w", ctx.Err())
	}
}

// safeDrain 确保 deliveryChan 被 drain，避免 Kafka 回调阻塞
func safeDrain(ch <-chan kafka.Event) {
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
	}
}

// ResultSender 把解析结果发送到结果 topic，同一 VAA 的结果落在同一分区
type ResultSender struct {
	producer   Producer
	topic      string
	partitions uint32
	timeout    time.Duration
}

func NewResultSender(producer Producer, topic string, partitions int, timeout time.Duration) *ResultSender {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ResultSender{producer: producer, topic: topic, partitions: uint32(max(partitions, 1)), timeout: timeout}
}

func (s *ResultSender) Send(ctx context.Context, results ...*ResolveResult) error {
	jobs := make([]*KafkaJob, 0, len(results))
	for _, r := range results {
		value, err := EncodeEvent(EventResolveResult, r)
		if err != nil {
			return err
		}
		jobs = append(jobs, &KafkaJob{
			Topic:     s.topic,
			Partition: int32(utils.PartitionHashBytes(r.VaaHash[:], s.partitions)),
			Key:       append([]byte{}, r.VaaHash[:]...),
			Value:     value,
		})
	}

	_, failed := SendKafkaJobs(ctx, s.producer, jobs, s.timeout)
	if len(failed) == 0 {
		return nil
	}
	errs := make([]error, 0, len(failed))
	for _, f := range failed {
		errs = append(errs, f.Err)
	}
	logger.Errorf("[mq] 发送解析结果失败: %d/%d", len(failed), len(jobs))
	return fmt.Errorf("send %d results: %w", len(failed), errors.Join(errs...))
}
