package mq

import (
	"context"
	"errors"
	"fmt"
	"time"

	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/utils"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const defaultPollTimeout = 100 * time.Millisecond

type KafkaConsumerOption struct {
	Brokers         string
	GroupID         string
	Topics          []string
	AutoOffsetReset string // earliest / latest
}

// NewKafkaConsumer 创建并订阅请求 topic。offset 在消息处理完成后手动提交。
func NewKafkaConsumer(cfg KafkaConsumerOption) (*kafka.Consumer, error) {
	reset := cfg.AutoOffsetReset
	if reset == "" {
		reset = "latest"
	}
	localIP, _ := utils.GetLocalIP()
	if localIP == "" {
		localIP = "unknown"
	}

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":     cfg.Brokers,
		"group.id":              cfg.GroupID,
		"client.id":             fmt.Sprintf("executor-resolver-%s", localIP),
		"auto.offset.reset":     reset,
		"enable.auto.commit":    false,
		"session.timeout.ms":    10000,
		"heartbeat.interval.ms": 3000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	if err := consumer.SubscribeTopics(cfg.Topics, nil); err != nil {
		_ = consumer.Close()
		return nil, fmt.Errorf("failed to subscribe %v: %w", cfg.Topics, err)
	}
	return consumer, nil
}

// ErrPermanent 标记无法通过重试恢复的消息（解码失败等），这类消息直接提交 offset
var ErrPermanent = errors.New("permanent message failure")

// Permanent 把错误标记为不可重试
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// MessageHandler 处理一条消息。返回 nil 或 Permanent 错误时提交 offset；
// 其它错误视为暂时失败，回退到该消息的 offset 稍后重新处理
type MessageHandler func(ctx context.Context, msg *kafka.Message) error

// Consumer *kafka.Consumer 满足该接口
type Consumer interface {
	ReadMessage(timeout time.Duration) (*kafka.Message, error)
	CommitMessage(m *kafka.Message) ([]kafka.TopicPartition, error)
	Seek(partition kafka.TopicPartition, ignoredTimeoutMs int) error
}

// RetryBackoff 暂时失败后重新处理同一条消息前的等待时间
var RetryBackoff = time.Second

// Consume 循环拉取消息直到 ctx 结束
func Consume(ctx context.Context, consumer Consumer, handle MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		msg, err := consumer.ReadMessage(defaultPollTimeout)
		if err != nil {
			var kerr kafka.Error
			if errors.As(err, &kerr) && kerr.Code() == kafka.ErrTimedOut {
				continue
			}
			if errors.As(err, &kerr) && kerr.IsFatal() {
				return fmt.Errorf("kafka consumer fatal: %w", err)
			}
			logger.Warnf("[mq] 读取消息失败: %v", err)
			continue
		}

		err = handle(ctx, msg)
		if err != nil && !errors.Is(err, ErrPermanent) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warnf("[mq] 处理消息暂时失败，稍后重试: topic=%s partition=%d offset=%v err=%v",
				topicOf(msg), msg.TopicPartition.Partition, msg.TopicPartition.Offset, err)
			if err := consumer.Seek(msg.TopicPartition, 0); err != nil {
				return fmt.Errorf("seek back to %v: %w", msg.TopicPartition, err)
			}
			if err := sleepCtx(ctx, RetryBackoff); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			logger.Errorf("[mq] 丢弃无法处理的消息: topic=%s partition=%d offset=%v err=%v",
				topicOf(msg), msg.TopicPartition.Partition, msg.TopicPartition.Offset, err)
		}
		if _, err := consumer.CommitMessage(msg); err != nil {
			logger.Warnf("[mq] 提交 offset 失败: %v", err)
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func topicOf(msg *kafka.Message) string {
	if msg.TopicPartition.Topic == nil {
		return ""
	}
	return *msg.TopicPartition.Topic
}
