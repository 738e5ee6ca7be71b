package config

import (
	"fmt"
	"time"

	"executor-resolver-sol/internal/driver"
	"executor-resolver-sol/internal/mq"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/runtime"
)

type LogConfig struct {
	// 日志格式，支持 "console" 或 "json"
	Format string `json:"format,default=console" yaml:"format"`
	// 日志目录（可为相对路径或绝对路径），为空时只输出到 stderr
	LogDir string `json:"log_dir,optional" yaml:"log_dir"`
	// 日志级别：debug / info / warn / error
	Level    string `json:"level,default=info" yaml:"level"`
	Compress bool   `json:"compress,optional" yaml:"compress"`
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// RpcConfig Solana JSON-RPC 账户来源；Endpoint 为空时只使用 Redis/内存中的账户
type RpcConfig struct {
	Endpoint  string `json:"endpoint,optional" yaml:"endpoint"`
	TimeoutMs int    `json:"timeout_ms,default=5000" yaml:"timeout_ms"`
	Workers   int    `json:"workers,optional" yaml:"workers"`
}

func (c *RpcConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// RedisConfig Addr 为空时使用进程内存储
type RedisConfig struct {
	Addr          string `json:"addr,optional" yaml:"addr"`
	Password      string `json:"password,optional" yaml:"password"`
	DB            int    `json:"db,optional" yaml:"db"`
	AccountTTLSec int    `json:"account_ttl_sec,optional" yaml:"account_ttl_sec"`
}

func (c *RedisConfig) AccountTTL() time.Duration {
	return time.Duration(c.AccountTTLSec) * time.Second
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	// Kafka broker 地址，多个用英文逗号分隔
	Brokers          string `json:"brokers" yaml:"brokers"`
	BatchSize        int    `json:"batch_size,optional" yaml:"batch_size"`
	LingerMs         int    `json:"linger_ms,default=5" yaml:"linger_ms"`
	ResultTopic      string `json:"result_topic,default=executor_resolver_result" yaml:"result_topic"`
	ResultPartitions int    `json:"result_partitions,default=8" yaml:"result_partitions"`
	// 单条结果发送并等待 ack 的超时时间
	SendTimeoutMs int `json:"send_timeout_ms,default=5000" yaml:"send_timeout_ms"`
}

func (c *KafkaProducerConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		Topics:    []mq.TopicSpec{{Topic: c.ResultTopic, Partitions: c.ResultPartitions}},
	}
}

func (c *KafkaProducerConfig) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutMs) * time.Millisecond
}

type KafkaConsumerConfig struct {
	Brokers         string `json:"brokers" yaml:"brokers"`
	GroupID         string `json:"group_id,default=executor-resolver" yaml:"group_id"`
	RequestTopic    string `json:"request_topic,default=executor_resolver_request" yaml:"request_topic"`
	AutoOffsetReset string `json:"auto_offset_reset,default=latest,options=earliest|latest" yaml:"auto_offset_reset"`
}

func (c *KafkaConsumerConfig) ToKafkaOption() mq.KafkaConsumerOption {
	return mq.KafkaConsumerOption{
		Brokers:         c.Brokers,
		GroupID:         c.GroupID,
		Topics:          []string{c.RequestTopic},
		AutoOffsetReset: c.AutoOffsetReset,
	}
}

// ResolverConfig 解析循环
type ResolverConfig struct {
	// 真实 payer（base58），替换 payer 占位符
	Payer     string `json:"payer" yaml:"payer"`
	MaxRounds int    `json:"max_rounds,default=16" yaml:"max_rounds"`
	// 是否把每轮修改的账户写回存储
	Commit bool `json:"commit,optional" yaml:"commit"`
	// 启动时写入示例程序账户（本地联调）
	SeedExamples bool   `json:"seed_examples,optional" yaml:"seed_examples"`
	RecentSlot   uint64 `json:"recent_slot,default=1" yaml:"recent_slot"`
	TimeoutMs    int    `json:"timeout_ms,default=30000" yaml:"timeout_ms"`
}

func (c *ResolverConfig) ToDriverOptions() (driver.Options, error) {
	payer, err := types.TryPubkeyFromBase58(c.Payer)
	if err != nil {
		return driver.Options{}, fmt.Errorf("invalid resolver.payer %q: %w", c.Payer, err)
	}
	return driver.Options{Payer: payer, MaxRounds: c.MaxRounds, Commit: c.Commit}, nil
}

func (c *ResolverConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

type RentConfig struct {
	LamportsPerByteYear uint64  `json:"lamports_per_byte_year,default=3480" yaml:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `json:"exemption_threshold,default=2" yaml:"exemption_threshold"`
}

func (c *RentConfig) ToRent() runtime.Rent {
	return runtime.Rent{LamportsPerByteYear: c.LamportsPerByteYear, ExemptionThreshold: c.ExemptionThreshold}
}

// RelayerConfig 是主配置结构体，用于驱动解析服务
type RelayerConfig struct {
	LogConf           LogConfig           `json:"logger,optional" yaml:"logger"`
	RpcConf           RpcConfig           `json:"rpc,optional" yaml:"rpc"`
	RedisConf         RedisConfig         `json:"redis,optional" yaml:"redis"`
	KafkaProducerConf KafkaProducerConfig `json:"kafka_producer" yaml:"kafka_producer"`
	KafkaConsumerConf KafkaConsumerConfig `json:"kafka_consumer" yaml:"kafka_consumer"`
	ResolverConf      ResolverConfig      `json:"resolver" yaml:"resolver"`
	RentConf          RentConfig          `json:"rent,optional" yaml:"rent"`
}
