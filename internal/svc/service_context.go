package svc

import (
	"context"
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/config"
	"executor-resolver-sol/internal/driver"
	"executor-resolver-sol/internal/logic/session"
	"executor-resolver-sol/internal/mq"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/programs"
	"executor-resolver-sol/internal/runtime"
	"executor-resolver-sol/internal/store"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/redis/go-redis/v9"
)

// ServiceContext 包含解析服务共享的资源
type ServiceContext struct {
	Config   config.RelayerConfig
	Runtime  *runtime.Runtime
	Catalog  *programs.Catalog
	Ledger   accounts.Ledger
	Driver   *driver.Driver
	Sessions *session.Manager
	Producer *kafka.Producer
	Consumer *kafka.Consumer
	Sender   *mq.ResultSender

	rdb *redis.Client
}

// NewCoreContext 初始化解析核心（运行时、程序、账户存储、驱动、会话），不连接 Kafka
func NewCoreContext(c config.RelayerConfig) (*ServiceContext, error) {
	opts, err := c.ResolverConf.ToDriverOptions()
	if err != nil {
		return nil, err
	}
	rent := c.RentConf.ToRent()

	// 1. 运行时与内置程序
	rt := runtime.New(rent)
	catalog, err := programs.NewCatalog()
	if err != nil {
		return nil, err
	}
	catalog.RegisterAll(rt)

	ctx := &ServiceContext{Config: c, Runtime: rt, Catalog: catalog}

	// 2. 账户存储：Redis（或内存）在上，链上 RPC 在下
	var upper accounts.Ledger
	var sessions session.Store
	if c.RedisConf.Addr != "" {
		ctx.rdb = redis.NewClient(&redis.Options{
			Addr:     c.RedisConf.Addr,
			Password: c.RedisConf.Password,
			DB:       c.RedisConf.DB,
		})
		upper = store.NewRedisLedger(ctx.rdb, c.RedisConf.AccountTTL())
		sessions = session.NewRedisStore(ctx.rdb)
	} else {
		logger.Warnf("[svc] 未配置 Redis，账户与会话只保存在进程内")
		upper = store.NewMemoryLedger()
		sessions = session.NewMemoryStore()
	}
	var lower accounts.Source
	if c.RpcConf.Endpoint != "" {
		lower = store.NewRpcSource(c.RpcConf.Endpoint, c.RpcConf.Timeout(), c.RpcConf.Workers)
	}
	ctx.Ledger = store.NewOverlay(upper, lower)

	// 3. 示例程序账户
	if c.ResolverConf.SeedExamples {
		if err := catalog.SeedAll(context.Background(), ctx.Ledger, rent, c.ResolverConf.RecentSlot); err != nil {
			ctx.Close()
			return nil, fmt.Errorf("seed example accounts: %w", err)
		}
	}

	// 4. 驱动与会话
	ctx.Driver = driver.New(rt, ctx.Ledger, ctx.Ledger, opts)
	ctx.Sessions = session.NewManager(sessions)
	return ctx, nil
}

// NewServiceContext 在解析核心之上连接 Kafka 生产者与消费者
func NewServiceContext(c config.RelayerConfig) (*ServiceContext, error) {
	ctx, err := NewCoreContext(c)
	if err != nil {
		return nil, err
	}

	ctx.Producer, err = mq.NewKafkaProducer(c.KafkaProducerConf.ToKafkaOption())
	if err != nil {
		logger.Errorf("Kafka producer 初始化失败: %v", err)
		ctx.Close()
		return nil, err
	}
	ctx.Sender = mq.NewResultSender(ctx.Producer, c.KafkaProducerConf.ResultTopic,
		c.KafkaProducerConf.ResultPartitions, c.KafkaProducerConf.SendTimeout())

	ctx.Consumer, err = mq.NewKafkaConsumer(c.KafkaConsumerConf.ToKafkaOption())
	if err != nil {
		logger.Errorf("Kafka consumer 初始化失败: %v", err)
		ctx.Close()
		return nil, err
	}

	logger.Infof("[svc] 服务上下文初始化完成: payer=%s commit=%v", c.ResolverConf.Payer, c.ResolverConf.Commit)
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.Consumer != nil {
		_ = ctx.Consumer.Close()
	}
	if ctx.Producer != nil {
		ctx.Producer.Flush(3000)
		ctx.Producer.Close()
	}
	if ctx.rdb != nil {
		_ = ctx.rdb.Close()
	}
}
