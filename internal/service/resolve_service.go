package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"executor-resolver-sol/internal/driver"
	"executor-resolver-sol/internal/logic/session"
	"executor-resolver-sol/internal/mq"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/svc"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const stopTimeout = 5 * time.Second

// PlanResolver 执行完整的多轮解析，*driver.Driver 满足该接口
type PlanResolver interface {
	Resolve(ctx context.Context, programID types.Pubkey, vaaBody []byte) (*driver.Plan, error)
}

// Publisher 发送解析结果，*mq.ResultSender 满足该接口
type Publisher interface {
	Send(ctx context.Context, results ...*mq.ResolveResult) error
}

// ResolveService 消费解析请求，逐轮解析后把计划发送到结果 topic
type ResolveService struct {
	resolver  PlanResolver
	sessions  *session.Manager
	publisher Publisher
	consumer  mq.Consumer
	timeout   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewResolveService(sc *svc.ServiceContext) *ResolveService {
	return newResolveService(sc.Driver, sc.Sessions, sc.Sender, sc.Consumer, sc.Config.ResolverConf.Timeout())
}

func newResolveService(r PlanResolver, sessions *session.Manager, pub Publisher, consumer mq.Consumer, timeout time.Duration) *ResolveService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ResolveService{
		resolver:  r,
		sessions:  sessions,
		publisher: pub,
		consumer:  consumer,
		timeout:   timeout,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

func (s *ResolveService) Start() {
	defer close(s.done)
	logger.Infof("[ResolveService] 开始消费解析请求")
	err := mq.Consume(s.ctx, s.consumer, s.handleMessage)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("[ResolveService] 消费循环退出: %v", err)
	}
}

func (s *ResolveService) Stop() {
	s.cancel()
	select {
	case <-s.done:
		logger.Infof("[ResolveService] 已停止")
	case <-time.After(stopTimeout):
		logger.Warnf("[ResolveService] 等待消费循环退出超时")
	}
}

func (s *ResolveService) handleMessage(ctx context.Context, msg *kafka.Message) error {
	var req mq.ResolveRequest
	if err := mq.DecodeEvent(msg.Value, mq.EventResolveRequest, &req); err != nil {
		return mq.Permanent(err)
	}
	result, err := s.Process(ctx, &req)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := s.publisher.Send(ctx, result); err != nil {
		return fmt.Errorf("publish result: %w", err)
	}
	return nil
}

// Process 处理一条请求；返回 nil 结果表示其它实例正在处理，无需发送
func (s *ResolveService) Process(ctx context.Context, req *mq.ResolveRequest) (*mq.ResolveResult, error) {
	programID := types.Pubkey(req.ProgramID)
	key := session.Key(programID, req.VaaBody)
	result := &mq.ResolveResult{ProgramID: req.ProgramID, VaaHash: types.HashBytes(req.VaaBody)}

	decision, cached, err := s.sessions.Begin(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("session begin: %w", err)
	}
	switch decision {
	case session.DecisionSkip:
		logger.Debugf("[ResolveService] 请求正在处理中，跳过: program=%s vaa=%s", programID, types.Hash(result.VaaHash))
		return nil, nil
	case session.DecisionCached:
		result.Status = mq.ResultResolved
		result.Plan = cached
		return result, nil
	}

	start := time.Now()
	rctx, cancel := context.WithTimeout(ctx, s.timeout)
	plan, resolveErr := s.resolver.Resolve(rctx, programID, req.VaaBody)
	cancel()

	var encoded []byte
	if resolveErr == nil {
		encoded = resolver.EncodeGroups(resolver.Resolved(plan.Groups))
		result.Status = mq.ResultResolved
		result.Plan = encoded
		result.Rounds = uint32(len(plan.Rounds))
		logger.Infof("[ResolveService] 解析成功: program=%s rounds=%d size=%d 耗时=%v",
			programID, len(plan.Rounds), len(encoded), time.Since(start))
	} else {
		result.Status = mq.ResultFailed
		result.Error = resolveErr.Error()
		logger.Warnf("[ResolveService] 解析失败: program=%s err=%v", programID, resolveErr)
	}

	if err := s.sessions.Finish(ctx, key, encoded, resolveErr); err != nil {
		logger.Warnf("[ResolveService] 写入会话状态失败: %v", err)
	}
	return result, nil
}
