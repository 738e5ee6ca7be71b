package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/overflow"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"
)

const DefaultMaxRounds = 16

var (
	ErrTooManyRounds     = errors.New("resolution did not finish within the round limit")
	ErrNoProgress        = errors.New("round requested only accounts already supplied")
	ErrEmptyMissing      = resolver.ErrEmptyMissing
	ErrRecordUnavailable = errors.New("pending outcome but record account absent from post-state")
	ErrPendingRecord     = errors.New("record account itself holds a pending outcome")
)

// Executor 执行一轮解析调用（进程内 runtime，或任何能返回调用后账户状态的模拟器）
type Executor interface {
	Execute(ctx context.Context, programID types.Pubkey, data []byte, supplied []*accounts.AccountInfo) (*runtime.Outcome, error)
}

type Options struct {
	// Payer 真实的手续费支付账户，替换 payer 占位符
	Payer types.Pubkey
	// MaxRounds 单次解析允许的最大轮数
	MaxRounds int
	// Commit 为 true 时把每轮修改过的账户写回 Sink（结果账户跨会话保留扩容结果）；
	// 默认只模拟，每轮都从存储中的原始状态开始
	Commit bool
}

// Driver relayer 侧的解析循环：逐轮补充程序要求的账户，直到得到最终计划
type Driver struct {
	exec   Executor
	source accounts.Source
	sink   accounts.Sink
	opts   Options
}

// New sink 可以为 nil（仅模拟模式）
func New(exec Executor, source accounts.Source, sink accounts.Sink, opts Options) *Driver {
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Driver{exec: exec, source: source, sink: sink, opts: opts}
}

// RoundInfo 单轮摘要
type RoundInfo struct {
	Supplied   int           `yaml:"supplied"`
	Outcome    string        `yaml:"outcome"`
	FromRecord bool          `yaml:"from_record"`
	Requested  int           `yaml:"requested"`
	Elapsed    time.Duration `yaml:"elapsed"`
}

// Plan 解析完成的执行计划，Groups 中仍然包含占位符，提交前用 Substitute 替换
type Plan struct {
	ProgramID    types.Pubkey                    `yaml:"program_id"`
	Groups       resolver.InstructionGroups      `yaml:"groups"`
	LookupTables map[types.Pubkey][]types.Pubkey `yaml:"-"`
	Rounds       []RoundInfo                     `yaml:"rounds"`
}

// session 一次解析的可变状态
type session struct {
	programID types.Pubkey
	record    types.Pubkey
	requested []types.Pubkey
	seen      map[types.Pubkey]struct{}
	known     map[types.Pubkey]*accounts.AccountInfo
	luts      map[types.Pubkey][]types.Pubkey
}

// Resolve 从空账户开始逐轮调用，直到程序给出 Resolved
func (d *Driver) Resolve(ctx context.Context, programID types.Pubkey, vaaBody []byte) (*Plan, error) {
	data, err := runtime.EncodeExecuteVaaV1(vaaBody)
	if err != nil {
		return nil, err
	}
	record, _, err := overflow.RecordAddress(programID)
	if err != nil {
		return nil, err
	}
	s := &session{
		programID: programID,
		record:    record,
		seen:      make(map[types.Pubkey]struct{}),
		known:     make(map[types.Pubkey]*accounts.AccountInfo),
		luts:      make(map[types.Pubkey][]types.Pubkey),
	}
	plan := &Plan{ProgramID: programID, LookupTables: s.luts}

	for round := 1; round <= d.opts.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()

		supplied, err := d.supply(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		out, err := d.exec.Execute(ctx, programID, data, supplied)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		r, fromRecord, err := d.outcome(s, out)
		if err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}
		if err := d.commit(ctx, s, out); err != nil {
			return nil, fmt.Errorf("round %d: %w", round, err)
		}

		info := RoundInfo{Supplied: len(supplied), Outcome: r.Kind().String(), FromRecord: fromRecord}

		switch r.Kind() {
		case resolver.KindResolved:
			groups, _ := r.Get()
			for _, g := range groups {
				if err := d.fetchLookupTables(ctx, s, g.AddressLookupTables); err != nil {
					return nil, fmt.Errorf("round %d: %w", round, err)
				}
			}
			info.Elapsed = time.Since(start)
			plan.Rounds = append(plan.Rounds, info)
			plan.Groups = groups
			logger.Infof("[driver] 解析完成: program=%s rounds=%d groups=%d accounts=%d",
				programID, round, len(groups), groups.AccountCount())
			return plan, nil

		case resolver.KindMissing:
			m, _ := r.MissingAccounts()
			if m.IsEmpty() {
				return nil, fmt.Errorf("round %d: %w", round, ErrEmptyMissing)
			}
			if !s.addRequested(m.Accounts) {
				return nil, fmt.Errorf("round %d: %w: %s", round, ErrNoProgress, types.PubkeysToBase58(m.Accounts))
			}
			if err := d.fetchLookupTables(ctx, s, m.AddressLookupTables); err != nil {
				return nil, fmt.Errorf("round %d: %w", round, err)
			}
			info.Requested = len(m.Accounts)
			info.Elapsed = time.Since(start)
			plan.Rounds = append(plan.Rounds, info)
			logger.Debugf("[driver] 第 %d 轮: supplied=%d missing=%d luts=%d record=%v",
				round, len(supplied), len(m.Accounts), len(m.AddressLookupTables), fromRecord)

		default:
			return nil, fmt.Errorf("round %d: %w", round, ErrPendingRecord)
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrTooManyRounds, d.opts.MaxRounds)
}

// outcome 解码直接返回值；Pending 时改为读取调用后结果账户的内容
func (d *Driver) outcome(s *session, out *runtime.Outcome) (resolver.Resolver[resolver.InstructionGroups], bool, error) {
	r, err := resolver.DecodeGroups(out.ReturnData)
	if err != nil {
		return r, false, fmt.Errorf("decode return data: %w", err)
	}
	if !r.IsPending() {
		return r, false, nil
	}
	rec := accounts.Find(out.Accounts, s.record)
	if rec == nil {
		return r, true, fmt.Errorf("%w: %s", ErrRecordUnavailable, s.record)
	}
	r, err = overflow.ReadRecord(rec.Data)
	if err != nil {
		return r, true, err
	}
	if r.IsPending() {
		return r, true, ErrPendingRecord
	}
	return r, true, nil
}

// addRequested 追加本轮要求的账户（保留顺序与重复）；全部已提供过则视为没有进展
func (s *session) addRequested(keys []types.Pubkey) bool {
	progress := false
	for _, k := range keys {
		if _, ok := s.seen[k]; !ok {
			progress = true
			s.seen[k] = struct{}{}
		}
	}
	s.requested = append(s.requested, keys...)
	return progress
}

// commit 把本轮修改写回会话；只有执行程序自己的账户（结果账户等）落到 sink，
// payer 等外部账户的余额变化只在本次会话内可见，不覆盖链上状态
func (d *Driver) commit(ctx context.Context, s *session, out *runtime.Outcome) error {
	if !d.opts.Commit || d.sink == nil {
		return nil
	}
	modified := out.Modified()
	if len(modified) == 0 {
		return nil
	}
	owned := make([]*accounts.AccountInfo, 0, len(modified))
	for _, a := range modified {
		c := a.Clone()
		c.IsSigner, c.IsWritable = false, false
		s.known[a.Key] = c
		if a.Owner == s.programID {
			owned = append(owned, a)
		}
	}
	if len(owned) == 0 {
		return nil
	}
	if err := d.sink.PutAccounts(ctx, owned...); err != nil {
		return fmt.Errorf("commit round state: %w", err)
	}
	return nil
}
