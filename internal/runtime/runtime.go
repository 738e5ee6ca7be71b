package runtime

import (
	"bytes"
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
)

// Entrypoint 程序入口：data 的前 8 字节为指令判别符，由程序自行分发
type Entrypoint func(ic *InvokeContext, data []byte) error

type Program struct {
	ID    types.Pubkey
	Name  string
	Entry Entrypoint
}

// Runtime 进程内的程序执行环境，每次 Execute 即一轮原子调用
type Runtime struct {
	mu       sync.RWMutex
	programs map[types.Pubkey]Program
	rent     Rent
}

func New(rent Rent) *Runtime {
	return &Runtime{
		programs: make(map[types.Pubkey]Program),
		rent:     rent,
	}
}

func (rt *Runtime) Register(p Program) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.programs[p.ID] = p
	logger.Infof("[runtime] 注册程序: %s (%s)", p.Name, p.ID)
}

func (rt *Runtime) Program(id types.Pubkey) (Program, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	p, ok := rt.programs[id]
	return p, ok
}

func (rt *Runtime) Rent() Rent {
	return rt.rent
}

// Outcome 一轮调用的结果：返回值与调用后的账户状态（顺序与传入一致）
type Outcome struct {
	ReturnData []byte
	Accounts   []*accounts.AccountInfo
	pre        map[types.Pubkey]*accounts.AccountInfo
}

// Modified 返回本轮被修改过的账户（按地址去重，保持首次出现顺序）
func (o *Outcome) Modified() []*accounts.AccountInfo {
	var out []*accounts.AccountInfo
	seen := make(map[types.Pubkey]struct{}, len(o.Accounts))
	for _, a := range o.Accounts {
		if _, ok := seen[a.Key]; ok {
			continue
		}
		seen[a.Key] = struct{}{}
		if changed(o.pre[a.Key], a) {
			out = append(out, a)
		}
	}
	return out
}

// Execute 执行一轮调用。入口在账户快照上运行，只有成功返回且通过检查后结果才对外可见；
// 入口内的 panic 会被恢复并转换为 ErrProgramPanic。
func (rt *Runtime) Execute(ctx context.Context, programID types.Pubkey, data []byte, supplied []*accounts.AccountInfo) (out *Outcome, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := rt.Program(programID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, programID)
	}

	snapshot, pre := snapshotAccounts(supplied)
	ic := &InvokeContext{
		ctx:       ctx,
		ProgramID: programID,
		Accounts:  snapshot,
		rent:      rt.rent,
		startLen:  make(map[types.Pubkey]int, len(pre)),
	}
	for k, a := range pre {
		ic.startLen[k] = len(a.Data)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[runtime] 程序 %s panic: %v\n%s", p.Name, r, debug.Stack())
			out = nil
			err = fmt.Errorf("%w: %s: %v", ErrProgramPanic, p.Name, r)
		}
	}()

	if err := p.Entry(ic, data); err != nil {
		return nil, fmt.Errorf("program %s: %w", p.Name, err)
	}
	if err := rt.verify(programID, pre, snapshot); err != nil {
		return nil, fmt.Errorf("program %s: %w", p.Name, err)
	}

	logger.Debugf("[runtime] 执行完成: program=%s accounts=%d return=%dB", p.Name, len(supplied), len(ic.returnData))
	return &Outcome{ReturnData: ic.returnData, Accounts: snapshot, pre: pre}, nil
}

// snapshotAccounts 深拷贝本轮账户；同一地址出现多次时共享同一份拷贝，权限取并集
func snapshotAccounts(supplied []*accounts.AccountInfo) ([]*accounts.AccountInfo, map[types.Pubkey]*accounts.AccountInfo) {
	snapshot := make([]*accounts.AccountInfo, len(supplied))
	byKey := make(map[types.Pubkey]*accounts.AccountInfo, len(supplied))
	for i, a := range supplied {
		if c, ok := byKey[a.Key]; ok {
			c.IsSigner = c.IsSigner || a.IsSigner
			c.IsWritable = c.IsWritable || a.IsWritable
			snapshot[i] = c
			continue
		}
		c := a.Clone()
		byKey[a.Key] = c
		snapshot[i] = c
	}
	pre := make(map[types.Pubkey]*accounts.AccountInfo, len(byKey))
	for k, a := range byKey {
		pre[k] = a.Clone()
	}
	return snapshot, pre
}

// verify 调用结束后的账户检查：只读账户不可变，非 owner 不可改数据，总余额守恒，免租状态不可丢失
func (rt *Runtime) verify(programID types.Pubkey, pre map[types.Pubkey]*accounts.AccountInfo, snapshot []*accounts.AccountInfo) error {
	var before, after uint64
	checked := make(map[types.Pubkey]struct{}, len(pre))
	for _, a := range snapshot {
		if _, ok := checked[a.Key]; ok {
			continue
		}
		checked[a.Key] = struct{}{}
		old := pre[a.Key]
		before += old.Lamports
		after += a.Lamports

		if !changed(old, a) {
			continue
		}
		if !a.IsWritable {
			return fmt.Errorf("%w: %s", ErrReadonlyModified, a.Key)
		}
		if a.Owner != old.Owner {
			return fmt.Errorf("%w: owner of %s", ErrExternalModified, a.Key)
		}
		if a.Owner != programID && !bytes.Equal(a.Data, old.Data) {
			return fmt.Errorf("%w: %s", ErrExternalModified, a.Key)
		}
		wasExempt := rt.rent.IsExempt(old.Lamports, len(old.Data))
		if !rt.rent.IsExempt(a.Lamports, len(a.Data)) && (wasExempt || len(a.Data) != len(old.Data)) {
			return fmt.Errorf("%w: %s has %d, needs %d for %d bytes",
				ErrRentNotExempt, a.Key, a.Lamports, rt.rent.MinimumBalance(len(a.Data)), len(a.Data))
		}
	}
	if before != after {
		return fmt.Errorf("%w: %d -> %d", ErrUnbalancedLamports, before, after)
	}
	return nil
}

func changed(old, cur *accounts.AccountInfo) bool {
	if old == nil {
		return true
	}
	return old.Lamports != cur.Lamports || old.Owner != cur.Owner || !bytes.Equal(old.Data, cur.Data)
}
