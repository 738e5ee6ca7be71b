package programs

import (
	"context"
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/programs/iterative"
	"executor-resolver-sol/internal/programs/luttable"
	"executor-resolver-sol/internal/programs/noop"
	"executor-resolver-sol/internal/runtime"
)

// Catalog 内置 resolver 程序，按部署地址注册到运行时
type Catalog struct {
	Iterative *iterative.Program
	LutTable  *luttable.Program
}

func NewCatalog() (*Catalog, error) {
	lut, err := luttable.New(consts.LutResolverProgram)
	if err != nil {
		return nil, fmt.Errorf("init %s: %w", luttable.Name, err)
	}
	return &Catalog{
		Iterative: iterative.New(consts.IterativeResolverProgram),
		LutTable:  lut,
	}, nil
}

// RegisterAll 把全部内置程序注册到运行时
func (c *Catalog) RegisterAll(rt *runtime.Runtime) {
	rt.Register(noop.Program())
	rt.Register(c.Iterative.Runtime())
	rt.Register(c.LutTable.Runtime())
}

// SeedAll 写入示例程序依赖的链上账户（等价于各自的 initialize）
func (c *Catalog) SeedAll(ctx context.Context, sink accounts.Sink, rent runtime.Rent, recentSlot uint64) error {
	if err := c.Iterative.Seed(ctx, sink, rent); err != nil {
		return fmt.Errorf("seed %s: %w", iterative.Name, err)
	}
	table, err := c.LutTable.Seed(ctx, sink, rent, recentSlot)
	if err != nil {
		return err
	}
	logger.Infof("[programs] 示例账户已写入: lut=%s record=%s", table, c.LutTable.RecordAddress())
	return nil
}

// Lookup 通过名称或 base58 地址查找内置程序 ID
func (c *Catalog) Lookup(nameOrID string) (types.Pubkey, error) {
	switch nameOrID {
	case noop.Name, "noop":
		return consts.NoopResolverProgram, nil
	case iterative.Name, "iterative":
		return c.Iterative.ID(), nil
	case luttable.Name, "luttable":
		return c.LutTable.ID(), nil
	}
	return types.TryPubkeyFromBase58(nameOrID)
}
