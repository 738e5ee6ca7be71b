package iterative

import (
	"context"
	"encoding/binary"
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"
)

const Name = "example-iterative-resolution"

var (
	ExecuteVaaV1 = resolver.ExecuteVaaV1.Uint64()

	// MyAccountDiscriminator anchor 账户判别符 sha256("account:MyAccount")[:8]
	MyAccountDiscriminator = resolver.AccountDiscriminator("MyAccount")
	// ExampleInstruction 最终计划中指令的判别符 sha256("global:example_instruction")[:8]
	ExampleInstruction = resolver.InstructionDiscriminator("example_instruction")
)

// MyAccount 链上账户：判别符 ‖ borsh{data: u8}
type MyAccount struct {
	Data uint8
}

// myAccountSpace 判别符 + u8
const myAccountSpace = 8 + 1

// Program 依次解析 foo → bar → baz，后一个地址由前一个账户的数据推导，
// 模拟只能逐轮发现依赖账户的场景
type Program struct {
	id types.Pubkey
}

func New(programID types.Pubkey) *Program {
	return &Program{id: programID}
}

func (p *Program) ID() types.Pubkey {
	return p.id
}

func (p *Program) Runtime() runtime.Program {
	return runtime.Program{ID: p.id, Name: Name, Entry: p.handleInstruction}
}

func (p *Program) FooAddress() types.Pubkey {
	return accounts.MustFindProgramAddress(p.id, []byte("foo"))
}

func (p *Program) BarAddress(foo uint8) types.Pubkey {
	return accounts.MustFindProgramAddress(p.id, []byte("bar"), []byte{foo})
}

func (p *Program) BazAddress(bar uint8) types.Pubkey {
	return accounts.MustFindProgramAddress(p.id, []byte("baz"), []byte{bar})
}

func (p *Program) QuxAddress(baz uint8) types.Pubkey {
	return accounts.MustFindProgramAddress(p.id, []byte("qux"), []byte{baz})
}

func (p *Program) handleInstruction(ic *runtime.InvokeContext, data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: %d bytes", runtime.ErrUnknownInstruction, len(data))
	}

	switch binary.BigEndian.Uint64(data[:8]) {
	case ExecuteVaaV1:
		if _, err := runtime.DecodeExecuteVaaV1(data); err != nil {
			return err
		}
		r, err := p.Resolve(ic.Accounts)
		if err != nil {
			return err
		}
		return ic.ReturnResolver(r)
	default:
		return fmt.Errorf("%w: %x", runtime.ErrUnknownInstruction, data[:8])
	}
}

// Resolve 链式依赖查找：第一个缺失的账户立即中止整个流程，后续查找不会执行
func (p *Program) Resolve(available []*accounts.AccountInfo) (r resolver.Resolver[resolver.InstructionGroups], err error) {
	fooKey := p.FooAddress()
	fooRes, err := accounts.LoadTyped[MyAccount](available, fooKey, MyAccountDiscriminator)
	if err != nil {
		return r, err
	}
	foo, ok := fooRes.Get()
	if !ok {
		return resolver.Propagate[resolver.InstructionGroups](fooRes), nil
	}

	barKey := p.BarAddress(foo.Data)
	barRes, err := accounts.LoadTyped[MyAccount](available, barKey, MyAccountDiscriminator)
	if err != nil {
		return r, err
	}
	bar, ok := barRes.Get()
	if !ok {
		return resolver.Propagate[resolver.InstructionGroups](barRes), nil
	}

	bazKey := p.BazAddress(bar.Data)
	bazRes, err := accounts.LoadTyped[MyAccount](available, bazKey, MyAccountDiscriminator)
	if err != nil {
		return r, err
	}
	baz, ok := bazRes.Get()
	if !ok {
		return resolver.Propagate[resolver.InstructionGroups](bazRes), nil
	}

	ix := resolver.Instruction{
		ProgramID: p.id,
		Accounts: []resolver.AccountMeta{
			resolver.Signer(resolver.PlaceholderPayer),
			resolver.Readonly(fooKey),
			resolver.Readonly(barKey),
			resolver.Readonly(bazKey),
			resolver.Writable(p.QuxAddress(baz.Data)),
			resolver.Readonly(consts.SystemProgram),
		},
		Data: ExampleInstruction.Bytes(),
	}
	return resolver.Resolved(resolver.InstructionGroups{{
		Instructions:        []resolver.Instruction{ix},
		AddressLookupTables: []types.Pubkey{},
	}}), nil
}

// Seed 写入 foo(1) → bar(2) → baz(3) 三个账户，等价于链上的 initialize
func (p *Program) Seed(ctx context.Context, sink accounts.Sink, rent runtime.Rent) error {
	values := []struct {
		key  types.Pubkey
		data uint8
	}{
		{p.FooAddress(), 1},
		{p.BarAddress(1), 2},
		{p.BazAddress(2), 3},
	}
	list := make([]*accounts.AccountInfo, 0, len(values))
	for _, v := range values {
		data, err := accounts.Encode(MyAccountDiscriminator, MyAccount{Data: v.data})
		if err != nil {
			return err
		}
		list = append(list, &accounts.AccountInfo{
			Key:      v.key,
			Owner:    p.id,
			Lamports: rent.MinimumBalance(myAccountSpace),
			Data:     data,
		})
	}
	return sink.PutAccounts(ctx, list...)
}
