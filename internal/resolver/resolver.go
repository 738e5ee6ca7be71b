package resolver

import (
	"errors"
	"fmt"

	"executor-resolver-sol/internal/pkg/types"
)

// Kind 是 Resolver 的变体标签，数值即编码中的 1 字节 tag
type Kind uint8

const (
	KindResolved Kind = 0 // 结果已确定
	KindMissing  Kind = 1 // 需要补充账户后再来一轮
	KindPending  Kind = 2 // 结果放不下返回通道，需读取结果账户

	// KindInvalid 零值 Resolver 的变体，不会出现在编码中
	KindInvalid Kind = 0xFF
)

func (k Kind) String() string {
	switch k {
	case KindResolved:
		return "resolved"
	case KindMissing:
		return "missing"
	case KindPending:
		return "pending"
	case KindInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

var (
	ErrEmptyMissing    = errors.New("missing outcome carries no accounts")
	ErrInvalidResolver = errors.New("resolver was not built by Resolved, Missing or Pending")
)

// Resolver 是一轮解析的三态结果。
// 字段不导出：只能通过 Resolved / Missing / Pending 构造，保证任意时刻只有一个变体有效。
// 零值（错误分支里的 Resolver[T]{}）不属于任何变体：Kind 为 KindInvalid，编码后无法解码。
type Resolver[T any] struct {
	kind    Kind
	built   bool
	value   T
	missing MissingAccounts
}

func Resolved[T any](v T) Resolver[T] {
	return Resolver[T]{kind: KindResolved, built: true, value: v}
}

func Missing[T any](m MissingAccounts) Resolver[T] {
	return Resolver[T]{kind: KindMissing, built: true, missing: m}
}

// MissingKeys 缺少若干账户、不附带查找表时的简写
func MissingKeys[T any](keys ...types.Pubkey) Resolver[T] {
	return Missing[T](NewMissingAccounts(keys...))
}

func Pending[T any]() Resolver[T] {
	return Resolver[T]{kind: KindPending, built: true}
}

func (r Resolver[T]) Kind() Kind {
	if !r.built {
		return KindInvalid
	}
	return r.kind
}

func (r Resolver[T]) IsResolved() bool { return r.Kind() == KindResolved }

func (r Resolver[T]) IsMissing() bool { return r.Kind() == KindMissing }

func (r Resolver[T]) IsPending() bool { return r.Kind() == KindPending }

// Get 返回 Resolved 的值；其他变体返回 false
func (r Resolver[T]) Get() (T, bool) {
	if r.Kind() != KindResolved {
		var zero T
		return zero, false
	}
	return r.value, true
}

// MissingAccounts 返回 Missing 携带的账户需求；其他变体返回 false
func (r Resolver[T]) MissingAccounts() (MissingAccounts, bool) {
	if r.Kind() != KindMissing {
		return MissingAccounts{}, false
	}
	return r.missing, true
}

// Validate 检查作为一轮最终输出是否合法：Missing 不允许为空账户列表
func (r Resolver[T]) Validate() error {
	switch r.Kind() {
	case KindResolved, KindPending:
		return nil
	case KindMissing:
		if len(r.missing.Accounts) == 0 {
			return ErrEmptyMissing
		}
		return nil
	default:
		return ErrInvalidResolver
	}
}

func (r Resolver[T]) String() string {
	switch r.Kind() {
	case KindMissing:
		return fmt.Sprintf("missing(%d accounts, %d luts)", len(r.missing.Accounts), len(r.missing.AddressLookupTables))
	default:
		return r.Kind().String()
	}
}

// Match 穷举三个变体，调用方必须为每个分支提供处理函数
func Match[T, R any](
	r Resolver[T],
	onResolved func(T) R,
	onMissing func(MissingAccounts) R,
	onPending func() R,
) R {
	switch r.Kind() {
	case KindResolved:
		return onResolved(r.value)
	case KindMissing:
		return onMissing(r.missing)
	case KindPending:
		return onPending()
	default:
		panic("resolver: Match called on an invalid value")
	}
}

// AndThen 短路 bind：Resolved 时继续执行 f，否则原样传播第一个遇到的残差（Missing / Pending），f 不会被调用
func AndThen[T, U any](r Resolver[T], f func(T) Resolver[U]) Resolver[U] {
	if r.Kind() == KindResolved {
		return f(r.value)
	}
	return Propagate[U](r)
}

// Propagate 把非 Resolved 的残差转换为另一种载荷类型，用于显式提前返回：
//
//	foo, ok := fooRes.Get()
//	if !ok {
//		return resolver.Propagate[InstructionGroups](fooRes)
//	}
//
// 对 Resolved 调用属于编程错误，直接 panic。
func Propagate[U, T any](r Resolver[T]) Resolver[U] {
	switch r.Kind() {
	case KindMissing:
		return Missing[U](r.missing)
	case KindPending:
		return Pending[U]()
	default:
		panic(fmt.Sprintf("resolver: Propagate called on a %s value", r.Kind()))
	}
}

// Map 只变换 Resolved 的值
func Map[T, U any](r Resolver[T], f func(T) U) Resolver[U] {
	if r.Kind() == KindResolved {
		return Resolved(f(r.value))
	}
	return Propagate[U](r)
}

// Both 是 Pair 的结果载荷
type Both[T, U any] struct {
	First  T
	Second U
}

// Pair 组合两个互不依赖的查找，两边都会被求值，以便在同一轮里一次性报告全部缺失账户：
//   - Resolved, Resolved -> Resolved(Both)
//   - 任一 Missing      -> 该 Missing；两边都 Missing 时账户列表按 a、b 顺序拼接（不去重），查找表取并集
//   - 任一 Pending      -> Pending（结果已转移到结果账户，合并 Missing 无意义）
func Pair[T, U any](a Resolver[T], b Resolver[U]) Resolver[Both[T, U]] {
	if a.Kind() == KindInvalid || b.Kind() == KindInvalid {
		panic("resolver: Pair called on an invalid value")
	}
	if a.Kind() == KindPending || b.Kind() == KindPending {
		return Pending[Both[T, U]]()
	}
	switch {
	case a.Kind() == KindResolved && b.Kind() == KindResolved:
		return Resolved(Both[T, U]{First: a.value, Second: b.value})
	case a.Kind() == KindMissing && b.Kind() == KindMissing:
		return Missing[Both[T, U]](a.missing.Merge(b.missing))
	case a.Kind() == KindMissing:
		return Missing[Both[T, U]](a.missing)
	default:
		return Missing[Both[T, U]](b.missing)
	}
}

// All 是 Pair 在同类型列表上的折叠，用于批量独立查找
func All[T any](rs ...Resolver[T]) Resolver[[]T] {
	acc := Resolved(make([]T, 0, len(rs)))
	for _, r := range rs {
		acc = Map(Pair(acc, r), func(b Both[[]T, T]) []T {
			return append(b.First, b.Second)
		})
	}
	return acc
}
