package accounts

import (
	"errors"
	"fmt"

	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/internal/resolver"

	"github.com/near/borsh-go"
)

var (
	ErrMalformedAccount             = errors.New("malformed account data")
	ErrAccountDiscriminatorMismatch = errors.New("account discriminator mismatch")
)

// Find 在本轮提供的账户中按地址线性查找；不假设任何顺序
func Find(available []*AccountInfo, key types.Pubkey) *AccountInfo {
	for _, a := range available {
		if a != nil && a.Key == key {
			return a
		}
	}
	return nil
}

// Load 找到即 Resolved，否则 Missing([key])
func Load(available []*AccountInfo, key types.Pubkey) resolver.Resolver[*AccountInfo] {
	if a := Find(available, key); a != nil {
		return resolver.Resolved(a)
	}
	return resolver.MissingKeys[*AccountInfo](key)
}

// LoadTyped 在 Load 的基础上解码账户数据。
// 账户已确认存在，数据无法解码属于致命错误而不是缺失。
func LoadTyped[T any](available []*AccountInfo, key types.Pubkey, disc resolver.Discriminator) (resolver.Resolver[T], error) {
	a := Find(available, key)
	if a == nil {
		return resolver.MissingKeys[T](key), nil
	}
	v, err := Decode[T](a.Data, disc)
	if err != nil {
		return resolver.Resolver[T]{}, fmt.Errorf("account %s: %w", key, err)
	}
	return resolver.Resolved(v), nil
}

// Decode 校验 8 字节账户判别符后用 borsh 解码剩余数据（允许尾部多余字节）
func Decode[T any](data []byte, disc resolver.Discriminator) (v T, err error) {
	if len(data) < len(disc) {
		return v, fmt.Errorf("%w: %d bytes, shorter than discriminator", ErrMalformedAccount, len(data))
	}
	if !disc.HasPrefix(data) {
		return v, fmt.Errorf("%w: %w: want %s got %x", ErrMalformedAccount, ErrAccountDiscriminatorMismatch, disc, data[:len(disc)])
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: borsh decode panic: %v", ErrMalformedAccount, r)
		}
	}()
	if err = borsh.Deserialize(&v, data[len(disc):]); err != nil {
		return v, fmt.Errorf("%w: %w", ErrMalformedAccount, err)
	}
	return v, nil
}

// Encode 生成 判别符 ‖ borsh(v)，用于写入账户数据
func Encode(disc resolver.Discriminator, v any) ([]byte, error) {
	body, err := borsh.Serialize(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(disc)+len(body))
	out = append(out, disc[:]...)
	return append(out, body...), nil
}
