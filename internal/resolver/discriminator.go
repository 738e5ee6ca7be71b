package resolver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"executor-resolver-sol/internal/consts"
)

// Discriminator 8 字节域分隔标识：sha256(seed)[:8]
type Discriminator [8]byte

var (
	// ExecuteVaaV1 路由判别符：resolver 程序用它分发 "execute VAA v1" 解析调用
	ExecuteVaaV1 = Discriminator(consts.ResolverExecuteVaaV1)
	// ResultAccount 结果账户的类型判别符，读取方解码前必须先校验
	ResultAccount = Discriminator(consts.ResolverResultAccount)
)

func DeriveDiscriminator(seed string) Discriminator {
	sum := sha256.Sum256([]byte(seed))
	var d Discriminator
	copy(d[:], sum[:8])
	return d
}

// AccountDiscriminator anchor 风格的账户判别符 sha256("account:<Name>")[:8]
func AccountDiscriminator(name string) Discriminator {
	return DeriveDiscriminator("account:" + name)
}

// InstructionDiscriminator anchor 风格的指令判别符 sha256("global:<name>")[:8]
func InstructionDiscriminator(name string) Discriminator {
	return DeriveDiscriminator("global:" + name)
}

// Uint64 以大端读出，便于 switch 分发（与常见 8 字节方法 ID 的写法一致）
func (d Discriminator) Uint64() uint64 {
	return binary.BigEndian.Uint64(d[:])
}

// Bytes 返回独立副本，可直接 append
func (d Discriminator) Bytes() []byte {
	return append([]byte{}, d[:]...)
}

func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}

// HasPrefix 判断 data 是否以该判别符开头
func (d Discriminator) HasPrefix(data []byte) bool {
	return len(data) >= len(d) && Discriminator(data[:8]) == d
}
