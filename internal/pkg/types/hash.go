package types

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

type Hash [32]byte

func (h Hash) String() string {
	return base58.Encode(h[:])
}

func (h Hash) Equals(other Hash) bool {
	return h == other
}

func (h Hash) MarshalYAML() (interface{}, error) {
	return h.String(), nil
}

// HashBytes 计算任意数据的 sha256，用于 VAA body 去重/缓存 key
func HashBytes(data []byte) Hash {
	return Hash(sha256.Sum256(data))
}

func HashFromBase58(s string) (Hash, error) {
	var h Hash
	data, err := base58.Decode(s)
	if err != nil {
		return h, err
	}
	if len(data) != 32 {
		return h, fmt.Errorf("invalid hash length: %d", len(data))
	}
	copy(h[:], data)
	return h, nil
}
