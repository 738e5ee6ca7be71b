package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionHashBytes(t *testing.T) {
	b := make([]byte, 32)
	b[7], b[15], b[19], b[27] = 1, 2, 3, 0x0d

	assert.Equal(t, uint32(0), PartitionHashBytes(b[:20], 8), "short input")
	assert.Equal(t, uint32(0), PartitionHashBytes(b, 1))
	assert.Equal(t, uint32(0), PartitionHashBytes(b, 0))
	assert.Equal(t, uint32(0x0d&7), PartitionHashBytes(b, 8))

	want := (uint32(1)<<24 | uint32(2)<<16 | uint32(3)<<8 | 0x0d) % 12
	assert.Equal(t, want, PartitionHashBytes(b, 12))

	for mod := uint32(2); mod < 40; mod++ {
		assert.Less(t, PartitionHashBytes(b, mod), mod)
	}
}
