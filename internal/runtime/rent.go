package runtime

import "executor-resolver-sol/internal/consts"

// Rent 租金参数，MinimumBalance 计算免租所需最低余额
type Rent struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
}

func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: consts.DefaultLamportsPerByteYear,
		ExemptionThreshold:  consts.DefaultExemptionThreshold,
	}
}

// MinimumBalance = (128 + dataLen) * lamports_per_byte_year * exemption_threshold
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytes := uint64(consts.AccountStorageOverhead) + uint64(dataLen)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt 零余额账户视为已关闭，不参与免租检查
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports == 0 || lamports >= r.MinimumBalance(dataLen)
}
