package consts

// Base58 地址常量（可读性高，适合配置与日志使用）
const (
	//  Programs
	SystemProgramStr             = "11111111111111111111111111111111"
	AddressLookupTableProgramStr = "AddressLookupTab1e1111111111111111111111111"

	// 示例 resolver 程序（与链上部署的 program id 保持一致）
	NoopResolverProgramStr      = "GeSLWQHGZRWhrdqo5Zvaa3JonhzQmfEmJSuHJwmRebPw"
	IterativeResolverProgramStr = "8mjNDtRMN7Sjq2ZVjCjKJUUaCfUdfZLoeYREmYs3yKSi"
	LutResolverProgramStr       = "v3pcEfuzsPBGQ8Zy1jvtWq4iwugEWC2f3xgPd32eZgQ"
)
