package consts

import "runtime"

// CpuCount 表示逻辑 CPU 核心数，用于控制并发任务调度上限
var CpuCount = runtime.NumCPU()

// 运行时限制（必须与目标链运行时的真实限制一致，否则溢出协议不安全）
const (
	// MaxPermittedDataIncrease 单次调用内账户数据允许增长的最大字节数
	MaxPermittedDataIncrease = 10 * 1024
	// MaxPermittedDataLength 账户数据的绝对上限（10 MiB）
	MaxPermittedDataLength = 10 * 1024 * 1024
	// MaxReturnDataSize 指令直接返回值的上限
	MaxReturnDataSize = 1024
	// MaxRpcAccountsPerRequest getMultipleAccounts 单次请求账户数上限
	MaxRpcAccountsPerRequest = 100
)

// Rent 参数（默认值与主网一致）
const (
	AccountStorageOverhead     = 128
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionThreshold  = 2.0
)

// AddressLookupTableMetaSize 地址查找表账户头部长度，之后为连续的 32 字节地址
const AddressLookupTableMetaSize = 56
