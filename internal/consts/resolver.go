package consts

// 域分隔字符串：sha256(seed)[:8] 即为对应的判别符
const (
	// ResolverExecuteVaaV1Seed 路由判别符的哈希输入
	ResolverExecuteVaaV1Seed = "executor-account-resolver:execute-vaa-v1"
	// ResolverResultAccountSeed 结果账户的类型判别符哈希输入，同时作为 PDA seed
	ResolverResultAccountSeed = "executor-account-resolver:result"
)

// 已发布的判别符常量（测试中会与哈希推导结果比对）
var (
	ResolverExecuteVaaV1  = [8]byte{148, 184, 169, 222, 207, 8, 154, 127}
	ResolverResultAccount = [8]byte{34, 185, 243, 199, 181, 255, 28, 227}
)

// ResolverResultAccountInitSize 存放 Resolved(空 InstructionGroups) 所需的最小编码长度：1 tag + 4 count
const ResolverResultAccountInitSize = 5

// 占位账户（按 guardian signer 前缀的 padding 规则，32 字节 ASCII）
// relayer 在提交交易前必须替换为真实账户，resolver 本身从不把它们当作真实账户加载。
const (
	PlaceholderPayerStr       = "payer_00000000000000000000000000"
	PlaceholderPostedVaaStr   = "posted_vaa_000000000000000000000"
	PlaceholderShimVaaSigsStr = "shim_vaa_sigs_000000000000000000"
	PlaceholderKeypairFmt     = "keypair_%02d_000000000000000000000"
	PlaceholderKeypairCount   = 10
)
