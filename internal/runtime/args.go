package runtime

import (
	"fmt"

	"executor-resolver-sol/internal/resolver"

	"github.com/near/borsh-go"
)

// ExecuteVaaV1Args 解析调用的参数（判别符之后的 borsh 载荷）
type ExecuteVaaV1Args struct {
	VaaBody []byte
}

// EncodeExecuteVaaV1 构造解析调用的指令数据：判别符 ‖ borsh(vaa_body)
func EncodeExecuteVaaV1(vaaBody []byte) ([]byte, error) {
	body, err := borsh.Serialize(ExecuteVaaV1Args{VaaBody: vaaBody})
	if err != nil {
		return nil, fmt.Errorf("encode execute_vaa_v1 args: %w", err)
	}
	return append(resolver.ExecuteVaaV1.Bytes(), body...), nil
}

// DecodeExecuteVaaV1 解析判别符之后的参数
func DecodeExecuteVaaV1(data []byte) (ExecuteVaaV1Args, error) {
	var args ExecuteVaaV1Args
	if !resolver.ExecuteVaaV1.HasPrefix(data) {
		return args, fmt.Errorf("%w: missing execute_vaa_v1 discriminator", ErrInvalidInstructionData)
	}
	if err := borsh.Deserialize(&args, data[len(resolver.ExecuteVaaV1):]); err != nil {
		return args, fmt.Errorf("%w: %w", ErrInvalidInstructionData, err)
	}
	return args, nil
}
