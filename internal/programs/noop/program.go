package noop

import (
	"encoding/binary"
	"fmt"

	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"
)

const Name = "executor-account-resolver-noop"

// ExecuteVaaV1 路由判别符的 uint64 形式
var ExecuteVaaV1 = resolver.ExecuteVaaV1.Uint64()

// Program 最简单的 resolver：不需要任何账户，直接返回空计划
func Program() runtime.Program {
	return runtime.Program{ID: consts.NoopResolverProgram, Name: Name, Entry: handleInstruction}
}

func handleInstruction(ic *runtime.InvokeContext, data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: %d bytes", runtime.ErrUnknownInstruction, len(data))
	}

	switch binary.BigEndian.Uint64(data[:8]) {
	case ExecuteVaaV1:
		if _, err := runtime.DecodeExecuteVaaV1(data); err != nil {
			return err
		}
		return ic.ReturnResolver(resolver.Resolved(resolver.InstructionGroups{}))
	default:
		return fmt.Errorf("%w: %x", runtime.ErrUnknownInstruction, data[:8])
	}
}
