package overflow

import (
	"fmt"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/resolver"
	"executor-resolver-sol/internal/runtime"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
)

// Commit 扩容、补足租金、覆盖写入结果，作为一个整体生效。
// 写入长度在任何修改之前就已校验；中途任一步失败都会把 record 与 payer 恢复到调用前的状态。
func Commit(ic *runtime.InvokeContext, record, payer *accounts.AccountInfo, r resolver.Resolver[resolver.InstructionGroups]) (err error) {
	if !record.IsWritable {
		return fmt.Errorf("%w: record %s", runtime.ErrAccountNotWritable, record.Key)
	}
	newSize, err := GrowSize(len(record.Data))
	if err != nil {
		return err
	}
	if need := recordHeaderSize + resolver.EncodedGroupsSize(r); need > newSize {
		return fmt.Errorf("%w: need %d, can grow to %d", ErrRecordTooSmall, need, newSize)
	}
	lamports := TopUp(ic.Rent(), newSize, record.Lamports)

	savedRecord, savedPayer := record.Clone(), payer.Clone()
	defer func() {
		if err != nil {
			*record = *savedRecord
			*payer = *savedPayer
			logger.Warnf("[overflow] 提交失败，已回滚 record=%s: %v", record.Key, err)
		}
	}()

	err = ic.Invoke(system.Transfer(system.TransferParam{
		From:   common.PublicKey(payer.Key),
		To:     common.PublicKey(record.Key),
		Amount: lamports,
	}))
	if err != nil {
		return fmt.Errorf("fund record: %w", err)
	}
	if err = ic.Realloc(record, newSize); err != nil {
		return fmt.Errorf("grow record: %w", err)
	}
	if err = WriteRecord(record, r); err != nil {
		return fmt.Errorf("write record: %w", err)
	}

	logger.Debugf("[overflow] 结果已写入 record=%s size=%d topup=%d kind=%s", record.Key, newSize, lamports, r.Kind())
	return nil
}
