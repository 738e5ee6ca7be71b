package store

import (
	"context"
	"fmt"
	"time"

	"executor-resolver-sol/internal/accounts"
	"executor-resolver-sol/internal/consts"
	"executor-resolver-sol/internal/pkg/logger"
	"executor-resolver-sol/internal/pkg/types"
	"executor-resolver-sol/pkg/utils"

	"github.com/blocto/solana-go-sdk/client"
)

// RpcSource 通过 Solana JSON-RPC getMultipleAccounts 读取链上账户
type RpcSource struct {
	client  *client.Client
	timeout time.Duration
	workers int
}

func NewRpcSource(endpoint string, timeout time.Duration, workers int) *RpcSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if workers <= 0 {
		workers = consts.CpuCount
	}
	return &RpcSource{client: client.NewClient(endpoint), timeout: timeout, workers: workers}
}

type rpcChunk struct {
	keys  []types.Pubkey
	infos []*accounts.AccountInfo
	err   error
}

// GetAccounts 按 100 个一组并发请求，结果顺序与 keys 一致
func (s *RpcSource) GetAccounts(ctx context.Context, keys []types.Pubkey) ([]*accounts.AccountInfo, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	var chunks []rpcChunk
	for start := 0; start < len(keys); start += consts.MaxRpcAccountsPerRequest {
		end := min(start+consts.MaxRpcAccountsPerRequest, len(keys))
		chunks = append(chunks, rpcChunk{keys: keys[start:end]})
	}

	startAt := time.Now()
	results := utils.ParallelMap(chunks, s.workers, func(c rpcChunk) rpcChunk {
		c.infos, c.err = s.fetch(ctx, c.keys)
		return c
	})

	out := make([]*accounts.AccountInfo, 0, len(keys))
	for _, c := range results {
		if c.err != nil {
			return nil, c.err
		}
		out = append(out, c.infos...)
	}
	logger.Debugf("[RpcSource] getMultipleAccounts 成功, 账户数: %d, 批次: %d, 耗时: %v", len(keys), len(chunks), time.Since(startAt))
	return out, nil
}

func (s *RpcSource) fetch(ctx context.Context, keys []types.Pubkey) ([]*accounts.AccountInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	infos, err := s.client.GetMultipleAccounts(ctx, types.PubkeysToBase58(keys))
	if err != nil {
		return nil, fmt.Errorf("GetMultipleAccounts failed: %w", err)
	}
	if len(infos) != len(keys) {
		return nil, fmt.Errorf("返回账户数与请求不一致: got=%d want=%d", len(infos), len(keys))
	}

	out := make([]*accounts.AccountInfo, len(keys))
	for i, info := range infos {
		data := info.Data
		if data == nil {
			data = []byte{}
		}
		out[i] = &accounts.AccountInfo{
			Key:        keys[i],
			Owner:      types.Pubkey(info.Owner),
			Lamports:   info.Lamports,
			Executable: info.Executable,
			Data:       data,
		}
	}
	return out, nil
}
