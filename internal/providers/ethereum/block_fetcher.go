package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/block"
)

// ethereumBlockFetcher implements block.BlockFetcher for EVM chains
type ethereumBlockFetcher struct {
	client adapter.EthClient
}

// NewEthereumBlockFetcher creates a block fetcher reading headers only
func NewEthereumBlockFetcher(client adapter.EthClient) block.BlockFetcher {
	return &ethereumBlockFetcher{client: client}
}

// FetchLatestBlock fetches the latest block number
func (f *ethereumBlockFetcher) FetchLatestBlock(ctx context.Context) (uint64, error) {
	header, err := f.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block: %w", err)
	}
	return header.Number.Uint64(), nil
}

// FetchBlockTimestamp fetches the header timestamp of a block
func (f *ethereumBlockFetcher) FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error) {
	header, err := f.client.HeaderByNumber(ctx, new(big.Int).SetUint64(blockNumber))
	if err != nil {
		return 0, fmt.Errorf("failed to get header %d: %w", blockNumber, err)
	}
	return header.Time, nil
}
