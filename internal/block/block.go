package block

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
)

const defaultTimestampCacheSize = 4096

// BlockProvider provides cached access to the chain head and to block timestamps.
// Block timestamps are immutable, so they are kept in a bounded LRU cache.
//
//go:generate mockgen -source=block.go -destination=../mocks/block_provider.go -package=mocks -mock_names=BlockProvider=MockBlockProvider,BlockFetcher=MockBlockFetcher
type BlockProvider interface {
	// GetLatestBlock returns the latest block number, potentially from cache
	GetLatestBlock(ctx context.Context) (uint64, error)

	// GetBlockTimestamp returns the unix timestamp in seconds of a block, potentially from cache
	GetBlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error)
}

// BlockFetcher is the interface for fetching block information from the blockchain
type BlockFetcher interface {
	// FetchLatestBlock fetches the latest block number
	FetchLatestBlock(ctx context.Context) (uint64, error)

	// FetchBlockTimestamp fetches the unix timestamp in seconds of a block
	FetchBlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error)
}

// Config holds configuration for the BlockProvider
type Config struct {
	// TTL is how long to cache the latest block number
	TTL time.Duration

	// StaleWindow is how long to use a stale latest block number if fetching fails
	StaleWindow time.Duration

	// TimestampCacheSize bounds the number of cached block timestamps
	TimestampCacheSize int
}

type blockHead struct {
	number    uint64
	fetchedAt time.Time
}

// blockProvider implements BlockProvider
type blockProvider struct {
	fetcher BlockFetcher
	config  Config
	clock   adapter.Clock

	mu         sync.RWMutex
	head       *blockHead
	timestamps *lru.Cache[uint64, uint64]
}

// NewBlockProvider creates a new BlockProvider with caching
func NewBlockProvider(fetcher BlockFetcher, config Config, clock adapter.Clock) (BlockProvider, error) {
	size := config.TimestampCacheSize
	if size <= 0 {
		size = defaultTimestampCacheSize
	}

	timestamps, err := lru.New[uint64, uint64](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create timestamp cache: %w", err)
	}

	return &blockProvider{
		fetcher:    fetcher,
		config:     config,
		clock:      clock,
		timestamps: timestamps,
	}, nil
}

// GetLatestBlock returns the latest block number, using cache if valid
func (p *blockProvider) GetLatestBlock(ctx context.Context) (uint64, error) {
	p.mu.RLock()
	cached := p.head
	p.mu.RUnlock()

	now := p.clock.Now()
	if cached != nil && now.Sub(cached.fetchedAt) < p.config.TTL {
		return cached.number, nil
	}

	blockNumber, err := p.fetcher.FetchLatestBlock(ctx)
	if err != nil {
		if cached != nil && now.Sub(cached.fetchedAt) < p.config.StaleWindow {
			logger.WarnCtx(ctx, "Using stale latest block",
				zap.Uint64("blockNumber", cached.number),
				zap.Error(err))
			return cached.number, nil
		}
		return 0, fmt.Errorf("failed to fetch latest block and no valid cache available: %w", err)
	}

	p.mu.Lock()
	p.head = &blockHead{number: blockNumber, fetchedAt: now}
	p.mu.Unlock()

	return blockNumber, nil
}

// GetBlockTimestamp returns the timestamp of a block, using cache if present
func (p *blockProvider) GetBlockTimestamp(ctx context.Context, blockNumber uint64) (uint64, error) {
	if timestamp, ok := p.timestamps.Get(blockNumber); ok {
		return timestamp, nil
	}

	logger.DebugCtx(ctx, "Fetching block timestamp", zap.Uint64("blockNumber", blockNumber))
	timestamp, err := p.fetcher.FetchBlockTimestamp(ctx, blockNumber)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch timestamp of block %d: %w", blockNumber, err)
	}

	p.timestamps.Add(blockNumber, timestamp)
	return timestamp, nil
}
