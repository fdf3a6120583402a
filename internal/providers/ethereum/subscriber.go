package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/block"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/messaging"
)

const (
	defaultBackfillStepSize = 10_000
	liveLogBufferSize       = 1024
)

// Config holds the configuration for vault event subscription on one chain
type Config struct {
	ChainID domain.Chain // e.g., "eip155:1" for Ethereum mainnet

	// FactoryAddress is the MetaMorpho factory whose CreateMetaMorpho logs register new vaults
	FactoryAddress string

	// FactoryStartBlock is the factory deployment block, used to discover vaults created before the start block
	FactoryStartBlock uint64

	// KnownVaults seeds the set of tracked vault addresses
	KnownVaults []string

	// BackfillStepSize is the initial number of blocks per eth_getLogs request
	BackfillStepSize uint64
}

type ethSubscriber struct {
	client  adapter.EthClient
	decoder Decoder
	blocks  block.BlockProvider
	config  Config
	factory common.Address
	vaults  *domain.AddressSet

	// last is the position of the last log handed to the handler
	last *domain.LogCursor
}

// NewSubscriber creates a new vault event subscriber
func NewSubscriber(cfg Config, client adapter.EthClient, decoder Decoder, blocks block.BlockProvider) (messaging.Subscriber, error) {
	if !domain.IsValidChain(cfg.ChainID) {
		return nil, fmt.Errorf("invalid chain id: %s", cfg.ChainID)
	}
	if !common.IsHexAddress(cfg.FactoryAddress) {
		return nil, fmt.Errorf("invalid factory address: %q", cfg.FactoryAddress)
	}
	if cfg.BackfillStepSize == 0 {
		cfg.BackfillStepSize = defaultBackfillStepSize
	}

	return &ethSubscriber{
		client:  client,
		decoder: decoder,
		blocks:  blocks,
		config:  cfg,
		factory: common.HexToAddress(cfg.FactoryAddress),
		vaults:  domain.NewAddressSet(cfg.KnownVaults...),
	}, nil
}

// SubscribeEvents backfills from fromBlock to the head, then follows new logs.
// Whenever a new vault is registered the scan restarts at the creation block so the
// vault's own logs are picked up; logs already delivered are skipped.
func (s *ethSubscriber) SubscribeEvents(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
	s.last = nil
	if err := s.discoverVaults(ctx, fromBlock); err != nil {
		return err
	}

	from := fromBlock
	for {
		logs := make(chan types.Log, liveLogBufferSize)
		sub, err := s.client.SubscribeFilterLogs(ctx, s.query(nil, nil), logs)
		if err != nil {
			return fmt.Errorf("failed to subscribe to filter logs: %w", err)
		}

		next, grew, err := s.catchUp(ctx, from, handler)
		if err == nil && !grew {
			next, err = s.follow(ctx, sub, logs, handler)
		}

		sub.Unsubscribe()
		if err != nil {
			return err
		}

		logger.InfoCtx(ctx, "Tracked vault set changed, rescanning",
			zap.String("chain", string(s.config.ChainID)),
			zap.Uint64("fromBlock", next),
			zap.Int("vaults", s.vaults.Len()))
		from = next
	}
}

// discoverVaults registers the vaults the factory created before fromBlock
func (s *ethSubscriber) discoverVaults(ctx context.Context, fromBlock uint64) error {
	if fromBlock == 0 || s.config.FactoryStartBlock >= fromBlock {
		return nil
	}

	query := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(s.config.FactoryStartBlock),
		ToBlock:   new(big.Int).SetUint64(fromBlock - 1),
		Addresses: []common.Address{s.factory},
		Topics:    [][]common.Hash{{factoryABI.Events[createVaultEventName].ID}},
	}

	logs, err := filterLogsWithRetry(ctx, s.client, query, s.config.BackfillStepSize)
	if err != nil {
		return fmt.Errorf("failed to discover vaults: %w", err)
	}

	for _, vLog := range logs {
		payload, err := DecodePayload(vLog)
		if err != nil {
			logger.WarnCtx(ctx, "Skipping undecodable factory log", zap.Error(err), zap.String("txHash", vLog.TxHash.Hex()))
			continue
		}
		if created, ok := payload.(*domain.CreateVault); ok {
			s.vaults.Add(created.Vault)
		}
	}

	logger.InfoCtx(ctx, "Discovered vaults",
		zap.String("chain", string(s.config.ChainID)),
		zap.Int("vaults", s.vaults.Len()))
	return nil
}

// catchUp delivers historical logs from `from` to the current head.
// It stops early when a new vault is registered and returns the block to rescan from.
func (s *ethSubscriber) catchUp(ctx context.Context, from uint64, handler messaging.EventHandler) (uint64, bool, error) {
	head, err := s.blocks.GetLatestBlock(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to get latest block: %w", err)
	}

	for from <= head {
		to := from + s.config.BackfillStepSize - 1
		if to > head {
			to = head
		}

		logs, err := filterLogsWithRetry(ctx, s.client, s.query(
			new(big.Int).SetUint64(from),
			new(big.Int).SetUint64(to),
		), s.config.BackfillStepSize)
		if err != nil {
			return 0, false, fmt.Errorf("failed to get logs for range %d-%d: %w", from, to, err)
		}

		for _, vLog := range logs {
			grew, err := s.deliver(ctx, vLog, handler)
			if err != nil {
				return 0, false, err
			}
			if grew {
				return vLog.BlockNumber, true, nil
			}
		}

		from = to + 1
	}

	return from, false, nil
}

// follow delivers live logs until the vault set grows or the subscription fails
func (s *ethSubscriber) follow(ctx context.Context, sub ethereum.Subscription, logs <-chan types.Log, handler messaging.EventHandler) (uint64, error) {
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case err := <-sub.Err():
			return 0, fmt.Errorf("subscription error: %w", err)
		case vLog := <-logs:
			grew, err := s.deliver(ctx, vLog, handler)
			if err != nil {
				return 0, err
			}
			if grew {
				return vLog.BlockNumber, nil
			}
		}
	}
}

// deliver decodes a log and hands it to the handler in canonical order.
// It reports whether the log registered a new vault.
func (s *ethSubscriber) deliver(ctx context.Context, vLog types.Log, handler messaging.EventHandler) (bool, error) {
	if vLog.Removed {
		logger.WarnCtx(ctx, "Ignoring removed log",
			zap.Uint64("blockNumber", vLog.BlockNumber),
			zap.String("txHash", vLog.TxHash.Hex()))
		return false, nil
	}

	cursor := domain.LogCursor{BlockNumber: vLog.BlockNumber, LogIndex: vLog.Index}
	if s.last != nil && !cursor.After(*s.last) {
		return false, nil
	}

	if !s.tracks(vLog) {
		return false, nil
	}

	event, err := s.decoder.Decode(ctx, vLog)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEvent) {
			logger.ErrorCtx(ctx, err, zap.String("message", "Error parsing log"), zap.String("txHash", vLog.TxHash.Hex()))
			return false, nil
		}
		return false, err
	}
	if event == nil {
		return false, nil
	}

	if err := handler(event); err != nil {
		return false, fmt.Errorf("failed to handle event %s: %w", event.MessageID(), err)
	}
	s.last = &cursor

	created, ok := event.Payload.(*domain.CreateVault)
	if !ok {
		return false, nil
	}
	return s.vaults.Add(created.Vault), nil
}

// tracks reports whether the log comes from the factory or a known vault
func (s *ethSubscriber) tracks(vLog types.Log) bool {
	if IsFactoryLog(vLog) {
		return vLog.Address == s.factory
	}
	return s.vaults.Contains(vLog.Address.Hex())
}

// query builds the filter over the factory and every tracked vault
func (s *ethSubscriber) query(from, to *big.Int) ethereum.FilterQuery {
	vaults := s.vaults.Slice()
	addresses := make([]common.Address, 0, len(vaults)+1)
	addresses = append(addresses, s.factory)
	for _, vault := range vaults {
		addresses = append(addresses, common.HexToAddress(vault))
	}

	return ethereum.FilterQuery{
		FromBlock: from,
		ToBlock:   to,
		Addresses: addresses,
		Topics:    [][]common.Hash{EventTopics()},
	}
}

// GetLatestBlock returns the latest block number
func (s *ethSubscriber) GetLatestBlock(ctx context.Context) (uint64, error) {
	return s.blocks.GetLatestBlock(ctx)
}

// Close closes the connection
func (s *ethSubscriber) Close() {
	if s.client == nil {
		return
	}

	s.client.Close()
	logger.Info("Ethereum WebSocket connection closed")
}
