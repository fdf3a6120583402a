package emitter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/messaging"
	"github.com/feral-file/ff-vault-indexer/internal/store"
)

// Config holds the configuration for the event emitter
type Config struct {
	ChainID         domain.Chain
	StartBlock      uint64
	CursorSaveFreq  uint64        // Save cursor every N blocks
	CursorSaveDelay time.Duration // Or save cursor every N seconds
}

// Emitter defines the interface for the event emitter
//
//go:generate mockgen -source=emitter.go -destination=../mocks/emitter.go -package=mocks -mock_names=Emitter=MockEmitter
type Emitter interface {
	// Run starts the event emitter
	Run(ctx context.Context) error
	// Close closes the emitter and cleans up resources
	Close()
}

// Emitter handles vault log subscription and publishing to NATS
type emitter struct {
	subscriber messaging.Subscriber
	publisher  messaging.Publisher
	cursors    store.CursorStore
	config     Config
	clock      adapter.Clock
}

// NewEmitter creates a new event emitter
func NewEmitter(
	sub messaging.Subscriber,
	pub messaging.Publisher,
	cursors store.CursorStore,
	cfg Config,
	clock adapter.Clock,
) Emitter {
	return &emitter{
		subscriber: sub,
		publisher:  pub,
		cursors:    cursors,
		config:     cfg,
		clock:      clock,
	}
}

// startBlock resolves where the subscription starts: the configured block,
// the block after the saved cursor, or the chain head
func (e *emitter) startBlock(ctx context.Context) (uint64, error) {
	chain := zap.String("chain", string(e.config.ChainID))

	if e.config.StartBlock > 0 {
		logger.InfoCtx(ctx, "Starting from configured block", chain, zap.Uint64("block", e.config.StartBlock))
		return e.config.StartBlock, nil
	}

	lastBlock, err := e.cursors.GetBlockCursor(ctx, string(e.config.ChainID))
	if err != nil {
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}
	if lastBlock > 0 {
		logger.InfoCtx(ctx, "Resuming from last processed block", chain, zap.Uint64("block", lastBlock+1))
		return lastBlock + 1, nil
	}

	latestBlock, err := e.subscriber.GetLatestBlock(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest block number: %w", err)
	}
	logger.InfoCtx(ctx, "Starting from latest block", chain, zap.Uint64("block", latestBlock))
	return latestBlock, nil
}

// Run starts the event emitter
func (e *emitter) Run(ctx context.Context) error {
	startBlock, err := e.startBlock(ctx)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)

	go func() {
		logger.InfoCtx(ctx, "Starting event subscription", zap.String("chain", string(e.config.ChainID)))

		lastSavedBlock := uint64(0)
		lastSaveTime := e.clock.Now()

		handler := func(event *domain.VaultEvent) error {
			if err := e.publisher.PublishEvent(ctx, event); err != nil {
				return fmt.Errorf("failed to publish event %s: %w", event.MessageID(), err)
			}

			// Later logs of the current block may still be unpublished, so the cursor
			// only covers the blocks before it
			if event.BlockNumber == 0 {
				return nil
			}
			completed := event.BlockNumber - 1
			if completed <= lastSavedBlock {
				return nil
			}

			shouldSave := completed-lastSavedBlock >= e.config.CursorSaveFreq ||
				e.clock.Since(lastSaveTime) >= e.config.CursorSaveDelay

			if shouldSave {
				if err := e.cursors.SetBlockCursor(ctx, string(e.config.ChainID), completed); err != nil {
					logger.WarnCtx(ctx, "Failed to save block cursor",
						zap.String("chain", string(e.config.ChainID)),
						zap.Uint64("block", completed),
						zap.Error(err))
				} else {
					lastSavedBlock = completed
					lastSaveTime = e.clock.Now()
				}
			}

			return nil
		}

		err := e.subscriber.SubscribeEvents(ctx, startBlock, handler)
		if err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes the emitter and cleans up resources
func (e *emitter) Close() {
	e.subscriber.Close()
	e.publisher.Close()
}
