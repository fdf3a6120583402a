package emitter_test

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/emitter"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/messaging"
	"github.com/feral-file/ff-vault-indexer/internal/mocks"
)

const testChain = string(domain.ChainEthereumMainnet)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testEmitterMocks contains all the mocks needed for testing the emitter
type testEmitterMocks struct {
	ctrl       *gomock.Controller
	subscriber *mocks.MockSubscriber
	publisher  *mocks.MockPublisher
	cursors    *mocks.MockCursorStore
	clock      *mocks.MockClock
}

// setupTestEmitter creates all the mocks for testing
func setupTestEmitter(t *testing.T) *testEmitterMocks {
	ctrl := gomock.NewController(t)

	return &testEmitterMocks{
		ctrl:       ctrl,
		subscriber: mocks.NewMockSubscriber(ctrl),
		publisher:  mocks.NewMockPublisher(ctrl),
		cursors:    mocks.NewMockCursorStore(ctrl),
		clock:      mocks.NewMockClock(ctrl),
	}
}

func (tm *testEmitterMocks) newEmitter(startBlock uint64, saveFreq uint64) emitter.Emitter {
	return emitter.NewEmitter(
		tm.subscriber,
		tm.publisher,
		tm.cursors,
		emitter.Config{
			ChainID:         domain.ChainEthereumMainnet,
			StartBlock:      startBlock,
			CursorSaveFreq:  saveFreq,
			CursorSaveDelay: 5 * time.Second,
		},
		tm.clock,
	)
}

func (tm *testEmitterMocks) stubClock(since time.Duration) {
	now := time.Now()
	tm.clock.EXPECT().Now().Return(now).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(since).AnyTimes()
}

func newTestEvent(blockNumber uint64, logIndex uint) *domain.VaultEvent {
	return &domain.VaultEvent{
		Chain:           domain.ChainEthereumMainnet,
		ContractAddress: "0x1111111111111111111111111111111111111111",
		BlockNumber:     blockNumber,
		BlockTimestamp:  1_700_000_000,
		TxHash:          "0xtx",
		LogIndex:        logIndex,
		Payload: &domain.Transfer{
			From:  "0x2222222222222222222222222222222222222222",
			To:    "0x3333333333333333333333333333333333333333",
			Value: big.NewInt(1),
		},
	}
}

func TestEmitter_Run_WithStartBlock(t *testing.T) {
	tm := setupTestEmitter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.stubClock(0)
	event := newTestEvent(1001, 0)

	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			_ = handler(event)
			cancel()
			return nil
		})
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), event).Return(nil)

	// block 1000 is complete once a log of block 1001 is published
	tm.cursors.EXPECT().SetBlockCursor(gomock.Any(), testChain, uint64(1000)).Return(nil)

	err := tm.newEmitter(1000, 10).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_WithLastBlockCursor(t *testing.T) {
	tm := setupTestEmitter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.stubClock(0)
	tm.cursors.EXPECT().GetBlockCursor(gomock.Any(), testChain).Return(uint64(500), nil)
	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), uint64(501), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			cancel()
			return nil
		})

	err := tm.newEmitter(0, 10).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_WithNoLastBlockCursor(t *testing.T) {
	tm := setupTestEmitter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.stubClock(0)
	tm.cursors.EXPECT().GetBlockCursor(gomock.Any(), testChain).Return(uint64(0), nil)
	tm.subscriber.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(1000), nil)
	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			cancel()
			return nil
		})

	err := tm.newEmitter(0, 10).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_CursorSaveByBlockFrequency(t *testing.T) {
	tm := setupTestEmitter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.stubClock(0)

	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			// Completed blocks: 1000 (saved, first save), 1002 (too close), 1005 (saved), 1005 again (same block)
			steps := []struct {
				block uint64
				index uint
				save  bool
			}{
				{1001, 0, true},
				{1003, 0, false},
				{1006, 2, true},
				{1006, 3, false},
			}
			for _, step := range steps {
				event := newTestEvent(step.block, step.index)
				tm.publisher.EXPECT().PublishEvent(gomock.Any(), event).Return(nil)
				if step.save {
					tm.cursors.EXPECT().SetBlockCursor(gomock.Any(), testChain, step.block-1).Return(nil)
				}
				if err := handler(event); err != nil {
					return err
				}
			}

			cancel()
			return nil
		})

	err := tm.newEmitter(1000, 5).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_CursorSaveByDelay(t *testing.T) {
	tm := setupTestEmitter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.stubClock(10 * time.Second)

	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			for _, block := range []uint64{1001, 1002} {
				event := newTestEvent(block, 0)
				tm.publisher.EXPECT().PublishEvent(gomock.Any(), event).Return(nil)
				tm.cursors.EXPECT().SetBlockCursor(gomock.Any(), testChain, block-1).Return(nil)
				if err := handler(event); err != nil {
					return err
				}
			}

			cancel()
			return nil
		})

	err := tm.newEmitter(1000, 100).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_CursorSaveErrorIsNotFatal(t *testing.T) {
	tm := setupTestEmitter(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm.stubClock(0)
	event := newTestEvent(1001, 0)

	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			assert.NoError(t, handler(event))
			cancel()
			return nil
		})
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), event).Return(nil)
	tm.cursors.EXPECT().SetBlockCursor(gomock.Any(), testChain, uint64(1000)).Return(assert.AnError)

	err := tm.newEmitter(1000, 1).Run(ctx)
	assert.Equal(t, context.Canceled, err)
}

func TestEmitter_Run_PublishError(t *testing.T) {
	tm := setupTestEmitter(t)
	ctx := context.Background()

	tm.stubClock(0)
	event := newTestEvent(1001, 4)

	tm.subscriber.
		EXPECT().
		SubscribeEvents(gomock.Any(), uint64(1000), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fromBlock uint64, handler messaging.EventHandler) error {
			return handler(event)
		})
	tm.publisher.EXPECT().PublishEvent(gomock.Any(), event).Return(assert.AnError)

	err := tm.newEmitter(1000, 10).Run(ctx)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), event.MessageID())
}

func TestEmitter_Run_GetBlockCursorError(t *testing.T) {
	tm := setupTestEmitter(t)

	tm.cursors.EXPECT().GetBlockCursor(gomock.Any(), testChain).Return(uint64(0), assert.AnError)

	err := tm.newEmitter(0, 10).Run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get block cursor")
}

func TestEmitter_Run_GetLatestBlockError(t *testing.T) {
	tm := setupTestEmitter(t)

	tm.cursors.EXPECT().GetBlockCursor(gomock.Any(), testChain).Return(uint64(0), nil)
	tm.subscriber.EXPECT().GetLatestBlock(gomock.Any()).Return(uint64(0), assert.AnError)

	err := tm.newEmitter(0, 10).Run(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get latest block number")
}

func TestEmitter_Close(t *testing.T) {
	tm := setupTestEmitter(t)

	tm.subscriber.EXPECT().Close()
	tm.publisher.EXPECT().Close()

	tm.newEmitter(1000, 10).Close()
}
