package reconciler_test

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/reconciler"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

func marketID(n int) string {
	return domain.NormalizeMarketID(fmt.Sprintf("0x%064x", n))
}

func TestReconcile_SubmitCap(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SubmitCap{Caller: testAlice, MarketID: testMarket, Cap: big.NewInt(100)})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().UpsertConfigItem(testChain, testVault, testMarket, updatesEq{
		"pending_cap":          decimal.NewFromInt(100),
		"pending_cap_valid_at": uint64(87400),
	}).Return(nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_SetCap_EnablesMarket(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SetCap{Caller: testAlice, MarketID: testMarket, Cap: big.NewInt(100)})

	vault := testVaultRow()
	vault.WithdrawQueueLength = 2

	tm.expectApply(event)
	gomock.InOrder(
		tm.tx.EXPECT().GetConfigItem(testChain, testVault, testMarket).Return(&schema.VaultConfigItem{
			MarketID:          testMarket,
			PendingCap:        decimal.NewFromInt(100),
			PendingCapValidAt: 87400,
		}, nil),
		tm.tx.EXPECT().UpsertConfigItem(testChain, testVault, testMarket, updatesEq{
			"cap":                  decimal.NewFromInt(100),
			"pending_cap":          decimal.Zero,
			"pending_cap_valid_at": uint64(0),
			"enabled":              true,
			"removable_at":         uint64(0),
		}).Return(nil),
		tm.tx.EXPECT().GetVaultForUpdate(testChain, testVault).Return(vault, nil),
		tm.tx.EXPECT().UpsertQueueItem(gomock.Any()).DoAndReturn(func(item *schema.VaultQueueItem) error {
			assert.Equal(t, domain.QueueKindWithdraw, item.Kind)
			assert.Equal(t, 2, item.Ordinal)
			assert.Equal(t, testMarket, *item.MarketID)
			return nil
		}),
		tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{"withdraw_queue_length": 3}).Return(nil),
	)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_SetCap_AlreadyEnabled(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SetCap{Caller: testAlice, MarketID: testMarket, Cap: big.NewInt(250)})

	tm.expectApply(event)
	tm.tx.EXPECT().GetConfigItem(testChain, testVault, testMarket).Return(&schema.VaultConfigItem{
		MarketID: testMarket,
		Cap:      decimal.NewFromInt(100),
		Enabled:  true,
	}, nil)
	tm.tx.EXPECT().UpsertConfigItem(testChain, testVault, testMarket, gomock.Any()).Return(nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_SetCap_Zero(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SetCap{Caller: testAlice, MarketID: testMarket, Cap: big.NewInt(0)})

	tm.expectApply(event)
	tm.tx.EXPECT().UpsertConfigItem(testChain, testVault, testMarket, updatesEq{
		"cap":                  decimal.Zero,
		"pending_cap":          decimal.Zero,
		"pending_cap_valid_at": uint64(0),
	}).Return(nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_SubmitMarketRemoval(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SubmitMarketRemoval{Caller: testAlice, MarketID: testMarket})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().UpsertConfigItem(testChain, testVault, testMarket, updatesEq{"removable_at": uint64(87400)}).Return(nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_RevokePendingCap(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.RevokePendingCap{Caller: testAlice, MarketID: testMarket})

	tm.expectApply(event)
	tm.tx.EXPECT().UpsertConfigItem(testChain, testVault, testMarket, updatesEq{
		"pending_cap":          decimal.Zero,
		"pending_cap_valid_at": uint64(0),
	}).Return(nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_SetWithdrawQueue_Shrinks(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SetWithdrawQueue{Caller: testAlice, Queue: []string{marketID(3), marketID(0)}})

	vault := testVaultRow()
	vault.WithdrawQueueLength = 5

	previous := make([]schema.VaultQueueItem, 5)
	for i := range previous {
		id := marketID(i)
		previous[i] = schema.VaultQueueItem{Kind: domain.QueueKindWithdraw, Ordinal: i, MarketID: &id}
	}

	var written []*schema.VaultQueueItem
	tm.expectApply(event)
	tm.tx.EXPECT().GetVaultForUpdate(testChain, testVault).Return(vault, nil)
	tm.tx.EXPECT().GetQueue(testChain, testVault, domain.QueueKindWithdraw, 5).Return(previous, nil)
	tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{"withdraw_queue_length": 2}).Return(nil)
	tm.tx.EXPECT().UpsertQueueItem(gomock.Any()).DoAndReturn(func(item *schema.VaultQueueItem) error {
		written = append(written, item)
		return nil
	}).Times(5)

	removed := map[string]bool{}
	tm.tx.EXPECT().
		UpsertConfigItem(testChain, testVault, gomock.Any(), updatesEq{
			"cap":                  decimal.Zero,
			"pending_cap":          decimal.Zero,
			"pending_cap_valid_at": uint64(0),
			"enabled":              false,
			"removable_at":         uint64(0),
		}).
		DoAndReturn(func(_ domain.Chain, _ string, market string, _ map[string]interface{}) error {
			removed[market] = true
			return nil
		}).
		Times(3)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)

	assert.Len(t, written, 5)
	assert.Equal(t, marketID(3), *written[0].MarketID)
	assert.Equal(t, marketID(0), *written[1].MarketID)
	for i := 2; i < 5; i++ {
		assert.Equal(t, i, written[i].Ordinal)
		assert.Nil(t, written[i].MarketID)
	}
	assert.Equal(t, map[string]bool{marketID(1): true, marketID(2): true, marketID(4): true}, removed)
}

func TestReconcile_SetSupplyQueue_Grows(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SetSupplyQueue{Caller: testAlice, Queue: []string{marketID(1), marketID(2), marketID(3)}})

	vault := testVaultRow()
	vault.SupplyQueueLength = 1

	tm.expectApply(event)
	tm.tx.EXPECT().GetVaultForUpdate(testChain, testVault).Return(vault, nil)
	tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{"supply_queue_length": 3}).Return(nil)
	tm.tx.EXPECT().UpsertQueueItem(gomock.Any()).DoAndReturn(func(item *schema.VaultQueueItem) error {
		assert.Equal(t, domain.QueueKindSupply, item.Kind)
		assert.Equal(t, marketID(item.Ordinal+1), *item.MarketID)
		return nil
	}).Times(3)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_SetQueue_UnknownVault(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SetSupplyQueue{Caller: testAlice, Queue: []string{marketID(1)}})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVaultForUpdate(testChain, testVault).Return(nil, nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.ErrorIs(t, err, domain.ErrVaultNotFound)
}

func TestReconcile_GuardianLifecycle(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()

	submit := newEvent(&domain.SubmitGuardian{NewGuardian: testBob})
	tm.expectApply(submit)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{
		"pending_guardian":          testBob,
		"pending_guardian_valid_at": uint64(87400),
	}).Return(nil)
	assert.NoError(t, tm.reconciler.Reconcile(ctx, submit))

	accept := newEvent(&domain.SetGuardian{Caller: testAlice, Guardian: testBob})
	accept.LogIndex = 8
	tm.expectApply(accept)
	tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{
		"guardian":                  testBob,
		"pending_guardian":          domain.ETHEREUM_ZERO_ADDRESS,
		"pending_guardian_valid_at": uint64(0),
	}).Return(nil)
	assert.NoError(t, tm.reconciler.Reconcile(ctx, accept))
}

func TestReconcile_SubmitTimelock(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SubmitTimelock{NewTimelock: big.NewInt(172800)})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{
		"pending_timelock":          uint64(172800),
		"pending_timelock_valid_at": uint64(87400),
	}).Return(nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_SubmitTimelock_Overflow(t *testing.T) {
	tm := setupReconcilerTest(t)
	huge := new(big.Int).Lsh(big.NewInt(1), 70)

	err := tm.reconciler.Reconcile(context.Background(), newEvent(&domain.SubmitTimelock{NewTimelock: huge}))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestReconcile_TimelockBeyondBigint(t *testing.T) {
	tm := setupReconcilerTest(t)
	// max uint64: representable on chain, not in the timelock column
	huge := new(big.Int).SetUint64(math.MaxUint64)

	err := tm.reconciler.Reconcile(context.Background(), newEvent(&domain.SetTimelock{NewTimelock: huge}))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)

	err = tm.reconciler.Reconcile(context.Background(), newEvent(&domain.SubmitTimelock{NewTimelock: huge}))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestReconcile_SubmitGuardian_ValidAtOverflow(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SubmitGuardian{NewGuardian: testBob})

	vault := testVaultRow()
	vault.Timelock = math.MaxInt64
	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(vault, nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestReconcile_ConstructorEventOnMissingVault(t *testing.T) {
	payloads := []domain.EventPayload{
		&domain.OwnershipTransferred{PreviousOwner: domain.ETHEREUM_ZERO_ADDRESS, NewOwner: testAlice},
		&domain.SetName{Name: "Steakhouse USDC"},
		&domain.SetSymbol{Symbol: "steakUSDC"},
		&domain.SetTimelock{Caller: testAlice, NewTimelock: big.NewInt(86400)},
	}

	for _, payload := range payloads {
		t.Run(string(payload.Kind()), func(t *testing.T) {
			tm := setupReconcilerTest(t)
			event := newEvent(payload)

			tm.expectApply(event)
			tm.tx.EXPECT().
				UpdateVault(testChain, testVault, gomock.Any()).
				Return(fmt.Errorf("%w: %s", domain.ErrVaultNotFound, testVault))

			err := tm.reconciler.Reconcile(context.Background(), event)
			assert.NoError(t, err)
		})
	}
}

func TestReconcile_NonConstructorEventOnMissingVault(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SetCurator{NewCurator: testBob})

	tm.expectApply(event)
	tm.tx.EXPECT().
		UpdateVault(testChain, testVault, updatesEq{"curator": testBob}).
		Return(fmt.Errorf("%w: %s", domain.ErrVaultNotFound, testVault))

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.ErrorIs(t, err, domain.ErrVaultNotFound)
}

func TestToleratesMissingVault(t *testing.T) {
	assert.True(t, reconciler.ToleratesMissingVault(domain.EventKindSetName))
	assert.True(t, reconciler.ToleratesMissingVault(domain.EventKindOwnershipTransferred))
	assert.False(t, reconciler.ToleratesMissingVault(domain.EventKindTransfer))
	assert.False(t, reconciler.ToleratesMissingVault(domain.EventKindSubmitGuardian))
}

func TestReconcile_SetIsAllocator(t *testing.T) {
	tests := []struct {
		name        string
		current     []string
		isAllocator bool
		want        pq.StringArray
	}{
		{
			name:        "add",
			current:     []string{testAlice},
			isAllocator: true,
			want:        pq.StringArray(domain.NewAddressSet(testAlice, testBob).Slice()),
		},
		{
			name:        "remove",
			current:     []string{testAlice, testBob},
			isAllocator: false,
			want:        pq.StringArray{testAlice},
		},
		{
			name:        "already allocator",
			current:     []string{testBob},
			isAllocator: true,
		},
		{
			name:        "remove unknown",
			current:     []string{testAlice},
			isAllocator: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupReconcilerTest(t)
			event := newEvent(&domain.SetIsAllocator{Allocator: testBob, IsAllocator: tt.isAllocator})

			vault := testVaultRow()
			vault.Allocators = tt.current

			tm.expectApply(event)
			tm.tx.EXPECT().GetVaultForUpdate(testChain, testVault).Return(vault, nil)
			if tt.want != nil {
				tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{"allocators": tt.want}).Return(nil)
			}

			err := tm.reconciler.Reconcile(context.Background(), event)
			assert.NoError(t, err)
		})
	}
}

func TestReconcile_OwnershipTransfer(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()

	started := newEvent(&domain.OwnershipTransferStarted{PreviousOwner: testAlice, NewOwner: testBob})
	tm.expectApply(started)
	tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{"pending_owner": testBob}).Return(nil)
	assert.NoError(t, tm.reconciler.Reconcile(ctx, started))

	done := newEvent(&domain.OwnershipTransferred{PreviousOwner: testAlice, NewOwner: testBob})
	done.LogIndex = 9
	tm.expectApply(done)
	tm.tx.EXPECT().UpdateVault(testChain, testVault, updatesEq{
		"owner":         testBob,
		"pending_owner": domain.ETHEREUM_ZERO_ADDRESS,
	}).Return(nil)
	assert.NoError(t, tm.reconciler.Reconcile(ctx, done))
}
