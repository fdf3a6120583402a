package store

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

const (
	testChain = domain.ChainEthereumMainnet
	testVault = "0x1111111111111111111111111111111111111111"
	testAlice = "0xA11ce00000000000000000000000000000000001"
	testBob   = "0xb0B0000000000000000000000000000000000002"
	testAsset = "0xA5e7000000000000000000000000000000000003"
)

// =============================================================================
// Test Data Builders
// =============================================================================

// buildTestEvent creates an event whose log reference is derived from the arguments
func buildTestEvent(blockNumber uint64, logIndex uint) *domain.VaultEvent {
	return &domain.VaultEvent{
		Chain:           testChain,
		ContractAddress: testVault,
		BlockNumber:     blockNumber,
		BlockTimestamp:  1700000000 + blockNumber,
		TxHash:          fmt.Sprintf("0x%064x", blockNumber),
		LogIndex:        logIndex,
		Payload:         &domain.SetName{Name: "Vault"},
	}
}

// buildTestVault creates a vault row with zero-valued roles
func buildTestVault() *schema.Vault {
	return &schema.Vault{
		Chain:           testChain,
		Address:         testVault,
		Asset:           testAsset,
		AssetDecimals:   6,
		DecimalsOffset:  12,
		Name:            "Test Vault",
		Symbol:          "tVLT",
		Owner:           testAlice,
		PendingOwner:    domain.ETHEREUM_ZERO_ADDRESS,
		Curator:         domain.ETHEREUM_ZERO_ADDRESS,
		Guardian:        domain.ETHEREUM_ZERO_ADDRESS,
		PendingGuardian: domain.ETHEREUM_ZERO_ADDRESS,
		Timelock:        86400,
		Fee:             decimal.Zero,
		FeeRecipient:    domain.ETHEREUM_ZERO_ADDRESS,
		SkimRecipient:   domain.ETHEREUM_ZERO_ADDRESS,
		Allocators:      pq.StringArray{},
		TotalSupply:     decimal.Zero,
		LastTotalAssets: decimal.Zero,
		LostAssets:      decimal.Zero,
		CreatedBlock:    1,
	}
}

// seedVault creates the test vault through ApplyEvent
func seedVault(t *testing.T, store Store) {
	err := store.ApplyEvent(context.Background(), buildTestEvent(1, 0), func(tx VaultTx) error {
		created, err := tx.CreateVault(buildTestVault())
		require.True(t, created)
		return err
	})
	require.NoError(t, err)
}

func shares(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// RunStoreTests runs all store tests against a store implementation
func RunStoreTests(t *testing.T, initDB func(t *testing.T) Store, cleanupDB func(t *testing.T)) {
	tests := []struct {
		name string
		fn   func(t *testing.T, store Store)
	}{
		{"ApplyEvent rejects an already applied log", testApplyEventRejectsDuplicate},
		{"ApplyEvent rolls back on error", testApplyEventRollsBack},
		{"ApplyEvent advances the reconciled cursor", testApplyEventAdvancesCursor},
		{"IsApplied follows committed markers", testIsApplied},
		{"CreateVault is idempotent", testCreateVaultIdempotent},
		{"UpdateVault on a missing vault", testUpdateVaultMissing},
		{"UpdateVault sets allocators", testUpdateVaultAllocators},
		{"Credit and debit balances", testCreditDebitBalance},
		{"Debit of a missing holder", testDebitMissingHolder},
		{"Debit below zero is rejected", testDebitBelowZero},
		{"Total supply cannot go negative", testTotalSupplyNonNegative},
		{"UpsertConfigItem merges columns", testUpsertConfigItem},
		{"GetQueue honors the stored length", testGetQueueLength},
		{"InsertTransaction and list", testTransactions},
		{"Block cursor", testBlockCursor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := initDB(t)
			defer cleanupDB(t)
			tt.fn(t, store)
		})
	}
}

func testApplyEventRejectsDuplicate(t *testing.T, store Store) {
	ctx := context.Background()
	seedVault(t, store)

	event := buildTestEvent(2, 3)
	calls := 0
	apply := func(tx VaultTx) error {
		calls++
		return tx.UpdateVault(testChain, testVault, map[string]interface{}{"name": "Renamed"})
	}

	require.NoError(t, store.ApplyEvent(ctx, event, apply))
	err := store.ApplyEvent(ctx, event, apply)
	assert.ErrorIs(t, err, domain.ErrEventAlreadyApplied)
	assert.Equal(t, 1, calls)

	vault, err := store.GetVault(ctx, testChain, testVault)
	require.NoError(t, err)
	require.NotNil(t, vault)
	assert.Equal(t, "Renamed", vault.Name)
}

func testIsApplied(t *testing.T, store Store) {
	ctx := context.Background()
	seedVault(t, store)

	event := buildTestEvent(5, 1)

	applied, err := store.IsApplied(ctx, event)
	require.NoError(t, err)
	assert.False(t, applied)

	// a rolled back transaction leaves no marker behind
	err = store.ApplyEvent(ctx, event, func(tx VaultTx) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	applied, err = store.IsApplied(ctx, event)
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, store.ApplyEvent(ctx, event, func(tx VaultTx) error { return nil }))
	applied, err = store.IsApplied(ctx, event)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = store.IsApplied(ctx, buildTestEvent(5, 2))
	require.NoError(t, err)
	assert.False(t, applied)
}

func testApplyEventRollsBack(t *testing.T, store Store) {
	ctx := context.Background()
	seedVault(t, store)

	event := buildTestEvent(2, 0)
	boom := errors.New("boom")
	err := store.ApplyEvent(ctx, event, func(tx VaultTx) error {
		require.NoError(t, tx.CreditBalance(testChain, testVault, testAlice, shares(10)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	balance, err := store.GetBalance(ctx, testChain, testVault, testAlice)
	require.NoError(t, err)
	assert.Nil(t, balance)

	// The marker was rolled back too, so the same log applies on retry
	err = store.ApplyEvent(ctx, event, func(tx VaultTx) error {
		return tx.CreditBalance(testChain, testVault, testAlice, shares(10))
	})
	require.NoError(t, err)

	balance, err = store.GetBalance(ctx, testChain, testVault, testAlice)
	require.NoError(t, err)
	require.NotNil(t, balance)
	assert.True(t, balance.Shares.Equal(shares(10)))
}

func testApplyEventAdvancesCursor(t *testing.T, store Store) {
	ctx := context.Background()

	cursor, err := store.GetReconciledCursor(ctx, testChain)
	require.NoError(t, err)
	assert.Nil(t, cursor)

	seedVault(t, store)
	require.NoError(t, store.ApplyEvent(ctx, buildTestEvent(5, 2), func(tx VaultTx) error { return nil }))

	cursor, err = store.GetReconciledCursor(ctx, testChain)
	require.NoError(t, err)
	require.NotNil(t, cursor)
	assert.Equal(t, domain.LogCursor{BlockNumber: 5, LogIndex: 2}, *cursor)
}

func testCreateVaultIdempotent(t *testing.T, store Store) {
	ctx := context.Background()
	seedVault(t, store)

	err := store.ApplyEvent(ctx, buildTestEvent(2, 0), func(tx VaultTx) error {
		created, err := tx.CreateVault(buildTestVault())
		assert.False(t, created)
		return err
	})
	require.NoError(t, err)

	vault, err := store.GetVault(ctx, testChain, testVault)
	require.NoError(t, err)
	require.NotNil(t, vault)
	assert.Equal(t, uint8(6), vault.AssetDecimals)
	assert.Equal(t, uint8(12), vault.DecimalsOffset)
	assert.Equal(t, uint64(86400), vault.Timelock)
	assert.Empty(t, vault.Allocators)

	addresses, err := store.ListVaultAddresses(ctx, testChain)
	require.NoError(t, err)
	assert.Equal(t, []string{testVault}, addresses)

	missing, err := store.GetVault(ctx, testChain, testBob)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testUpdateVaultMissing(t *testing.T, store Store) {
	err := store.ApplyEvent(context.Background(), buildTestEvent(2, 0), func(tx VaultTx) error {
		return tx.UpdateVault(testChain, testVault, map[string]interface{}{"curator": testBob})
	})
	assert.ErrorIs(t, err, domain.ErrVaultNotFound)
}

func testUpdateVaultAllocators(t *testing.T, store Store) {
	ctx := context.Background()
	seedVault(t, store)

	err := store.ApplyEvent(ctx, buildTestEvent(2, 0), func(tx VaultTx) error {
		vault, err := tx.GetVaultForUpdate(testChain, testVault)
		require.NoError(t, err)
		require.NotNil(t, vault)
		return tx.UpdateVault(testChain, testVault, map[string]interface{}{
			"allocators": pq.StringArray{testAlice, testBob},
		})
	})
	require.NoError(t, err)

	vault, err := store.GetVault(ctx, testChain, testVault)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{testAlice, testBob}, []string(vault.Allocators))
}

func testCreditDebitBalance(t *testing.T, store Store) {
	ctx := context.Background()
	seedVault(t, store)

	err := store.ApplyEvent(ctx, buildTestEvent(2, 0), func(tx VaultTx) error {
		if err := tx.AdjustTotalSupply(testChain, testVault, shares(1000)); err != nil {
			return err
		}
		return tx.CreditBalance(testChain, testVault, testAlice, shares(1000))
	})
	require.NoError(t, err)

	err = store.ApplyEvent(ctx, buildTestEvent(3, 0), func(tx VaultTx) error {
		if err := tx.DebitBalance(testChain, testVault, testAlice, shares(400)); err != nil {
			return err
		}
		return tx.CreditBalance(testChain, testVault, testBob, shares(400))
	})
	require.NoError(t, err)

	// Credits accumulate on an existing row
	err = store.ApplyEvent(ctx, buildTestEvent(4, 0), func(tx VaultTx) error {
		return tx.CreditBalance(testChain, testVault, testBob, shares(1))
	})
	require.NoError(t, err)

	alice, err := store.GetBalance(ctx, testChain, testVault, testAlice)
	require.NoError(t, err)
	assert.True(t, alice.Shares.Equal(shares(600)))

	bob, err := store.GetBalance(ctx, testChain, testVault, testBob)
	require.NoError(t, err)
	assert.True(t, bob.Shares.Equal(shares(401)))

	total, err := store.SumBalances(ctx, testChain, testVault)
	require.NoError(t, err)
	assert.True(t, total.Equal(shares(1001)), total.String())

	balances, err := store.ListBalances(ctx, testChain, testVault)
	require.NoError(t, err)
	assert.Len(t, balances, 2)
}

func testDebitMissingHolder(t *testing.T, store Store) {
	seedVault(t, store)

	err := store.ApplyEvent(context.Background(), buildTestEvent(2, 0), func(tx VaultTx) error {
		return tx.DebitBalance(testChain, testVault, testBob, shares(1))
	})
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)
}

func testDebitBelowZero(t *testing.T, store Store) {
	ctx := context.Background()
	seedVault(t, store)

	require.NoError(t, store.ApplyEvent(ctx, buildTestEvent(2, 0), func(tx VaultTx) error {
		return tx.CreditBalance(testChain, testVault, testAlice, shares(5))
	}))

	err := store.ApplyEvent(ctx, buildTestEvent(3, 0), func(tx VaultTx) error {
		if err := tx.CreditBalance(testChain, testVault, testBob, shares(6)); err != nil {
			return err
		}
		return tx.DebitBalance(testChain, testVault, testAlice, shares(6))
	})
	assert.ErrorIs(t, err, domain.ErrNegativeBalance)

	// Nothing from the failed event is visible
	alice, err := store.GetBalance(ctx, testChain, testVault, testAlice)
	require.NoError(t, err)
	assert.True(t, alice.Shares.Equal(shares(5)))

	bob, err := store.GetBalance(ctx, testChain, testVault, testBob)
	require.NoError(t, err)
	assert.Nil(t, bob)
}

func testTotalSupplyNonNegative(t *testing.T, store Store) {
	seedVault(t, store)

	err := store.ApplyEvent(context.Background(), buildTestEvent(2, 0), func(tx VaultTx) error {
		return tx.AdjustTotalSupply(testChain, testVault, shares(-1))
	})
	assert.ErrorIs(t, err, domain.ErrNegativeBalance)
}

func testUpsertConfigItem(t *testing.T, store Store) {
	ctx := context.Background()
	marketID := domain.NormalizeMarketID("0x01")
	hugeCap := decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 184), 0)

	err := store.ApplyEvent(ctx, buildTestEvent(2, 0), func(tx VaultTx) error {
		return tx.UpsertConfigItem(testChain, testVault, marketID, map[string]interface{}{
			"pending_cap":          hugeCap,
			"pending_cap_valid_at": uint64(87400),
		})
	})
	require.NoError(t, err)

	err = store.ApplyEvent(ctx, buildTestEvent(3, 0), func(tx VaultTx) error {
		return tx.UpsertConfigItem(testChain, testVault, marketID, map[string]interface{}{
			"removable_at": uint64(99999),
		})
	})
	require.NoError(t, err)

	item, err := store.GetConfigItem(ctx, testChain, testVault, marketID)
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.True(t, item.PendingCap.Equal(hugeCap))
	assert.Equal(t, uint64(87400), item.PendingCapValidAt)
	assert.Equal(t, uint64(99999), item.RemovableAt)
	assert.True(t, item.Cap.IsZero())
	assert.False(t, item.Enabled)
}

func testGetQueueLength(t *testing.T, store Store) {
	ctx := context.Background()
	seedVault(t, store)

	m1 := domain.NormalizeMarketID("0x01")
	m2 := domain.NormalizeMarketID("0x02")
	m3 := domain.NormalizeMarketID("0x03")

	err := store.ApplyEvent(ctx, buildTestEvent(2, 0), func(tx VaultTx) error {
		for i, id := range []string{m1, m2, m3} {
			if err := tx.UpsertQueueItem(&schema.VaultQueueItem{
				Chain:        testChain,
				VaultAddress: testVault,
				Kind:         domain.QueueKindSupply,
				Ordinal:      i,
				MarketID:     &id,
			}); err != nil {
				return err
			}
		}
		return tx.UpdateVault(testChain, testVault, map[string]interface{}{"supply_queue_length": 2})
	})
	require.NoError(t, err)

	queue, err := store.GetQueue(ctx, testChain, testVault, domain.QueueKindSupply)
	require.NoError(t, err)
	require.Len(t, queue, 2)
	assert.Equal(t, m1, *queue[0].MarketID)
	assert.Equal(t, m2, *queue[1].MarketID)

	withdraw, err := store.GetQueue(ctx, testChain, testVault, domain.QueueKindWithdraw)
	require.NoError(t, err)
	assert.Empty(t, withdraw)

	_, err = store.GetQueue(ctx, testChain, testBob, domain.QueueKindSupply)
	assert.ErrorIs(t, err, domain.ErrVaultNotFound)
}

func testTransactions(t *testing.T, store Store) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0).UTC()
	receiver := testBob

	for i, txType := range []schema.VaultTransactionType{
		schema.VaultTransactionTypeDeposit,
		schema.VaultTransactionTypeWithdraw,
	} {
		event := buildTestEvent(uint64(10+i), 0) //nolint:gosec,G115
		record := &schema.VaultTransaction{
			Chain:        testChain,
			TxHash:       event.TxHash,
			LogIndex:     event.LogIndex,
			BlockNumber:  event.BlockNumber,
			Timestamp:    now,
			VaultAddress: testVault,
			Type:         txType,
			User:         testAlice,
			Sender:       testAlice,
			Receiver:     &receiver,
			Shares:       shares(100),
			Assets:       shares(99),
		}
		require.NoError(t, store.ApplyEvent(ctx, event, func(tx VaultTx) error {
			if err := tx.InsertTransaction(record); err != nil {
				return err
			}
			// A second insert for the same log is ignored
			return tx.InsertTransaction(record)
		}))
	}

	first := buildTestEvent(10, 0)
	record, err := store.GetTransaction(ctx, testChain, first.TxHash, 0)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, schema.VaultTransactionTypeDeposit, record.Type)
	assert.True(t, record.Assets.Equal(shares(99)))
	assert.Equal(t, testBob, *record.Receiver)
	assert.Nil(t, record.MarketID)

	records, err := store.ListTransactions(ctx, TransactionQueryFilter{
		Chain:        testChain,
		VaultAddress: testVault,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, schema.VaultTransactionTypeWithdraw, records[0].Type)

	records, err = store.ListTransactions(ctx, TransactionQueryFilter{
		Chain: testChain,
		Types: []schema.VaultTransactionType{schema.VaultTransactionTypeDeposit},
	})
	require.NoError(t, err)
	require.Len(t, records, 1)

	missing, err := store.GetTransaction(ctx, testChain, "0xmissing", 0)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func testBlockCursor(t *testing.T, store Store) {
	ctx := context.Background()

	cursor, err := store.GetBlockCursor(ctx, string(testChain))
	require.NoError(t, err)
	assert.Zero(t, cursor)

	require.NoError(t, store.SetBlockCursor(ctx, string(testChain), 100))
	require.NoError(t, store.SetBlockCursor(ctx, string(testChain), 150))

	cursor, err = store.GetBlockCursor(ctx, string(testChain))
	require.NoError(t, err)
	assert.Equal(t, uint64(150), cursor)
}
