package reconciler_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/mocks"
	"github.com/feral-file/ff-vault-indexer/internal/reconciler"
	"github.com/feral-file/ff-vault-indexer/internal/store"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

const (
	testChain = domain.ChainEthereumMainnet
	testTx    = "0x5f2c3a7d6e1b0c9a8f7e6d5c4b3a29181716151413121110090807060504abcd"
)

var (
	testVault        = domain.NormalizeAddress("0x1111111111111111111111111111111111111111")
	testAsset        = domain.NormalizeAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	testAlice        = domain.NormalizeAddress("0x2222222222222222222222222222222222222222")
	testBob          = domain.NormalizeAddress("0x3333333333333333333333333333333333333333")
	testFeeRecipient = domain.NormalizeAddress("0x4444444444444444444444444444444444444444")
	testMarket       = domain.NormalizeMarketID("0x00000000000000000000000000000000000000000000000000000000000000aa")
)

func TestMain(m *testing.M) {
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

// testReconcilerMocks contains the mocks needed for testing the reconciler
type testReconcilerMocks struct {
	ctrl       *gomock.Controller
	store      *mocks.MockStore
	tx         *mocks.MockVaultTx
	caller     *mocks.MockVaultCaller
	reconciler reconciler.Reconciler
}

func setupReconcilerTest(t *testing.T) *testReconcilerMocks {
	ctrl := gomock.NewController(t)

	tm := &testReconcilerMocks{
		ctrl:   ctrl,
		store:  mocks.NewMockStore(ctrl),
		tx:     mocks.NewMockVaultTx(ctrl),
		caller: mocks.NewMockVaultCaller(ctrl),
	}

	tm.reconciler = reconciler.NewReconciler(tm.store, tm.caller, reconciler.Config{
		MaxRetries:      2,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
	})

	return tm
}

// expectApply runs the transaction body of the given event against the mocked VaultTx
func (tm *testReconcilerMocks) expectApply(event *domain.VaultEvent) {
	tm.store.EXPECT().
		ApplyEvent(gomock.Any(), event, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.VaultEvent, fn func(store.VaultTx) error) error {
			return fn(tm.tx)
		})
}

// expectNotApplied lets an event past the processed log check that guards contract calls
func (tm *testReconcilerMocks) expectNotApplied(event *domain.VaultEvent) {
	tm.store.EXPECT().IsApplied(gomock.Any(), event).Return(false, nil)
}

func newEvent(payload domain.EventPayload) *domain.VaultEvent {
	return &domain.VaultEvent{
		Chain:           testChain,
		ContractAddress: testVault,
		BlockNumber:     20_000_000,
		BlockHash:       "0xblock",
		BlockTimestamp:  1000,
		TxHash:          testTx,
		LogIndex:        7,
		Payload:         payload,
	}
}

func testVaultRow() *schema.Vault {
	return &schema.Vault{
		Chain:        testChain,
		Address:      testVault,
		Asset:        testAsset,
		Owner:        testAlice,
		Timelock:     86400,
		FeeRecipient: testFeeRecipient,
		Allocators:   []string{},
	}
}

// decimalEq matches a decimal.Decimal by value rather than by representation
type decimalEq struct{ want decimal.Decimal }

func eqDecimal(v int64) gomock.Matcher { return decimalEq{want: decimal.NewFromInt(v)} }

func (m decimalEq) Matches(x interface{}) bool {
	got, ok := x.(decimal.Decimal)
	return ok && got.Equal(m.want)
}

func (m decimalEq) String() string { return "is decimal " + m.want.String() }

// updatesEq matches a column update map, comparing decimals by value
type updatesEq map[string]interface{}

func (m updatesEq) Matches(x interface{}) bool {
	got, ok := x.(map[string]interface{})
	if !ok || len(got) != len(m) {
		return false
	}
	for key, want := range m {
		value, ok := got[key]
		if !ok {
			return false
		}
		if wantDecimal, ok := want.(decimal.Decimal); ok {
			gotDecimal, ok := value.(decimal.Decimal)
			if !ok || !gotDecimal.Equal(wantDecimal) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(value, want) {
			return false
		}
	}
	return true
}

func (m updatesEq) String() string { return fmt.Sprintf("has updates %v", map[string]interface{}(m)) }

func TestReconcile_InvalidEvent(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()

	err := tm.reconciler.Reconcile(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)

	event := newEvent(nil)
	err = tm.reconciler.Reconcile(ctx, event)
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)

	event = newEvent(&domain.SetName{Name: "x"})
	event.Chain = "ethereum"
	err = tm.reconciler.Reconcile(ctx, event)
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestReconcile_DispatchesEveryKind(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()

	tm.store.EXPECT().
		ApplyEvent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.ErrEventAlreadyApplied).
		AnyTimes()
	tm.store.EXPECT().IsApplied(gomock.Any(), gomock.Any()).Return(true, nil).AnyTimes()

	for _, kind := range domain.AllEventKinds {
		t.Run(string(kind), func(t *testing.T) {
			payload, err := domain.NewEventPayload(kind)
			require.NoError(t, err)

			err = tm.reconciler.Reconcile(ctx, newEvent(payload))
			assert.NotErrorIs(t, err, domain.ErrUnsupportedEvent)
			if err != nil {
				assert.ErrorIs(t, err, domain.ErrEventAlreadyApplied)
			}
		})
	}
}

func TestReconcile_AlreadyApplied(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.SetCurator{NewCurator: testBob})

	tm.store.EXPECT().ApplyEvent(gomock.Any(), event, gomock.Any()).Return(domain.ErrEventAlreadyApplied)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.ErrorIs(t, err, domain.ErrEventAlreadyApplied)
}

func TestReconcile_CreateVault(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()

	event := newEvent(&domain.CreateVault{
		Vault:           testVault,
		Caller:          testAlice,
		InitialOwner:    testAlice,
		InitialTimelock: big.NewInt(86400),
		Asset:           testAsset,
		Name:            "Steakhouse USDC",
		Symbol:          "steakUSDC",
	})
	event.ContractAddress = domain.NormalizeAddress("0xa9c3d3a366466fa809d1ae982fb2c46e5fc41101")

	tm.expectNotApplied(event)
	tm.caller.EXPECT().AssetDecimals(gomock.Any(), testChain, testAsset).Return(uint8(6), nil)
	tm.expectApply(event)
	tm.tx.EXPECT().CreateVault(gomock.Any()).DoAndReturn(func(v *schema.Vault) (bool, error) {
		assert.Equal(t, testVault, v.Address)
		assert.Equal(t, testAsset, v.Asset)
		assert.Equal(t, uint8(6), v.AssetDecimals)
		assert.Equal(t, uint8(12), v.DecimalsOffset)
		assert.Equal(t, uint64(86400), v.Timelock)
		assert.Equal(t, testAlice, v.Owner)
		assert.Equal(t, domain.ETHEREUM_ZERO_ADDRESS, v.Curator)
		assert.Equal(t, domain.ETHEREUM_ZERO_ADDRESS, v.FeeRecipient)
		assert.Equal(t, "steakUSDC", v.Symbol)
		assert.Equal(t, uint64(20_000_000), v.CreatedBlock)
		assert.Empty(t, v.Allocators)
		assert.True(t, v.TotalSupply.IsZero())
		return true, nil
	})

	err := tm.reconciler.Reconcile(ctx, event)
	require.NoError(t, err)
}

func TestReconcile_CreateVault_AlreadyIndexed(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.CreateVault{Vault: testVault, Asset: testAsset})

	tm.expectNotApplied(event)
	tm.caller.EXPECT().AssetDecimals(gomock.Any(), testChain, testAsset).Return(uint8(18), nil)
	tm.expectApply(event)
	tm.tx.EXPECT().CreateVault(gomock.Any()).DoAndReturn(func(v *schema.Vault) (bool, error) {
		assert.Equal(t, uint8(0), v.DecimalsOffset)
		return false, nil
	})

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_CreateVault_DecimalsRetryExhausted(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.CreateVault{Vault: testVault, Asset: testAsset})

	tm.expectNotApplied(event)
	// one attempt plus two retries
	tm.caller.EXPECT().
		AssetDecimals(gomock.Any(), testChain, testAsset).
		Return(uint8(0), errors.New("connection refused")).
		Times(3)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
	assert.Contains(t, err.Error(), "after 3 attempts")
}

func TestReconcile_Transfer_Mint(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.Transfer{From: domain.ETHEREUM_ZERO_ADDRESS, To: testAlice, Value: big.NewInt(100)})

	tm.expectApply(event)
	gomock.InOrder(
		tm.tx.EXPECT().AdjustTotalSupply(testChain, testVault, eqDecimal(100)).Return(nil),
		tm.tx.EXPECT().CreditBalance(testChain, testVault, testAlice, eqDecimal(100)).Return(nil),
	)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_Transfer_Burn(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.Transfer{From: testAlice, To: domain.ETHEREUM_ZERO_ADDRESS, Value: big.NewInt(40)})

	tm.expectApply(event)
	gomock.InOrder(
		tm.tx.EXPECT().AdjustTotalSupply(testChain, testVault, eqDecimal(-40)).Return(nil),
		tm.tx.EXPECT().DebitBalance(testChain, testVault, testAlice, eqDecimal(40)).Return(nil),
	)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_Transfer_BurnBeyondBalance(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.Transfer{From: testAlice, To: domain.ETHEREUM_ZERO_ADDRESS, Value: big.NewInt(40)})

	tm.expectApply(event)
	tm.tx.EXPECT().AdjustTotalSupply(testChain, testVault, eqDecimal(-40)).Return(nil)
	tm.tx.EXPECT().DebitBalance(testChain, testVault, testAlice, eqDecimal(40)).Return(domain.ErrNegativeBalance)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.ErrorIs(t, err, domain.ErrNegativeBalance)
}

func TestReconcile_Transfer_Zero(t *testing.T) {
	tm := setupReconcilerTest(t)

	err := tm.reconciler.Reconcile(context.Background(),
		newEvent(&domain.Transfer{From: testAlice, To: testBob, Value: big.NewInt(0)}))
	assert.NoError(t, err)
}

func TestReconcile_Transfer_ZeroToZero(t *testing.T) {
	tm := setupReconcilerTest(t)

	err := tm.reconciler.Reconcile(context.Background(), newEvent(&domain.Transfer{
		From:  domain.ETHEREUM_ZERO_ADDRESS,
		To:    domain.ETHEREUM_ZERO_ADDRESS,
		Value: big.NewInt(1),
	}))
	assert.ErrorIs(t, err, domain.ErrInvalidEvent)
}

func TestReconcile_Transfer_BetweenHolders(t *testing.T) {
	tests := []struct {
		name     string
		to       string
		wantType schema.VaultTransactionType
		wantUser string
	}{
		{
			name:     "plain transfer",
			to:       testBob,
			wantType: schema.VaultTransactionTypeTransfer,
			wantUser: testAlice,
		},
		{
			name:     "transfer to fee recipient",
			to:       testFeeRecipient,
			wantType: schema.VaultTransactionTypeFeeDistribution,
			wantUser: testFeeRecipient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupReconcilerTest(t)
			ctx := context.Background()
			event := newEvent(&domain.Transfer{From: testAlice, To: tt.to, Value: big.NewInt(1_000)})

			tm.expectNotApplied(event)
			tm.store.EXPECT().GetVault(ctx, testChain, testVault).Return(testVaultRow(), nil)
			tm.caller.EXPECT().
				ConvertToAssets(ctx, testChain, testVault, big.NewInt(1_000), uint64(20_000_000)).
				Return(big.NewInt(1_050), nil)
			tm.expectApply(event)
			tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
			tm.tx.EXPECT().DebitBalance(testChain, testVault, testAlice, eqDecimal(1_000)).Return(nil)
			tm.tx.EXPECT().CreditBalance(testChain, testVault, tt.to, eqDecimal(1_000)).Return(nil)
			tm.tx.EXPECT().InsertTransaction(gomock.Any()).DoAndReturn(func(record *schema.VaultTransaction) error {
				assert.Equal(t, tt.wantType, record.Type)
				assert.Equal(t, tt.wantUser, record.User)
				assert.Equal(t, testAlice, record.Sender)
				require.NotNil(t, record.Receiver)
				assert.Equal(t, tt.to, *record.Receiver)
				assert.True(t, record.Shares.Equal(decimal.NewFromInt(1_000)))
				assert.True(t, record.Assets.Equal(decimal.NewFromInt(1_050)))
				assert.Equal(t, testTx, record.TxHash)
				assert.Equal(t, uint(7), record.LogIndex)
				assert.Equal(t, time.Unix(1000, 0).UTC(), record.Timestamp)
				return nil
			})

			err := tm.reconciler.Reconcile(ctx, event)
			assert.NoError(t, err)
		})
	}
}

func TestReconcile_Transfer_UnknownVault(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()
	event := newEvent(&domain.Transfer{From: testAlice, To: testBob, Value: big.NewInt(5)})

	tm.expectNotApplied(event)
	tm.store.EXPECT().GetVault(ctx, testChain, testVault).Return(nil, nil)

	err := tm.reconciler.Reconcile(ctx, event)
	assert.ErrorIs(t, err, domain.ErrVaultNotFound)
}

func TestReconcile_Transfer_ConversionFailed(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()
	event := newEvent(&domain.Transfer{From: testAlice, To: testBob, Value: big.NewInt(5)})

	tm.expectNotApplied(event)
	tm.store.EXPECT().GetVault(ctx, testChain, testVault).Return(testVaultRow(), nil)
	tm.caller.EXPECT().
		ConvertToAssets(ctx, testChain, testVault, gomock.Any(), uint64(20_000_000)).
		Return(nil, errors.New("header not found")).
		Times(3)

	err := tm.reconciler.Reconcile(ctx, event)
	assert.ErrorIs(t, err, domain.ErrConversionFailed)
}

func TestReconcile_ReplayedEventSkipsContractCalls(t *testing.T) {
	tests := []struct {
		name    string
		payload domain.EventPayload
	}{
		{
			name:    "transfer between holders",
			payload: &domain.Transfer{From: testAlice, To: testBob, Value: big.NewInt(5)},
		},
		{
			name:    "interest with fee shares",
			payload: &domain.AccrueInterest{NewTotalAssets: big.NewInt(2_000), FeeShares: big.NewInt(10)},
		},
		{
			name:    "vault creation",
			payload: &domain.CreateVault{Vault: testVault, Asset: testAsset, InitialTimelock: big.NewInt(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupReconcilerTest(t)
			event := newEvent(tt.payload)

			// The node no longer serves the event's block; any call would fail
			tm.caller.EXPECT().
				ConvertToAssets(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, errors.New("missing trie node")).
				Times(0)
			tm.caller.EXPECT().
				AssetDecimals(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(uint8(0), errors.New("missing trie node")).
				Times(0)
			tm.store.EXPECT().IsApplied(gomock.Any(), event).Return(true, nil)

			err := tm.reconciler.Reconcile(context.Background(), event)
			assert.ErrorIs(t, err, domain.ErrEventAlreadyApplied)
			assert.NotErrorIs(t, err, domain.ErrConversionFailed)
		})
	}
}

func TestReconcile_ProcessedLogCheckError(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.Transfer{From: testAlice, To: testBob, Value: big.NewInt(5)})

	tm.store.EXPECT().IsApplied(gomock.Any(), event).Return(false, assert.AnError)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestReconcile_Deposit(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.Deposit{Sender: testBob, Owner: testAlice, Assets: big.NewInt(1_000_000), Shares: big.NewInt(990_000)})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().InsertTransaction(gomock.Any()).DoAndReturn(func(record *schema.VaultTransaction) error {
		assert.Equal(t, schema.VaultTransactionTypeDeposit, record.Type)
		assert.Equal(t, testAlice, record.User)
		assert.Equal(t, testBob, record.Sender)
		assert.Nil(t, record.Receiver)
		assert.True(t, record.Assets.Equal(decimal.NewFromInt(1_000_000)))
		assert.True(t, record.Shares.Equal(decimal.NewFromInt(990_000)))
		return nil
	})

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

// A deposit or withdrawal that moves assets but rounds to zero shares (or the reverse)
// still changed the vault, so it is recorded. Only both amounts at zero count as no activity.
func TestReconcile_OneSidedZeroIsRecorded(t *testing.T) {
	tests := []struct {
		name     string
		payload  domain.EventPayload
		wantType schema.VaultTransactionType
	}{
		{
			name:     "deposit rounding to zero shares",
			payload:  &domain.Deposit{Sender: testAlice, Owner: testAlice, Assets: big.NewInt(1), Shares: big.NewInt(0)},
			wantType: schema.VaultTransactionTypeDeposit,
		},
		{
			name:     "withdrawal of zero assets",
			payload:  &domain.Withdraw{Sender: testAlice, Receiver: testAlice, Owner: testAlice, Assets: big.NewInt(0), Shares: big.NewInt(1)},
			wantType: schema.VaultTransactionTypeWithdraw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupReconcilerTest(t)
			event := newEvent(tt.payload)

			tm.expectApply(event)
			tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
			tm.tx.EXPECT().InsertTransaction(gomock.Any()).DoAndReturn(func(record *schema.VaultTransaction) error {
				assert.Equal(t, tt.wantType, record.Type)
				return nil
			})

			err := tm.reconciler.Reconcile(context.Background(), event)
			assert.NoError(t, err)
		})
	}
}

func TestReconcile_ZeroActivitySkipped(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()

	payloads := []domain.EventPayload{
		&domain.Deposit{Sender: testAlice, Owner: testAlice, Assets: big.NewInt(0), Shares: big.NewInt(0)},
		&domain.Withdraw{Sender: testAlice, Receiver: testAlice, Owner: testAlice},
		&domain.ReallocateSupply{Caller: testAlice, MarketID: testMarket, SuppliedAssets: big.NewInt(0), SuppliedShares: big.NewInt(0)},
		&domain.ReallocateWithdraw{Caller: testAlice, MarketID: testMarket},
	}
	for _, payload := range payloads {
		assert.NoError(t, tm.reconciler.Reconcile(ctx, newEvent(payload)), payload.Kind())
	}
}

func TestReconcile_Withdraw(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.Withdraw{
		Sender:   testAlice,
		Receiver: testBob,
		Owner:    testAlice,
		Assets:   big.NewInt(500),
		Shares:   big.NewInt(480),
	})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().InsertTransaction(gomock.Any()).DoAndReturn(func(record *schema.VaultTransaction) error {
		assert.Equal(t, schema.VaultTransactionTypeWithdraw, record.Type)
		assert.Equal(t, testAlice, record.User)
		require.NotNil(t, record.Receiver)
		assert.Equal(t, testBob, *record.Receiver)
		assert.True(t, record.Shares.Equal(decimal.NewFromInt(480)))
		return nil
	})

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_Withdraw_UnknownVault(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.Withdraw{Sender: testAlice, Receiver: testAlice, Owner: testAlice, Assets: big.NewInt(1), Shares: big.NewInt(1)})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(nil, nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.ErrorIs(t, err, domain.ErrVaultNotFound)
}

func TestReconcile_ReallocateWithdraw(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.ReallocateWithdraw{
		Caller:          testBob,
		MarketID:        "0xAA",
		WithdrawnAssets: big.NewInt(300),
		WithdrawnShares: big.NewInt(290),
	})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().InsertTransaction(gomock.Any()).DoAndReturn(func(record *schema.VaultTransaction) error {
		assert.Equal(t, schema.VaultTransactionTypeReallocateWithdraw, record.Type)
		assert.Equal(t, testBob, record.User)
		assert.Equal(t, testBob, record.Sender)
		require.NotNil(t, record.MarketID)
		assert.Equal(t, testMarket, *record.MarketID)
		return nil
	})

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_AccrueInterest_NoFee(t *testing.T) {
	tm := setupReconcilerTest(t)
	event := newEvent(&domain.AccrueInterest{NewTotalAssets: big.NewInt(2_000), FeeShares: big.NewInt(0)})

	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().
		UpdateVault(testChain, testVault, updatesEq{"last_total_assets": decimal.NewFromInt(2_000)}).
		Return(nil)

	err := tm.reconciler.Reconcile(context.Background(), event)
	assert.NoError(t, err)
}

func TestReconcile_AccrueInterest_WithFee(t *testing.T) {
	tm := setupReconcilerTest(t)
	ctx := context.Background()
	event := newEvent(&domain.AccrueInterest{NewTotalAssets: big.NewInt(2_000), FeeShares: big.NewInt(10)})

	tm.expectNotApplied(event)
	tm.store.EXPECT().GetVault(ctx, testChain, testVault).Return(testVaultRow(), nil)
	tm.caller.EXPECT().ConvertToAssets(ctx, testChain, testVault, big.NewInt(10), uint64(20_000_000)).Return(big.NewInt(11), nil)
	tm.expectApply(event)
	tm.tx.EXPECT().GetVault(testChain, testVault).Return(testVaultRow(), nil)
	tm.tx.EXPECT().UpdateVault(testChain, testVault, gomock.Any()).Return(nil)
	tm.tx.EXPECT().InsertTransaction(gomock.Any()).DoAndReturn(func(record *schema.VaultTransaction) error {
		assert.Equal(t, schema.VaultTransactionTypeFee, record.Type)
		assert.Equal(t, testFeeRecipient, record.User)
		assert.Equal(t, testVault, record.Sender)
		require.NotNil(t, record.Receiver)
		assert.Equal(t, testFeeRecipient, *record.Receiver)
		assert.True(t, record.Shares.Equal(decimal.NewFromInt(10)))
		assert.True(t, record.Assets.Equal(decimal.NewFromInt(11)))
		return nil
	})

	err := tm.reconciler.Reconcile(ctx, event)
	assert.NoError(t, err)
}
