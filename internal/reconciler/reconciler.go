package reconciler

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-vault-indexer/internal/store"
)

// Config holds the retry policy around read-only contract calls
type Config struct {
	// MaxRetries bounds the number of retries of a failed contract call
	MaxRetries uint64
	// InitialInterval is the delay before the first retry
	InitialInterval time.Duration
	// MaxInterval caps the delay between retries
	MaxInterval time.Duration
	// MaxElapsedTime bounds the total time spent retrying one call
	MaxElapsedTime time.Duration
}

// DefaultConfig returns the retry policy used when none is configured
func DefaultConfig() Config {
	return Config{
		MaxRetries:      5,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		MaxElapsedTime:  time.Minute,
	}
}

// Reconciler applies vault events to the entity store.
// Events of one chain must be reconciled one at a time in log order.
//
//go:generate mockgen -source=reconciler.go -destination=../mocks/reconciler.go -package=mocks -mock_names=Reconciler=MockReconciler
type Reconciler interface {
	// Reconcile applies a single event atomically.
	// It returns domain.ErrEventAlreadyApplied when the event was applied before.
	Reconcile(ctx context.Context, event *domain.VaultEvent) error
}

type reconciler struct {
	store  store.Store
	caller ethereum.VaultCaller
	config Config
}

// NewReconciler creates a new reconciler
func NewReconciler(st store.Store, caller ethereum.VaultCaller, cfg Config) Reconciler {
	return &reconciler{
		store:  st,
		caller: caller,
		config: cfg,
	}
}

// Reconcile routes an event to the reconciler of its kind
func (r *reconciler) Reconcile(ctx context.Context, event *domain.VaultEvent) error {
	if event == nil || !event.Valid() {
		return fmt.Errorf("%w: incomplete event", domain.ErrInvalidEvent)
	}

	var err error
	switch p := event.Payload.(type) {
	// Vault creation
	case *domain.CreateVault:
		err = r.createVault(ctx, event, p)

	// Share ledger
	case *domain.Transfer:
		err = r.reconcileTransfer(ctx, event, p)

	// Audit log
	case *domain.Deposit:
		err = r.recordDeposit(ctx, event, p)
	case *domain.Withdraw:
		err = r.recordWithdraw(ctx, event, p)
	case *domain.AccrueInterest:
		err = r.recordAccrueInterest(ctx, event, p)
	case *domain.ReallocateSupply:
		err = r.recordReallocation(ctx, event, p.Caller, p.MarketID, p.SuppliedAssets, p.SuppliedShares)
	case *domain.ReallocateWithdraw:
		err = r.recordReallocation(ctx, event, p.Caller, p.MarketID, p.WithdrawnAssets, p.WithdrawnShares)

	// Queues
	case *domain.SetSupplyQueue:
		err = r.replaceQueue(ctx, event, domain.QueueKindSupply, p.Queue)
	case *domain.SetWithdrawQueue:
		err = r.replaceQueue(ctx, event, domain.QueueKindWithdraw, p.Queue)

	// Market caps and removals
	case *domain.SubmitCap:
		err = r.submitCap(ctx, event, p)
	case *domain.SetCap:
		err = r.setCap(ctx, event, p)
	case *domain.RevokePendingCap:
		err = r.updateMarket(ctx, event, p.MarketID, map[string]interface{}{
			"pending_cap":          decimal.Zero,
			"pending_cap_valid_at": uint64(0),
		})
	case *domain.SubmitMarketRemoval:
		err = r.submitMarketRemoval(ctx, event, p)
	case *domain.RevokePendingMarketRemoval:
		err = r.updateMarket(ctx, event, p.MarketID, map[string]interface{}{
			"removable_at": uint64(0),
		})

	// Guardian and timelock
	case *domain.SubmitGuardian:
		err = r.submitGuardian(ctx, event, p)
	case *domain.SetGuardian:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"guardian":                  domain.NormalizeAddress(p.Guardian),
			"pending_guardian":          domain.ETHEREUM_ZERO_ADDRESS,
			"pending_guardian_valid_at": uint64(0),
		})
	case *domain.RevokePendingGuardian:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"pending_guardian":          domain.ETHEREUM_ZERO_ADDRESS,
			"pending_guardian_valid_at": uint64(0),
		})
	case *domain.SubmitTimelock:
		err = r.submitTimelock(ctx, event, p)
	case *domain.SetTimelock:
		err = r.setTimelock(ctx, event, p)
	case *domain.RevokePendingTimelock:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"pending_timelock":          uint64(0),
			"pending_timelock_valid_at": uint64(0),
		})

	// Roles
	case *domain.OwnershipTransferStarted:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"pending_owner": domain.NormalizeAddress(p.NewOwner),
		})
	case *domain.OwnershipTransferred:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"owner":         domain.NormalizeAddress(p.NewOwner),
			"pending_owner": domain.ETHEREUM_ZERO_ADDRESS,
		})
	case *domain.SetCurator:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"curator": domain.NormalizeAddress(p.NewCurator),
		})
	case *domain.SetIsAllocator:
		err = r.setIsAllocator(ctx, event, p)

	// Fees and metadata
	case *domain.SetFee:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"fee": toDecimal(p.NewFee),
		})
	case *domain.SetFeeRecipient:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"fee_recipient": domain.NormalizeAddress(p.NewFeeRecipient),
		})
	case *domain.SetSkimRecipient:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"skim_recipient": domain.NormalizeAddress(p.NewSkimRecipient),
		})
	case *domain.SetName:
		err = r.updateVault(ctx, event, map[string]interface{}{"name": p.Name})
	case *domain.SetSymbol:
		err = r.updateVault(ctx, event, map[string]interface{}{"symbol": p.Symbol})

	// Accounting
	case *domain.UpdateLastTotalAssets:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"last_total_assets": toDecimal(p.UpdatedTotalAssets),
		})
	case *domain.UpdateLostAssets:
		err = r.updateVault(ctx, event, map[string]interface{}{
			"lost_assets": toDecimal(p.NewLostAssets),
		})

	default:
		err = fmt.Errorf("%w: %s", domain.ErrUnsupportedEvent, event.Kind())
	}

	if err != nil {
		if errors.Is(err, domain.ErrEventAlreadyApplied) {
			logger.DebugCtx(ctx, "Vault event already applied", eventFields(event)...)
		}
		return err
	}

	logger.DebugCtx(ctx, "Reconciled vault event", eventFields(event)...)
	return nil
}

// vaultAddress returns the normalized address of the emitting vault
func vaultAddress(event *domain.VaultEvent) string {
	return domain.NormalizeAddress(event.ContractAddress)
}

// toDecimal converts an on-chain integer to a decimal, treating nil as zero
func toDecimal(amount *big.Int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, 0)
}

func eventFields(event *domain.VaultEvent) []zap.Field {
	return []zap.Field{
		zap.String("chain", string(event.Chain)),
		zap.String("kind", string(event.Kind())),
		zap.String("contract", event.ContractAddress),
		zap.Uint64("blockNumber", event.BlockNumber),
		zap.String("txHash", event.TxHash),
		zap.Uint("logIndex", event.LogIndex),
	}
}
