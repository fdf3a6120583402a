package reconciler

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/store"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

// newTransaction builds the audit row of an event, keyed by its log reference
func newTransaction(event *domain.VaultEvent, vault string, txType schema.VaultTransactionType, user string, sender string) *schema.VaultTransaction {
	return &schema.VaultTransaction{
		Chain:        event.Chain,
		TxHash:       event.TxHash,
		LogIndex:     event.LogIndex,
		BlockNumber:  event.BlockNumber,
		Timestamp:    event.Time(),
		VaultAddress: vault,
		Type:         txType,
		User:         user,
		Sender:       sender,
		Shares:       decimal.Zero,
		Assets:       decimal.Zero,
	}
}

// requireVault fails with domain.ErrVaultNotFound when the vault is not indexed
func requireVault(tx store.VaultTx, event *domain.VaultEvent, vault string) (*schema.Vault, error) {
	current, err := tx.GetVault(event.Chain, vault)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("%w: %s on %s", domain.ErrVaultNotFound, vault, event.Chain)
	}
	return current, nil
}

// insertRecord appends an audit row for an event of an indexed vault
func (r *reconciler) insertRecord(ctx context.Context, event *domain.VaultEvent, record *schema.VaultTransaction) error {
	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		if _, err := requireVault(tx, event, record.VaultAddress); err != nil {
			return err
		}
		return tx.InsertTransaction(record)
	})
}

// isZeroActivity reports whether both amounts of a two-amount event are zero
func isZeroActivity(assets, shares *big.Int) bool {
	return domain.IsZeroAmount(assets) && domain.IsZeroAmount(shares)
}

func (r *reconciler) recordDeposit(ctx context.Context, event *domain.VaultEvent, p *domain.Deposit) error {
	if isZeroActivity(p.Assets, p.Shares) {
		logger.DebugCtx(ctx, "Skipping zero deposit", eventFields(event)...)
		return nil
	}

	vault := vaultAddress(event)
	record := newTransaction(event, vault, schema.VaultTransactionTypeDeposit,
		domain.NormalizeAddress(p.Owner), domain.NormalizeAddress(p.Sender))
	record.Shares = toDecimal(p.Shares)
	record.Assets = toDecimal(p.Assets)
	return r.insertRecord(ctx, event, record)
}

func (r *reconciler) recordWithdraw(ctx context.Context, event *domain.VaultEvent, p *domain.Withdraw) error {
	if isZeroActivity(p.Assets, p.Shares) {
		logger.DebugCtx(ctx, "Skipping zero withdrawal", eventFields(event)...)
		return nil
	}

	vault := vaultAddress(event)
	receiver := domain.NormalizeAddress(p.Receiver)
	record := newTransaction(event, vault, schema.VaultTransactionTypeWithdraw,
		domain.NormalizeAddress(p.Owner), domain.NormalizeAddress(p.Sender))
	record.Receiver = &receiver
	record.Shares = toDecimal(p.Shares)
	record.Assets = toDecimal(p.Assets)
	return r.insertRecord(ctx, event, record)
}

func (r *reconciler) recordReallocation(ctx context.Context, event *domain.VaultEvent, caller, marketID string, assets, shares *big.Int) error {
	if isZeroActivity(assets, shares) {
		logger.DebugCtx(ctx, "Skipping zero reallocation", eventFields(event)...)
		return nil
	}

	txType := schema.VaultTransactionTypeReallocateSupply
	if event.Kind() == domain.EventKindReallocateWithdraw {
		txType = schema.VaultTransactionTypeReallocateWithdraw
	}

	vault := vaultAddress(event)
	market := domain.NormalizeMarketID(marketID)
	caller = domain.NormalizeAddress(caller)
	record := newTransaction(event, vault, txType, caller, caller)
	record.MarketID = &market
	record.Shares = toDecimal(shares)
	record.Assets = toDecimal(assets)
	return r.insertRecord(ctx, event, record)
}

// recordAccrueInterest tracks the new total assets and, when fee shares were minted,
// records them against the fee recipient
func (r *reconciler) recordAccrueInterest(ctx context.Context, event *domain.VaultEvent, p *domain.AccrueInterest) error {
	vault := vaultAddress(event)

	var assets decimal.Decimal
	hasFee := !domain.IsZeroAmount(p.FeeShares)
	if hasFee {
		if err := r.ensureNotApplied(ctx, event); err != nil {
			return err
		}
		current, err := r.store.GetVault(ctx, event.Chain, vault)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: %s on %s", domain.ErrVaultNotFound, vault, event.Chain)
		}

		assets, err = r.convertToAssets(ctx, event, vault, p.FeeShares)
		if err != nil {
			return err
		}
	}

	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		current, err := requireVault(tx, event, vault)
		if err != nil {
			return err
		}

		if err := tx.UpdateVault(event.Chain, vault, map[string]interface{}{
			"last_total_assets": toDecimal(p.NewTotalAssets),
		}); err != nil {
			return err
		}

		if !hasFee {
			return nil
		}

		feeRecipient := domain.NormalizeAddress(current.FeeRecipient)
		record := newTransaction(event, vault, schema.VaultTransactionTypeFee, feeRecipient, vault)
		record.Receiver = &feeRecipient
		record.Shares = toDecimal(p.FeeShares)
		record.Assets = assets
		return tx.InsertTransaction(record)
	})
}
