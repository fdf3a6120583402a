package reconciler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/store"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

// reconcileTransfer is the only writer of share balances and total supply.
// Mints and burns move the total supply together with one balance; plain transfers
// move shares between two holders and leave an audit row.
func (r *reconciler) reconcileTransfer(ctx context.Context, event *domain.VaultEvent, p *domain.Transfer) error {
	if domain.IsZeroAmount(p.Value) {
		logger.DebugCtx(ctx, "Skipping zero share transfer", eventFields(event)...)
		return nil
	}

	vault := vaultAddress(event)
	from := domain.NormalizeAddress(p.From)
	to := domain.NormalizeAddress(p.To)
	shares := toDecimal(p.Value)

	switch {
	case domain.IsZeroAddress(from) && domain.IsZeroAddress(to):
		return fmt.Errorf("%w: transfer from and to the zero address", domain.ErrInvalidEvent)

	case domain.IsZeroAddress(from):
		return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
			if err := tx.AdjustTotalSupply(event.Chain, vault, shares); err != nil {
				return err
			}
			return tx.CreditBalance(event.Chain, vault, to, shares)
		})

	case domain.IsZeroAddress(to):
		return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
			if err := tx.AdjustTotalSupply(event.Chain, vault, shares.Neg()); err != nil {
				return err
			}
			return tx.DebitBalance(event.Chain, vault, from, shares)
		})
	}

	// The conversion is a network call, so it runs before the transaction opens
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

	assets, err := r.convertToAssets(ctx, event, vault, p.Value)
	if err != nil {
		return err
	}

	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		current, err := tx.GetVault(event.Chain, vault)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: %s on %s", domain.ErrVaultNotFound, vault, event.Chain)
		}

		if err := tx.DebitBalance(event.Chain, vault, from, shares); err != nil {
			return err
		}
		if err := tx.CreditBalance(event.Chain, vault, to, shares); err != nil {
			return err
		}

		txType := schema.VaultTransactionTypeTransfer
		user := from
		if to == domain.NormalizeAddress(current.FeeRecipient) {
			txType = schema.VaultTransactionTypeFeeDistribution
			user = to
		}

		logger.DebugCtx(ctx, "Recording share transfer",
			zap.String("vault", vault),
			zap.String("type", string(txType)),
			zap.String("from", from),
			zap.String("to", to))

		record := newTransaction(event, vault, txType, user, from)
		record.Receiver = &to
		record.Shares = shares
		record.Assets = assets
		return tx.InsertTransaction(record)
	})
}
