package reconciler

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/store"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

// decimalsOffset returns 18 minus the asset decimals, floored at zero
func decimalsOffset(assetDecimals uint8) uint8 {
	if assetDecimals >= domain.VAULT_SHARE_DECIMALS {
		return 0
	}
	return domain.VAULT_SHARE_DECIMALS - assetDecimals
}

// createVault indexes a vault announced by the factory. Replays leave the existing row untouched.
func (r *reconciler) createVault(ctx context.Context, event *domain.VaultEvent, p *domain.CreateVault) error {
	vault := domain.NormalizeAddress(p.Vault)
	asset := domain.NormalizeAddress(p.Asset)

	timelock, err := domain.ToUint64(p.InitialTimelock)
	if err != nil {
		return err
	}

	if err := r.ensureNotApplied(ctx, event); err != nil {
		return err
	}

	assetDecimals, err := r.assetDecimals(ctx, event.Chain, asset)
	if err != nil {
		return fmt.Errorf("failed to read decimals of %s: %w", asset, err)
	}

	record := &schema.Vault{
		Chain:           event.Chain,
		Address:         vault,
		Asset:           asset,
		AssetDecimals:   assetDecimals,
		DecimalsOffset:  decimalsOffset(assetDecimals),
		Name:            p.Name,
		Symbol:          p.Symbol,
		Owner:           domain.NormalizeAddress(p.InitialOwner),
		PendingOwner:    domain.ETHEREUM_ZERO_ADDRESS,
		Curator:         domain.ETHEREUM_ZERO_ADDRESS,
		Guardian:        domain.ETHEREUM_ZERO_ADDRESS,
		PendingGuardian: domain.ETHEREUM_ZERO_ADDRESS,
		Timelock:        timelock,
		Fee:             decimal.Zero,
		FeeRecipient:    domain.ETHEREUM_ZERO_ADDRESS,
		SkimRecipient:   domain.ETHEREUM_ZERO_ADDRESS,
		Allocators:      pq.StringArray{},
		TotalSupply:     decimal.Zero,
		LastTotalAssets: decimal.Zero,
		LostAssets:      decimal.Zero,
		CreatedBlock:    event.BlockNumber,
	}

	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		created, err := tx.CreateVault(record)
		if err != nil {
			return err
		}

		if !created {
			logger.WarnCtx(ctx, "Vault already indexed",
				zap.String("chain", string(event.Chain)),
				zap.String("vault", vault))
			return nil
		}

		logger.InfoCtx(ctx, "Indexed new vault",
			zap.String("chain", string(event.Chain)),
			zap.String("vault", vault),
			zap.String("asset", asset),
			zap.Uint8("assetDecimals", assetDecimals),
			zap.String("name", p.Name))
		return nil
	})
}
