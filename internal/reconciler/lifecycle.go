package reconciler

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/store"
)

// constructorEventKinds are emitted by the vault constructor, before the factory's
// creation log, so they may target a vault that is not indexed yet.
var constructorEventKinds = map[domain.EventKind]struct{}{
	domain.EventKindOwnershipTransferred: {},
	domain.EventKindSetName:              {},
	domain.EventKindSetSymbol:            {},
	domain.EventKindSetTimelock:          {},
}

// ToleratesMissingVault reports whether an event of this kind is a no-op when its vault does not exist
func ToleratesMissingVault(kind domain.EventKind) bool {
	_, ok := constructorEventKinds[kind]
	return ok
}

// updateVault sets columns of the emitting vault in one transaction
func (r *reconciler) updateVault(ctx context.Context, event *domain.VaultEvent, updates map[string]interface{}) error {
	vault := vaultAddress(event)
	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		return r.writeVault(ctx, tx, event, vault, updates)
	})
}

// writeVault applies updates to a vault, swallowing a missing vault only for constructor events
func (r *reconciler) writeVault(ctx context.Context, tx store.VaultTx, event *domain.VaultEvent, vault string, updates map[string]interface{}) error {
	err := tx.UpdateVault(event.Chain, vault, updates)
	if err == nil {
		return nil
	}

	if errors.Is(err, domain.ErrVaultNotFound) && ToleratesMissingVault(event.Kind()) {
		logger.InfoCtx(ctx, "Vault not indexed yet, skipping constructor event", eventFields(event)...)
		return nil
	}
	return err
}

// pendingValidAt returns the block time plus the vault's current timelock.
// A vault that is not indexed yet counts as having no timelock.
func pendingValidAt(tx store.VaultTx, event *domain.VaultEvent, vault string) (uint64, error) {
	current, err := tx.GetVault(event.Chain, vault)
	if err != nil {
		return 0, err
	}

	var timelock uint64
	if current != nil {
		timelock = current.Timelock
	}
	return domain.AddTimestamp(event.BlockTimestamp, timelock)
}

func (r *reconciler) submitGuardian(ctx context.Context, event *domain.VaultEvent, p *domain.SubmitGuardian) error {
	vault := vaultAddress(event)
	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		validAt, err := pendingValidAt(tx, event, vault)
		if err != nil {
			return err
		}

		return r.writeVault(ctx, tx, event, vault, map[string]interface{}{
			"pending_guardian":          domain.NormalizeAddress(p.NewGuardian),
			"pending_guardian_valid_at": validAt,
		})
	})
}

func (r *reconciler) submitTimelock(ctx context.Context, event *domain.VaultEvent, p *domain.SubmitTimelock) error {
	timelock, err := domain.ToUint64(p.NewTimelock)
	if err != nil {
		return err
	}

	vault := vaultAddress(event)
	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		validAt, err := pendingValidAt(tx, event, vault)
		if err != nil {
			return err
		}

		return r.writeVault(ctx, tx, event, vault, map[string]interface{}{
			"pending_timelock":          timelock,
			"pending_timelock_valid_at": validAt,
		})
	})
}

func (r *reconciler) setTimelock(ctx context.Context, event *domain.VaultEvent, p *domain.SetTimelock) error {
	timelock, err := domain.ToUint64(p.NewTimelock)
	if err != nil {
		return err
	}

	return r.updateVault(ctx, event, map[string]interface{}{
		"timelock":                  timelock,
		"pending_timelock":          uint64(0),
		"pending_timelock_valid_at": uint64(0),
	})
}

// updateMarket upserts the configuration of one market of the emitting vault
func (r *reconciler) updateMarket(ctx context.Context, event *domain.VaultEvent, marketID string, updates map[string]interface{}) error {
	vault := vaultAddress(event)
	market := domain.NormalizeMarketID(marketID)
	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		return tx.UpsertConfigItem(event.Chain, vault, market, updates)
	})
}

func (r *reconciler) submitCap(ctx context.Context, event *domain.VaultEvent, p *domain.SubmitCap) error {
	vault := vaultAddress(event)
	market := domain.NormalizeMarketID(p.MarketID)
	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		validAt, err := pendingValidAt(tx, event, vault)
		if err != nil {
			return err
		}

		return tx.UpsertConfigItem(event.Chain, vault, market, map[string]interface{}{
			"pending_cap":          toDecimal(p.Cap),
			"pending_cap_valid_at": validAt,
		})
	})
}

func (r *reconciler) submitMarketRemoval(ctx context.Context, event *domain.VaultEvent, p *domain.SubmitMarketRemoval) error {
	vault := vaultAddress(event)
	market := domain.NormalizeMarketID(p.MarketID)
	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		removableAt, err := pendingValidAt(tx, event, vault)
		if err != nil {
			return err
		}

		return tx.UpsertConfigItem(event.Chain, vault, market, map[string]interface{}{
			"removable_at": removableAt,
		})
	})
}

// setCap finalizes a cap. A positive cap enables the market, clears any pending removal and,
// when the market was not enabled yet, appends it to the withdraw queue as the contract does.
func (r *reconciler) setCap(ctx context.Context, event *domain.VaultEvent, p *domain.SetCap) error {
	vault := vaultAddress(event)
	market := domain.NormalizeMarketID(p.MarketID)
	newCap := toDecimal(p.Cap)

	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		updates := map[string]interface{}{
			"cap":                  newCap,
			"pending_cap":          decimal.Zero,
			"pending_cap_valid_at": uint64(0),
		}
		if !newCap.IsPositive() {
			return tx.UpsertConfigItem(event.Chain, vault, market, updates)
		}

		item, err := tx.GetConfigItem(event.Chain, vault, market)
		if err != nil {
			return err
		}

		updates["enabled"] = true
		updates["removable_at"] = uint64(0)
		if err := tx.UpsertConfigItem(event.Chain, vault, market, updates); err != nil {
			return err
		}

		if item != nil && item.Enabled {
			return nil
		}
		return appendToWithdrawQueue(tx, event, vault, market)
	})
}

func appendToWithdrawQueue(tx store.VaultTx, event *domain.VaultEvent, vault string, market string) error {
	current, err := tx.GetVaultForUpdate(event.Chain, vault)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: %s on %s", domain.ErrVaultNotFound, vault, event.Chain)
	}

	ordinal := current.WithdrawQueueLength
	if err := tx.UpsertQueueItem(queueItem(event, vault, domain.QueueKindWithdraw, ordinal, &market)); err != nil {
		return err
	}
	return tx.UpdateVault(event.Chain, vault, map[string]interface{}{
		"withdraw_queue_length": ordinal + 1,
	})
}

// setIsAllocator adds or removes an allocator from the vault's allocator set
func (r *reconciler) setIsAllocator(ctx context.Context, event *domain.VaultEvent, p *domain.SetIsAllocator) error {
	vault := vaultAddress(event)
	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		current, err := tx.GetVaultForUpdate(event.Chain, vault)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: %s on %s", domain.ErrVaultNotFound, vault, event.Chain)
		}

		allocators := domain.NewAddressSet(current.Allocators...)
		var changed bool
		if p.IsAllocator {
			changed = allocators.Add(p.Allocator)
		} else {
			changed = allocators.Remove(p.Allocator)
		}
		if !changed {
			logger.DebugCtx(ctx, "Allocator set unchanged",
				zap.String("vault", vault),
				zap.String("allocator", p.Allocator),
				zap.Bool("isAllocator", p.IsAllocator))
			return nil
		}

		return tx.UpdateVault(event.Chain, vault, map[string]interface{}{
			"allocators": pq.StringArray(allocators.Slice()),
		})
	})
}
