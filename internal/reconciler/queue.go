package reconciler

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/store"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

func queueItem(event *domain.VaultEvent, vault string, kind domain.QueueKind, ordinal int, marketID *string) *schema.VaultQueueItem {
	return &schema.VaultQueueItem{
		Chain:        event.Chain,
		VaultAddress: vault,
		Kind:         kind,
		Ordinal:      ordinal,
		MarketID:     marketID,
	}
}

func queueLengthColumn(kind domain.QueueKind) string {
	if kind == domain.QueueKindSupply {
		return "supply_queue_length"
	}
	return "withdraw_queue_length"
}

// replaceQueue overwrites a whole queue. Every ordinal below max(old, new) length is written
// and slots past the new length are cleared. Markets dropped from the withdraw queue lose
// their configuration, mirroring the contract.
func (r *reconciler) replaceQueue(ctx context.Context, event *domain.VaultEvent, kind domain.QueueKind, queue []string) error {
	vault := vaultAddress(event)

	markets := make([]string, len(queue))
	for i, id := range queue {
		markets[i] = domain.NormalizeMarketID(id)
	}

	return r.store.ApplyEvent(ctx, event, func(tx store.VaultTx) error {
		current, err := tx.GetVaultForUpdate(event.Chain, vault)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("%w: %s on %s", domain.ErrVaultNotFound, vault, event.Chain)
		}

		oldLength := current.QueueLength(kind)
		newLength := len(markets)

		var previous []schema.VaultQueueItem
		if kind == domain.QueueKindWithdraw {
			previous, err = tx.GetQueue(event.Chain, vault, kind, oldLength)
			if err != nil {
				return err
			}
		}

		if err := tx.UpdateVault(event.Chain, vault, map[string]interface{}{
			queueLengthColumn(kind): newLength,
		}); err != nil {
			return err
		}

		for i := 0; i < max(oldLength, newLength); i++ {
			var marketID *string
			if i < newLength {
				marketID = &markets[i]
			}
			if err := tx.UpsertQueueItem(queueItem(event, vault, kind, i, marketID)); err != nil {
				return err
			}
		}

		kept := mapset.NewThreadUnsafeSet(markets...)
		for _, item := range previous {
			if item.MarketID == nil || kept.Contains(*item.MarketID) {
				continue
			}
			if err := tx.UpsertConfigItem(event.Chain, vault, *item.MarketID, map[string]interface{}{
				"cap":                  decimal.Zero,
				"pending_cap":          decimal.Zero,
				"pending_cap_valid_at": uint64(0),
				"enabled":              false,
				"removable_at":         uint64(0),
			}); err != nil {
				return err
			}
		}

		return nil
	})
}
