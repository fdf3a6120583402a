package store

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

// pgVaultTx implements VaultTx on top of an open gorm transaction
type pgVaultTx struct {
	db *gorm.DB
}

// GetVault retrieves a vault, returning nil if it does not exist
func (t *pgVaultTx) GetVault(chain domain.Chain, address string) (*schema.Vault, error) {
	return t.getVault(t.db, chain, address)
}

// GetVaultForUpdate retrieves a vault with a row lock held until commit
func (t *pgVaultTx) GetVaultForUpdate(chain domain.Chain, address string) (*schema.Vault, error) {
	return t.getVault(t.db.Clauses(clause.Locking{Strength: "UPDATE"}), chain, address)
}

func (t *pgVaultTx) getVault(db *gorm.DB, chain domain.Chain, address string) (*schema.Vault, error) {
	var vault schema.Vault
	err := db.Where("chain = ? AND address = ?", chain, address).First(&vault).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	return &vault, nil
}

// CreateVault inserts a vault and reports false if it already existed
func (t *pgVaultTx) CreateVault(vault *schema.Vault) (bool, error) {
	if vault.Allocators == nil {
		vault.Allocators = []string{}
	}

	result := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(vault)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create vault: %w", translateError(result.Error))
	}
	return result.RowsAffected > 0, nil
}

// UpdateVault sets the given columns on an existing vault
func (t *pgVaultTx) UpdateVault(chain domain.Chain, address string, updates map[string]interface{}) error {
	result := t.db.Model(&schema.Vault{}).
		Where("chain = ? AND address = ?", chain, address).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update vault: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s on %s", domain.ErrVaultNotFound, address, chain)
	}
	return nil
}

// AdjustTotalSupply adds delta to the vault's total supply
func (t *pgVaultTx) AdjustTotalSupply(chain domain.Chain, address string, delta decimal.Decimal) error {
	return t.UpdateVault(chain, address, map[string]interface{}{
		"total_supply": gorm.Expr("total_supply + ?", delta),
	})
}

// CreditBalance adds amount to a holder's balance, creating the row if needed
func (t *pgVaultTx) CreditBalance(chain domain.Chain, vault string, holder string, amount decimal.Decimal) error {
	balance := schema.VaultBalance{
		Chain:        chain,
		VaultAddress: vault,
		Holder:       holder,
		Shares:       amount,
	}

	err := t.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chain"}, {Name: "vault_address"}, {Name: "holder"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"shares":     gorm.Expr("vault_balances.shares + EXCLUDED.shares"),
			"updated_at": gorm.Expr("now()"),
		}),
	}).Create(&balance).Error
	if err != nil {
		return fmt.Errorf("failed to credit balance: %w", translateError(err))
	}
	return nil
}

// DebitBalance subtracts amount from an existing holder balance
func (t *pgVaultTx) DebitBalance(chain domain.Chain, vault string, holder string, amount decimal.Decimal) error {
	result := t.db.Model(&schema.VaultBalance{}).
		Where("chain = ? AND vault_address = ? AND holder = ?", chain, vault, holder).
		Update("shares", gorm.Expr("shares - ?", amount))
	if result.Error != nil {
		return fmt.Errorf("failed to debit balance: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s in %s", domain.ErrBalanceNotFound, holder, vault)
	}
	return nil
}

// GetConfigItem retrieves the configuration of a market
func (t *pgVaultTx) GetConfigItem(chain domain.Chain, vault string, marketID string) (*schema.VaultConfigItem, error) {
	var item schema.VaultConfigItem
	err := t.db.
		Where("chain = ? AND vault_address = ? AND market_id = ?", chain, vault, marketID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get config item: %w", err)
	}
	return &item, nil
}

// UpsertConfigItem creates the market configuration if missing and sets the given columns
func (t *pgVaultTx) UpsertConfigItem(chain domain.Chain, vault string, marketID string, updates map[string]interface{}) error {
	values := map[string]interface{}{
		"chain":         chain,
		"vault_address": vault,
		"market_id":     marketID,
	}
	assignments := map[string]interface{}{
		"updated_at": gorm.Expr("now()"),
	}
	for column, value := range updates {
		values[column] = value
		assignments[column] = value
	}

	err := t.db.Model(&schema.VaultConfigItem{}).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chain"}, {Name: "vault_address"}, {Name: "market_id"}},
			DoUpdates: clause.Assignments(assignments),
		}).
		Create(values).Error
	if err != nil {
		return fmt.Errorf("failed to upsert config item: %w", err)
	}
	return nil
}

// GetQueue returns the slots of a queue below length ordered by ordinal
func (t *pgVaultTx) GetQueue(chain domain.Chain, vault string, kind domain.QueueKind, length int) ([]schema.VaultQueueItem, error) {
	var items []schema.VaultQueueItem
	err := t.db.
		Where("chain = ? AND vault_address = ? AND kind = ? AND ordinal < ?", chain, vault, kind, length).
		Order("ordinal ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get queue: %w", err)
	}
	return items, nil
}

// UpsertQueueItem writes one queue slot
func (t *pgVaultTx) UpsertQueueItem(item *schema.VaultQueueItem) error {
	err := t.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "chain"}, {Name: "vault_address"}, {Name: "kind"}, {Name: "ordinal"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"market_id":  item.MarketID,
			"updated_at": gorm.Expr("now()"),
		}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("failed to upsert queue item: %w", err)
	}
	return nil
}

// InsertTransaction appends an audit row. A row for the same log is left untouched.
func (t *pgVaultTx) InsertTransaction(record *schema.VaultTransaction) error {
	err := t.db.Clauses(clause.OnConflict{DoNothing: true}).Create(record).Error
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}
