package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

// VaultConfigItem represents the vault_config_items table - per-market configuration of a vault.
// Rows are upserted on first reference and never deleted.
type VaultConfigItem struct {
	// Chain identifies the blockchain network
	Chain domain.Chain `gorm:"column:chain;primaryKey;type:text"`
	// VaultAddress is the vault the market belongs to
	VaultAddress string `gorm:"column:vault_address;primaryKey;type:text"`
	// MarketID is the 32-byte market identifier as lowercase hex
	MarketID string `gorm:"column:market_id;primaryKey;type:text"`
	// Cap is the current supply cap
	Cap decimal.Decimal `gorm:"column:cap;not null;default:0;type:numeric(78,0)"`
	// PendingCap is the submitted cap awaiting the timelock (0 when none)
	PendingCap decimal.Decimal `gorm:"column:pending_cap;not null;default:0;type:numeric(78,0)"`
	// PendingCapValidAt is the unix time the pending cap can be accepted (0 when none)
	PendingCapValidAt uint64 `gorm:"column:pending_cap_valid_at;not null;default:0;type:bigint"`
	// Enabled reports whether the market is in the withdraw queue
	Enabled bool `gorm:"column:enabled;not null;default:false"`
	// RemovableAt is the unix time the market can be removed (0 when no removal is pending)
	RemovableAt uint64 `gorm:"column:removable_at;not null;default:0;type:bigint"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the VaultConfigItem model
func (VaultConfigItem) TableName() string {
	return "vault_config_items"
}
