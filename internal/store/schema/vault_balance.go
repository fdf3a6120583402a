package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

// VaultBalance represents the vault_balances table - vault shares held per address
type VaultBalance struct {
	// Chain identifies the blockchain network
	Chain domain.Chain `gorm:"column:chain;primaryKey;type:text"`
	// VaultAddress is the vault whose shares are held
	VaultAddress string `gorm:"column:vault_address;primaryKey;type:text"`
	// Holder is the address holding the shares
	Holder string `gorm:"column:holder;primaryKey;type:text"`
	// Shares is the number of shares held, never negative
	Shares decimal.Decimal `gorm:"column:shares;not null;type:numeric(78,0);check:shares >= 0"`
	// CreatedAt is the timestamp when this balance was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this balance was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the VaultBalance model
func (VaultBalance) TableName() string {
	return "vault_balances"
}
