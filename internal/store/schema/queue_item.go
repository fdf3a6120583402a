package schema

import (
	"time"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

// VaultQueueItem represents the vault_queue_items table - one slot of a supply or withdraw queue.
// Slots at or beyond the vault's queue length are stale and hold a nil market.
type VaultQueueItem struct {
	// Chain identifies the blockchain network
	Chain domain.Chain `gorm:"column:chain;primaryKey;type:text"`
	// VaultAddress is the vault owning the queue
	VaultAddress string `gorm:"column:vault_address;primaryKey;type:text"`
	// Kind is either supply or withdraw
	Kind domain.QueueKind `gorm:"column:kind;primaryKey;type:text"`
	// Ordinal is the zero-based position in the queue
	Ordinal int `gorm:"column:ordinal;primaryKey"`
	// MarketID is the market at this position (nil when the slot is cleared)
	MarketID *string `gorm:"column:market_id;type:text"`
	// UpdatedAt is the timestamp when this slot was last written
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the VaultQueueItem model
func (VaultQueueItem) TableName() string {
	return "vault_queue_items"
}
