package schema

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

// VaultTransactionType represents the type of an audited vault flow
type VaultTransactionType string

const (
	// VaultTransactionTypeDeposit indicates assets deposited for shares
	VaultTransactionTypeDeposit VaultTransactionType = "deposit"
	// VaultTransactionTypeWithdraw indicates shares redeemed for assets
	VaultTransactionTypeWithdraw VaultTransactionType = "withdraw"
	// VaultTransactionTypeFee indicates fee shares minted on interest accrual
	VaultTransactionTypeFee VaultTransactionType = "fee"
	// VaultTransactionTypeFeeDistribution indicates a share transfer to the fee recipient
	VaultTransactionTypeFeeDistribution VaultTransactionType = "fee_distribution"
	// VaultTransactionTypeReallocateSupply indicates assets supplied to a market
	VaultTransactionTypeReallocateSupply VaultTransactionType = "reallocate_supply"
	// VaultTransactionTypeReallocateWithdraw indicates assets withdrawn from a market
	VaultTransactionTypeReallocateWithdraw VaultTransactionType = "reallocate_withdraw"
	// VaultTransactionTypeTransfer indicates a share transfer between two holders
	VaultTransactionTypeTransfer VaultTransactionType = "transfer"
)

// VaultTransaction represents the vault_transactions table - append-only audit trail of vault flows
type VaultTransaction struct {
	// Chain identifies the blockchain network where this event occurred
	Chain domain.Chain `gorm:"column:chain;primaryKey;type:text"`
	// TxHash is the transaction hash that emitted the log
	TxHash string `gorm:"column:tx_hash;primaryKey;type:text"`
	// LogIndex is the index of the log within its block
	LogIndex uint `gorm:"column:log_index;primaryKey;type:integer"`
	// BlockNumber is the block number where this event was recorded
	BlockNumber uint64 `gorm:"column:block_number;not null;type:bigint"`
	// Timestamp is the blockchain timestamp when this event occurred
	Timestamp time.Time `gorm:"column:timestamp;not null;type:timestamptz"`
	// VaultAddress is the vault the flow belongs to
	VaultAddress string `gorm:"column:vault_address;not null;type:text"`
	// Type is the kind of flow
	Type VaultTransactionType `gorm:"column:type;not null;type:text"`
	// User is the account the flow is attributed to
	User string `gorm:"column:user_address;not null;type:text"`
	// Sender is the account that initiated the flow
	Sender string `gorm:"column:sender;not null;type:text"`
	// Receiver is the account that received the assets or shares, if distinct
	Receiver *string `gorm:"column:receiver;type:text"`
	// MarketID is the market involved in a reallocation
	MarketID *string `gorm:"column:market_id;type:text"`
	// Shares is the amount of vault shares or market shares involved
	Shares decimal.Decimal `gorm:"column:shares;not null;type:numeric(78,0)"`
	// Assets is the amount of underlying assets involved
	Assets decimal.Decimal `gorm:"column:assets;not null;type:numeric(78,0)"`
	// CreatedAt is the timestamp when this record was indexed
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the VaultTransaction model
func (VaultTransaction) TableName() string {
	return "vault_transactions"
}
