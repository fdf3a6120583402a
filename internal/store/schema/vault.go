package schema

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

// Vault represents the vaults table - the current state of one MetaMorpho vault
type Vault struct {
	// Chain identifies the blockchain network where the vault is deployed
	Chain domain.Chain `gorm:"column:chain;primaryKey;type:text"`
	// Address is the checksummed vault contract address
	Address string `gorm:"column:address;primaryKey;type:text"`
	// Asset is the address of the underlying ERC-20 asset
	Asset string `gorm:"column:asset;not null;type:text"`
	// AssetDecimals is the number of decimals of the underlying asset
	AssetDecimals uint8 `gorm:"column:asset_decimals;not null;type:smallint"`
	// DecimalsOffset is 18 minus the asset decimals (0 for assets with 18 or more decimals)
	DecimalsOffset uint8 `gorm:"column:decimals_offset;not null;type:smallint"`
	// Name is the ERC-20 name of the vault share token
	Name string `gorm:"column:name;not null;type:text"`
	// Symbol is the ERC-20 symbol of the vault share token
	Symbol string `gorm:"column:symbol;not null;type:text"`
	// Owner is the current owner of the vault
	Owner string `gorm:"column:owner;not null;type:text"`
	// PendingOwner is the owner nominated by a two-step transfer (zero address when none)
	PendingOwner string `gorm:"column:pending_owner;not null;type:text"`
	// Curator is the current curator (zero address when none)
	Curator string `gorm:"column:curator;not null;type:text"`
	// Guardian is the current guardian (zero address when none)
	Guardian string `gorm:"column:guardian;not null;type:text"`
	// PendingGuardian is the submitted guardian awaiting the timelock
	PendingGuardian string `gorm:"column:pending_guardian;not null;type:text"`
	// PendingGuardianValidAt is the unix time the pending guardian can be accepted (0 when none)
	PendingGuardianValidAt uint64 `gorm:"column:pending_guardian_valid_at;not null;type:bigint"`
	// Timelock is the current timelock in seconds
	Timelock uint64 `gorm:"column:timelock;not null;type:bigint"`
	// PendingTimelock is the submitted timelock awaiting acceptance (0 when none)
	PendingTimelock uint64 `gorm:"column:pending_timelock;not null;type:bigint"`
	// PendingTimelockValidAt is the unix time the pending timelock can be accepted (0 when none)
	PendingTimelockValidAt uint64 `gorm:"column:pending_timelock_valid_at;not null;type:bigint"`
	// Fee is the performance fee scaled by 1e18
	Fee decimal.Decimal `gorm:"column:fee;not null;type:numeric(78,0)"`
	// FeeRecipient receives the fee shares minted on interest accrual
	FeeRecipient string `gorm:"column:fee_recipient;not null;type:text"`
	// SkimRecipient receives skimmed tokens
	SkimRecipient string `gorm:"column:skim_recipient;not null;type:text"`
	// Allocators is the set of addresses allowed to reallocate
	Allocators pq.StringArray `gorm:"column:allocators;not null;type:text[]"`
	// TotalSupply is the total amount of vault shares in existence
	TotalSupply decimal.Decimal `gorm:"column:total_supply;not null;type:numeric(78,0)"`
	// LastTotalAssets is the total assets recorded at the last accounting update
	LastTotalAssets decimal.Decimal `gorm:"column:last_total_assets;not null;type:numeric(78,0)"`
	// LostAssets is the amount of assets considered lost
	LostAssets decimal.Decimal `gorm:"column:lost_assets;not null;type:numeric(78,0)"`
	// SupplyQueueLength is the number of markets in the supply queue
	SupplyQueueLength int `gorm:"column:supply_queue_length;not null"`
	// WithdrawQueueLength is the number of markets in the withdraw queue
	WithdrawQueueLength int `gorm:"column:withdraw_queue_length;not null"`
	// CreatedBlock is the block number of the factory event that created the vault
	CreatedBlock uint64 `gorm:"column:created_block;not null;type:bigint"`
	// CreatedAt is the timestamp when this record was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this record was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Vault model
func (Vault) TableName() string {
	return "vaults"
}

// QueueLength returns the stored length of the given queue
func (v *Vault) QueueLength(kind domain.QueueKind) int {
	if kind == domain.QueueKindSupply {
		return v.SupplyQueueLength
	}
	return v.WithdrawQueueLength
}
