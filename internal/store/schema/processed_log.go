package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

// ProcessedLog represents the processed_logs table - one row per reconciled log.
// The row is written in the same transaction as the state change it guards.
type ProcessedLog struct {
	Chain           domain.Chain     `gorm:"column:chain;primaryKey;type:text"`
	TxHash          string           `gorm:"column:tx_hash;primaryKey;type:text"`
	LogIndex        uint             `gorm:"column:log_index;primaryKey;type:integer"`
	BlockNumber     uint64           `gorm:"column:block_number;not null;type:bigint"`
	ContractAddress string           `gorm:"column:contract_address;not null;type:text"`
	EventKind       domain.EventKind `gorm:"column:event_kind;not null;type:text"`
	// Payload is the decoded event payload, kept for debugging and replay analysis
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time      `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the ProcessedLog model
func (ProcessedLog) TableName() string {
	return "processed_logs"
}
