package schema

import "time"

// KeyValueStore stores arbitrary key-value pairs for chain state.
// Used for the emitter block cursors and the reconciled log cursors.
type KeyValueStore struct {
	Key       string    `gorm:"primaryKey;type:text"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (KeyValueStore) TableName() string {
	return "key_value_store"
}
