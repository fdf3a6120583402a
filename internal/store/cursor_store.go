package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

// CursorStore defines the interface for storing and retrieving the emitter block cursors
//
//go:generate mockgen -source=cursor_store.go -destination=../mocks/cursor_store.go -package=mocks -mock_names=CursorStore=MockCursorStore
type CursorStore interface {
	// GetBlockCursor retrieves the last processed block number for a chain
	GetBlockCursor(ctx context.Context, chain string) (uint64, error)
	// SetBlockCursor stores the last processed block number for a chain
	SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error
}

type cursorStore struct {
	db *gorm.DB
}

// NewCursorStore creates a new cursor store
func NewCursorStore(db *gorm.DB) CursorStore {
	return &cursorStore{db: db}
}

// GetBlockCursor returns 0 when no cursor was stored yet
func (s *cursorStore) GetBlockCursor(ctx context.Context, chain string) (uint64, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", blockCursorKey(chain)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get block cursor: %w", err)
	}

	blockNumber, err := strconv.ParseUint(kv.Value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse block cursor: %w", err)
	}

	return blockNumber, nil
}

// SetBlockCursor upserts the cursor value
func (s *cursorStore) SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error {
	kv := schema.KeyValueStore{
		Key:   blockCursorKey(chain),
		Value: strconv.FormatUint(blockNumber, 10),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&kv).Error
	if err != nil {
		return fmt.Errorf("failed to set block cursor: %w", err)
	}

	return nil
}
