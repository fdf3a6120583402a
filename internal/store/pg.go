package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

const (
	// pgCheckViolation is the SQLSTATE raised when a CHECK constraint fails
	pgCheckViolation = "23514"

	defaultTransactionsLimit = 100
	maxTransactionsLimit     = 1000
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// If any of the pool settings are 0 or empty, reasonable defaults are used:
//   - MaxOpenConns: 20 (if 0)
//   - MaxIdleConns: 5 (if 0)
//   - ConnMaxLifetime: 5 minutes (if 0)
//   - ConnMaxIdleTime: 10 minutes (if 0)
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// translateError maps constraint violations onto domain errors
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation {
		return fmt.Errorf("%w: %s", domain.ErrNegativeBalance, pgErr.ConstraintName)
	}
	return err
}

func blockCursorKey(chain string) string {
	return fmt.Sprintf("block_cursor:%s", chain)
}

func reconciledCursorKey(chain domain.Chain) string {
	return fmt.Sprintf("reconciled_cursor:%s", chain)
}

// ApplyEvent runs fn in a transaction guarded by the processed log marker of the event
func (s *pgStore) ApplyEvent(ctx context.Context, event *domain.VaultEvent, fn func(tx VaultTx) error) error {
	if event == nil || event.Payload == nil {
		return fmt.Errorf("%w: missing event payload", domain.ErrInvalidEvent)
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		marker := schema.ProcessedLog{
			Chain:           event.Chain,
			TxHash:          event.TxHash,
			LogIndex:        event.LogIndex,
			BlockNumber:     event.BlockNumber,
			ContractAddress: event.ContractAddress,
			EventKind:       event.Kind(),
			Payload:         payload,
		}

		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&marker)
		if result.Error != nil {
			return fmt.Errorf("failed to mark log as processed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			logger.DebugCtx(ctx, "Log already applied",
				zap.String("chain", string(event.Chain)),
				zap.String("txHash", event.TxHash),
				zap.Uint("logIndex", event.LogIndex))
			return domain.ErrEventAlreadyApplied
		}

		if err := fn(&pgVaultTx{db: tx}); err != nil {
			return err
		}

		cursor := schema.KeyValueStore{
			Key:   reconciledCursorKey(event.Chain),
			Value: event.Cursor().String(),
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&cursor).Error; err != nil {
			return fmt.Errorf("failed to advance reconciled cursor: %w", err)
		}

		return nil
	})
}

// IsApplied checks for the processed log marker of an event
func (s *pgStore) IsApplied(ctx context.Context, event *domain.VaultEvent) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.ProcessedLog{}).
		Where("chain = ? AND tx_hash = ? AND log_index = ?", event.Chain, event.TxHash, event.LogIndex).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check processed log: %w", err)
	}
	return count > 0, nil
}

// GetVault retrieves a vault by chain and address
func (s *pgStore) GetVault(ctx context.Context, chain domain.Chain, address string) (*schema.Vault, error) {
	return (&pgVaultTx{db: s.db.WithContext(ctx)}).GetVault(chain, address)
}

// ListVaultAddresses lists the addresses of every indexed vault on a chain
func (s *pgStore) ListVaultAddresses(ctx context.Context, chain domain.Chain) ([]string, error) {
	var addresses []string
	err := s.db.WithContext(ctx).
		Model(&schema.Vault{}).
		Where("chain = ?", chain).
		Order("address ASC").
		Pluck("address", &addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vault addresses: %w", err)
	}
	return addresses, nil
}

// GetBalance retrieves the share balance of a holder
func (s *pgStore) GetBalance(ctx context.Context, chain domain.Chain, vault string, holder string) (*schema.VaultBalance, error) {
	var balance schema.VaultBalance
	err := s.db.WithContext(ctx).
		Where("chain = ? AND vault_address = ? AND holder = ?", chain, vault, holder).
		First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get balance: %w", err)
	}
	return &balance, nil
}

// ListBalances lists all share balances of a vault
func (s *pgStore) ListBalances(ctx context.Context, chain domain.Chain, vault string) ([]schema.VaultBalance, error) {
	var balances []schema.VaultBalance
	err := s.db.WithContext(ctx).
		Where("chain = ? AND vault_address = ?", chain, vault).
		Order("holder ASC").
		Find(&balances).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	return balances, nil
}

// SumBalances returns the sum of all share balances of a vault
func (s *pgStore) SumBalances(ctx context.Context, chain domain.Chain, vault string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.db.WithContext(ctx).
		Model(&schema.VaultBalance{}).
		Select("COALESCE(SUM(shares), 0)").
		Where("chain = ? AND vault_address = ?", chain, vault).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balances: %w", err)
	}
	return total, nil
}

// GetConfigItem retrieves the configuration of a market
func (s *pgStore) GetConfigItem(ctx context.Context, chain domain.Chain, vault string, marketID string) (*schema.VaultConfigItem, error) {
	return (&pgVaultTx{db: s.db.WithContext(ctx)}).GetConfigItem(chain, vault, marketID)
}

// GetQueue returns the live slots of a queue. Slots at or beyond the stored length are ignored.
func (s *pgStore) GetQueue(ctx context.Context, chain domain.Chain, vault string, kind domain.QueueKind) ([]schema.VaultQueueItem, error) {
	v, err := s.GetVault(ctx, chain, vault)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrVaultNotFound
	}

	var items []schema.VaultQueueItem
	err = s.db.WithContext(ctx).
		Where("chain = ? AND vault_address = ? AND kind = ? AND ordinal < ?", chain, vault, kind, v.QueueLength(kind)).
		Order("ordinal ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get %s queue: %w", kind, err)
	}
	return items, nil
}

// GetTransaction retrieves an audit row by its log reference
func (s *pgStore) GetTransaction(ctx context.Context, chain domain.Chain, txHash string, logIndex uint) (*schema.VaultTransaction, error) {
	var record schema.VaultTransaction
	err := s.db.WithContext(ctx).
		Where("chain = ? AND tx_hash = ? AND log_index = ?", chain, txHash, logIndex).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &record, nil
}

// ListTransactions lists audit rows matching the filter, newest first
func (s *pgStore) ListTransactions(ctx context.Context, filter TransactionQueryFilter) ([]schema.VaultTransaction, error) {
	query := s.db.WithContext(ctx).Model(&schema.VaultTransaction{})

	if filter.Chain != "" {
		query = query.Where("chain = ?", filter.Chain)
	}
	if filter.VaultAddress != "" {
		query = query.Where("vault_address = ?", filter.VaultAddress)
	}
	if filter.User != nil {
		query = query.Where("user_address = ?", *filter.User)
	}
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultTransactionsLimit
	}
	limit = min(limit, maxTransactionsLimit)

	var records []schema.VaultTransaction
	err := query.
		Order("block_number DESC, log_index DESC").
		Limit(limit).
		Offset(int(filter.Offset)). //nolint:gosec,G115
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return records, nil
}

// GetReconciledCursor returns the position of the last applied log of a chain
func (s *pgStore) GetReconciledCursor(ctx context.Context, chain domain.Chain) (*domain.LogCursor, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", reconciledCursorKey(chain)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reconciled cursor: %w", err)
	}

	cursor, err := domain.ParseLogCursor(kv.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse reconciled cursor: %w", err)
	}
	return &cursor, nil
}

// GetBlockCursor retrieves the last processed block number for a chain
func (s *pgStore) GetBlockCursor(ctx context.Context, chain string) (uint64, error) {
	return NewCursorStore(s.db).GetBlockCursor(ctx, chain)
}

// SetBlockCursor stores the last processed block number for a chain
func (s *pgStore) SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error {
	return NewCursorStore(s.db).SetBlockCursor(ctx, chain, blockNumber)
}
