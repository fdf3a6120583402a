package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/store/schema"
)

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore,VaultTx=MockVaultTx
type Store interface {
	// ApplyEvent runs fn in a single database transaction guarded by the event's log reference.
	// It returns domain.ErrEventAlreadyApplied without calling fn when the log was already applied.
	// Any error returned by fn rolls the whole transaction back.
	ApplyEvent(ctx context.Context, event *domain.VaultEvent, fn func(tx VaultTx) error) error
	// IsApplied reports whether the event's log already has a processed marker.
	// ApplyEvent stays the authoritative check; this only lets callers skip work outside the transaction.
	IsApplied(ctx context.Context, event *domain.VaultEvent) (bool, error)

	// GetVault retrieves a vault, returning nil if it does not exist
	GetVault(ctx context.Context, chain domain.Chain, address string) (*schema.Vault, error)
	// ListVaultAddresses lists the addresses of every indexed vault on a chain
	ListVaultAddresses(ctx context.Context, chain domain.Chain) ([]string, error)
	// GetBalance retrieves the share balance of a holder, returning nil if there is none
	GetBalance(ctx context.Context, chain domain.Chain, vault string, holder string) (*schema.VaultBalance, error)
	// ListBalances lists all share balances of a vault ordered by holder
	ListBalances(ctx context.Context, chain domain.Chain, vault string) ([]schema.VaultBalance, error)
	// SumBalances returns the sum of all share balances of a vault
	SumBalances(ctx context.Context, chain domain.Chain, vault string) (decimal.Decimal, error)
	// GetConfigItem retrieves the configuration of a market, returning nil if there is none
	GetConfigItem(ctx context.Context, chain domain.Chain, vault string, marketID string) (*schema.VaultConfigItem, error)
	// GetQueue returns the live slots of a queue ordered by ordinal
	GetQueue(ctx context.Context, chain domain.Chain, vault string, kind domain.QueueKind) ([]schema.VaultQueueItem, error)
	// GetTransaction retrieves an audit row by its log reference, returning nil if there is none
	GetTransaction(ctx context.Context, chain domain.Chain, txHash string, logIndex uint) (*schema.VaultTransaction, error)
	// ListTransactions lists audit rows matching the filter, newest first
	ListTransactions(ctx context.Context, filter TransactionQueryFilter) ([]schema.VaultTransaction, error)
	// GetReconciledCursor returns the position of the last applied log of a chain, or nil if none
	GetReconciledCursor(ctx context.Context, chain domain.Chain) (*domain.LogCursor, error)
	// GetBlockCursor retrieves the last processed block number for a chain
	GetBlockCursor(ctx context.Context, chain string) (uint64, error)
	// SetBlockCursor stores the last processed block number for a chain
	SetBlockCursor(ctx context.Context, chain string, blockNumber uint64) error
}

// VaultTx is the set of primitives available to a reconciler inside ApplyEvent.
// All calls share the enclosing database transaction.
type VaultTx interface {
	// GetVault retrieves a vault, returning nil if it does not exist
	GetVault(chain domain.Chain, address string) (*schema.Vault, error)
	// GetVaultForUpdate retrieves a vault and locks its row until the transaction ends
	GetVaultForUpdate(chain domain.Chain, address string) (*schema.Vault, error)
	// CreateVault inserts a vault and reports false if it already existed
	CreateVault(vault *schema.Vault) (bool, error)
	// UpdateVault sets the given columns, returning domain.ErrVaultNotFound if the vault does not exist
	UpdateVault(chain domain.Chain, address string, updates map[string]interface{}) error
	// AdjustTotalSupply adds delta (possibly negative) to the vault's total supply
	AdjustTotalSupply(chain domain.Chain, address string, delta decimal.Decimal) error
	// CreditBalance adds amount to a holder's balance, creating the row if needed
	CreditBalance(chain domain.Chain, vault string, holder string, amount decimal.Decimal) error
	// DebitBalance subtracts amount from an existing holder balance
	DebitBalance(chain domain.Chain, vault string, holder string, amount decimal.Decimal) error
	// GetConfigItem retrieves the configuration of a market, returning nil if there is none
	GetConfigItem(chain domain.Chain, vault string, marketID string) (*schema.VaultConfigItem, error)
	// UpsertConfigItem creates the market configuration if missing and sets the given columns
	UpsertConfigItem(chain domain.Chain, vault string, marketID string, updates map[string]interface{}) error
	// GetQueue returns the slots of a queue below length ordered by ordinal
	GetQueue(chain domain.Chain, vault string, kind domain.QueueKind, length int) ([]schema.VaultQueueItem, error)
	// UpsertQueueItem writes one queue slot
	UpsertQueueItem(item *schema.VaultQueueItem) error
	// InsertTransaction appends an audit row
	InsertTransaction(record *schema.VaultTransaction) error
}

// TransactionQueryFilter represents filters for listing audit rows
type TransactionQueryFilter struct {
	Chain        domain.Chain
	VaultAddress string
	User         *string
	Types        []schema.VaultTransactionType
	Limit        int
	Offset       uint64
}
