package messaging

import (
	"context"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

// EventHandler is called for every decoded vault event, in log order
type EventHandler func(event *domain.VaultEvent) error

// Subscriber defines the interface for subscribing to on-chain vault events
//
//go:generate mockgen -source=subscriber.go -destination=../mocks/subscriber.go -package=mocks -mock_names=Subscriber=MockSubscriber
type Subscriber interface {
	// SubscribeEvents delivers events from fromBlock onwards, backfilling up to the head first.
	// It returns when the context is cancelled, the subscription fails or the handler returns an error.
	SubscribeEvents(ctx context.Context, fromBlock uint64, handler EventHandler) error

	// GetLatestBlock returns the latest block number
	GetLatestBlock(ctx context.Context) (uint64, error)

	// Close closes the connection and cleans up resources
	Close()
}
