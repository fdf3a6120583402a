package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/messaging"
)

const (
	// SubjectPrefix is the root of every vault event subject
	SubjectPrefix = "vaults"

	defaultDuplicateWindow = 24 * time.Hour
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string

	// DuplicateWindow is how long the stream remembers message ids for deduplication
	DuplicateWindow time.Duration
}

// ConnectOptions returns the connection options shared by the publisher and the consumer
func ConnectOptions(cfg Config) []nats.Option {
	return []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}
}

// StreamConfig returns the stream holding all vault events
func StreamConfig(cfg Config) jetstream.StreamConfig {
	window := cfg.DuplicateWindow
	if window <= 0 {
		window = defaultDuplicateWindow
	}

	return jetstream.StreamConfig{
		Name:       cfg.StreamName,
		Subjects:   []string{SubjectPrefix + ".>"},
		Storage:    jetstream.FileStorage,
		Retention:  jetstream.LimitsPolicy,
		Duplicates: window,
	}
}

// Subject constructs the NATS subject of an event.
// Format: vaults.{chain slug}.{event kind}, e.g. vaults.eip155-1.transfer
func Subject(event *domain.VaultEvent) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, event.Chain.Slug(), event.Kind())
}

// ChainSubject matches every event of one chain
func ChainSubject(chain domain.Chain) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, chain.Slug())
}

type publisher struct {
	nc   adapter.NatsConn
	js   adapter.JetStream
	json adapter.JSON
}

// NewPublisher connects to NATS and makes sure the vault event stream exists
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	nc, js, err := natsJS.Connect(cfg.URL, ConnectOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if err := js.CreateOrUpdateStream(ctx, StreamConfig(cfg)); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to ensure stream %s: %w", cfg.StreamName, err)
	}

	return &publisher{
		nc:   nc,
		js:   js,
		json: jsonAdapter,
	}, nil
}

// PublishEvent publishes a vault event to NATS JetStream.
// The message id is the log reference so redelivered logs are dropped by the stream.
func (p *publisher) PublishEvent(ctx context.Context, event *domain.VaultEvent) error {
	if !event.Valid() {
		return fmt.Errorf("%w: %s", domain.ErrInvalidEvent, event.MessageID())
	}

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := Subject(event)
	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.MessageID()))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logger.DebugCtx(ctx, "Published vault event",
		zap.String("subject", subject),
		zap.String("msgID", event.MessageID()),
		zap.Uint64("sequence", ack.Sequence),
		zap.Bool("duplicate", ack.Duplicate))

	return nil
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
