package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	natsprovider "github.com/feral-file/ff-vault-indexer/internal/providers/jetstream"
	"github.com/feral-file/ff-vault-indexer/internal/reconciler"
)

const (
	defaultNakDelay = 5 * time.Second
)

// Config holds the configuration for the event consumer
type Config struct {
	NATS natsprovider.Config
	// ConsumerName prefixes the durable consumer of every chain
	ConsumerName string
	// Chains lists the chains to reconcile, one durable consumer each
	Chains         []domain.Chain
	AckWaitTimeout time.Duration
	// MaxDeliver bounds redeliveries of a failing event (-1 for unlimited)
	MaxDeliver int
	// NakDelay is how long a failed event waits before redelivery
	NakDelay time.Duration
}

// Consumer feeds vault events from JetStream to the reconciler
type Consumer interface {
	// Run consumes every configured chain until the context is cancelled or a chain fails
	Run(ctx context.Context) error
	// Close closes the NATS connection
	Close()
}

type consumer struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	reconciler reconciler.Reconciler
	json       adapter.JSON
	config     Config
}

// NewConsumer connects to NATS and makes sure the vault event stream exists
func NewConsumer(
	ctx context.Context,
	cfg Config,
	natsJS adapter.NatsJetStream,
	r reconciler.Reconciler,
	jsonAdapter adapter.JSON,
) (Consumer, error) {
	if len(cfg.Chains) == 0 {
		return nil, fmt.Errorf("no chains configured")
	}

	nc, js, err := natsJS.Connect(cfg.NATS.URL, natsprovider.ConnectOptions(cfg.NATS)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	if err := js.CreateOrUpdateStream(ctx, natsprovider.StreamConfig(cfg.NATS)); err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create/update stream: %w", err)
	}

	return &consumer{
		nc:         nc,
		js:         js,
		reconciler: r,
		json:       jsonAdapter,
		config:     cfg,
	}, nil
}

// DurableName returns the durable consumer name of a chain
func DurableName(prefix string, chain domain.Chain) string {
	return fmt.Sprintf("%s-%s", prefix, chain.Slug())
}

// ConsumerConfig returns the consumer of one chain. A single message in flight keeps
// the chain's events in log order.
func ConsumerConfig(cfg Config, chain domain.Chain) jetstream.ConsumerConfig {
	maxDeliver := cfg.MaxDeliver
	if maxDeliver == 0 {
		maxDeliver = -1
	}

	return jetstream.ConsumerConfig{
		Durable:       DurableName(cfg.ConsumerName, chain),
		DeliverPolicy: jetstream.DeliverAllPolicy,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       cfg.AckWaitTimeout,
		MaxDeliver:    maxDeliver,
		MaxAckPending: 1,
		FilterSubject: natsprovider.ChainSubject(chain),
	}
}

// Run starts one sequential consumer per chain on a worker pool
func (c *consumer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := pond.NewPool(len(c.config.Chains), pond.WithContext(ctx))
	defer pool.StopAndWait()

	group := pool.NewGroup()
	for _, chain := range c.config.Chains {
		group.SubmitErr(func() error {
			err := c.consumeChain(ctx, chain)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err, zap.String("chain", string(chain)))
				// One failing chain stops the process so it can be restarted as a whole
				cancel()
			}
			return err
		})
	}

	err := group.Wait()
	if ctx.Err() != nil && (err == nil || errors.Is(err, context.Canceled)) {
		return ctx.Err()
	}
	return err
}

// consumeChain processes the events of one chain one at a time
func (c *consumer) consumeChain(ctx context.Context, chain domain.Chain) error {
	consumerConfig := ConsumerConfig(c.config, chain)

	cons, err := c.js.CreateOrUpdateConsumer(ctx, c.config.NATS.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer for %s: %w", chain, err)
	}

	consumerInfo, err := cons.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info for %s: %w", chain, err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved",
		zap.String("chain", string(chain)),
		zap.String("consumer", consumerInfo.Name),
		zap.Uint64("pending", consumerInfo.NumPending))

	msgChan := make(chan adapter.Message, 1)
	sub, err := cons.Consume(func(msg adapter.Message) {
		select {
		case msgChan <- msg:
		case <-ctx.Done():
		}
	}, jetstream.PullMaxMessages(1))
	if err != nil {
		return fmt.Errorf("failed to create subscription for %s: %w", chain, err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming vault events", zap.String("chain", string(chain)))

	for {
		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Shutting down chain consumer", zap.String("chain", string(chain)))
			return ctx.Err()
		case <-sub.Closed():
			return fmt.Errorf("%w: consumer of %s closed", domain.ErrSubscriptionFailed, chain)
		case msg := <-msgChan:
			c.handleMessage(ctx, chain, msg)
		}
	}
}

// handleMessage reconciles a single message and settles it.
// Only undecodable messages are terminated; failed events are redelivered so the
// chain never moves past them.
func (c *consumer) handleMessage(ctx context.Context, chain domain.Chain, msg adapter.Message) {
	var deliveryCount uint64
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		deliveryCount = metadata.NumDelivered
	}

	var event domain.VaultEvent
	if err := c.json.Unmarshal(msg.Data(), &event); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to unmarshal event: %w", err), zap.String("chain", string(chain)))
		c.term(ctx, msg)
		return
	}

	if event.Chain != chain {
		logger.ErrorCtx(ctx, fmt.Errorf("%w: event of %s on the %s consumer", domain.ErrInvalidEvent, event.Chain, chain),
			zap.String("messageID", event.MessageID()))
		c.term(ctx, msg)
		return
	}

	fields := []zap.Field{
		zap.String("chain", string(event.Chain)),
		zap.String("kind", string(event.Kind())),
		zap.String("messageID", event.MessageID()),
		zap.Uint64("deliveryCount", deliveryCount),
	}
	logger.DebugCtx(ctx, "Received vault event", fields...)

	err := c.reconciler.Reconcile(ctx, &event)
	switch {
	case err == nil, errors.Is(err, domain.ErrEventAlreadyApplied):
		if err := msg.Ack(); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to ACK message: %w", err), fields...)
		}

	case ctx.Err() != nil:
		// Shutting down: let the message come back right away on restart
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to NAK message: %w", err), fields...)
		}

	default:
		logger.ErrorCtx(ctx, fmt.Errorf("failed to reconcile event: %w", err), fields...)
		if err := msg.NakWithDelay(c.nakDelay()); err != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("failed to NAK message: %w", err), fields...)
		}
	}
}

func (c *consumer) term(ctx context.Context, msg adapter.Message) {
	if err := msg.Term(); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to terminate message: %w", err))
	}
}

func (c *consumer) nakDelay() time.Duration {
	if c.config.NakDelay > 0 {
		return c.config.NakDelay
	}
	return defaultNakDelay
}

// Close closes the consumer and cleans up resources
func (c *consumer) Close() {
	if c.nc == nil {
		return
	}

	c.nc.Close()
}
