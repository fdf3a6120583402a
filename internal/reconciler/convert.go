package reconciler

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
)

// ensureNotApplied returns domain.ErrEventAlreadyApplied for a redelivered event so that
// its contract calls are skipped. Historical state may be gone from the node by then.
func (r *reconciler) ensureNotApplied(ctx context.Context, event *domain.VaultEvent) error {
	applied, err := r.store.IsApplied(ctx, event)
	if err != nil {
		return err
	}
	if applied {
		logger.DebugCtx(ctx, "Skipping contract calls of an applied event", eventFields(event)...)
		return domain.ErrEventAlreadyApplied
	}
	return nil
}

// withRetry runs a read-only contract call under the configured exponential backoff.
// Exhausted retries surface as domain.ErrConversionFailed.
func (r *reconciler) withRetry(ctx context.Context, operation string, call func() error) error {
	b := backoff.NewExponentialBackOff()
	if r.config.InitialInterval > 0 {
		b.InitialInterval = r.config.InitialInterval
	}
	if r.config.MaxInterval > 0 {
		b.MaxInterval = r.config.MaxInterval
	}
	b.MaxElapsedTime = r.config.MaxElapsedTime

	var policy backoff.BackOff = b
	policy = backoff.WithMaxRetries(policy, r.config.MaxRetries)

	var attemptCount int
	notifyOnError := func(err error, duration time.Duration) {
		attemptCount++
		logger.WarnCtx(ctx, "Contract call failed, retrying",
			zap.String("operation", operation),
			zap.Error(err),
			zap.Int("attempt", attemptCount),
			zap.Duration("next_retry_in", duration),
		)
	}

	if err := backoff.RetryNotify(call, backoff.WithContext(policy, ctx), notifyOnError); err != nil {
		return fmt.Errorf("%w: %s failed after %d attempts: %v", domain.ErrConversionFailed, operation, attemptCount+1, err)
	}
	return nil
}

// convertToAssets expresses shares of the emitting vault as assets at the event's block
func (r *reconciler) convertToAssets(ctx context.Context, event *domain.VaultEvent, vault string, shares *big.Int) (decimal.Decimal, error) {
	var assets *big.Int
	err := r.withRetry(ctx, "convertToAssets", func() error {
		var err error
		assets, err = r.caller.ConvertToAssets(ctx, event.Chain, vault, shares, event.BlockNumber)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return toDecimal(assets), nil
}

// assetDecimals reads the decimals of a vault's underlying asset
func (r *reconciler) assetDecimals(ctx context.Context, chain domain.Chain, asset string) (uint8, error) {
	var decimals uint8
	err := r.withRetry(ctx, "decimals", func() error {
		var err error
		decimals, err = r.caller.AssetDecimals(ctx, chain, asset)
		return err
	})
	return decimals, err
}
