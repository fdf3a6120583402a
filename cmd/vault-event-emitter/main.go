package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/feral-file/ff-vault-indexer/internal/adapter"
	"github.com/feral-file/ff-vault-indexer/internal/block"
	"github.com/feral-file/ff-vault-indexer/internal/config"
	"github.com/feral-file/ff-vault-indexer/internal/emitter"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-vault-indexer/internal/providers/jetstream"
	"github.com/feral-file/ff-vault-indexer/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadEmitterConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "vault-event-emitter",
		Environment:     cfg.Environment,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Tags: map[string]string{
			"chain": string(cfg.Ethereum.ChainID),
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Vault Event Emitter", zap.String("chain", string(cfg.Ethereum.ChainID)))

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database")

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Vaults indexed by an earlier run are tracked from the start
	knownVaults, err := dataStore.ListVaultAddresses(ctx, cfg.Ethereum.ChainID)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to list indexed vaults", zap.Error(err))
	}
	knownVaults = append(knownVaults, cfg.Ethereum.KnownVaults...)

	// Initialize adapters
	clockAdapter := adapter.NewClock()
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()

	// Initialize ethereum client
	ethDialer := adapter.NewEthClientDialer()
	ethClient, err := ethDialer.Dial(ctx, cfg.Ethereum.WebSocketURL)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to dial Ethereum node", zap.Error(err), zap.String("websocket_url", cfg.Ethereum.WebSocketURL))
	}

	// Initialize block provider
	blockProvider, err := block.NewBlockProvider(
		ethereum.NewEthereumBlockFetcher(ethClient),
		block.Config{
			TTL:                cfg.Ethereum.BlockHeadTTL,
			StaleWindow:        cfg.Ethereum.BlockHeadStaleWindow,
			TimestampCacheSize: cfg.Ethereum.TimestampCacheSize,
		},
		clockAdapter,
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create block provider", zap.Error(err))
	}

	// Initialize NATS publisher
	natsPublisher, err := jetstream.NewPublisher(
		ctx,
		jetstream.Config{
			URL:             cfg.NATS.URL,
			StreamName:      cfg.NATS.StreamName,
			MaxReconnects:   cfg.NATS.MaxReconnects,
			ReconnectWait:   cfg.NATS.ReconnectWait,
			ConnectionName:  cfg.NATS.ConnectionName,
			DuplicateWindow: cfg.NATS.DuplicateWindow,
		}, natsJS, jsonAdapter)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create NATS publisher", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	logger.InfoCtx(ctx, "Connected to NATS JetStream")

	// Initialize vault subscriber
	vaultSubscriber, err := ethereum.NewSubscriber(ethereum.Config{
		ChainID:           cfg.Ethereum.ChainID,
		FactoryAddress:    cfg.Ethereum.FactoryAddress,
		FactoryStartBlock: cfg.Ethereum.FactoryStartBlock,
		KnownVaults:       knownVaults,
		BackfillStepSize:  cfg.Ethereum.BackfillStepSize,
	}, ethClient, ethereum.NewDecoder(cfg.Ethereum.ChainID, blockProvider), blockProvider)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create vault subscriber", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Tracking vaults",
		zap.String("factory", cfg.Ethereum.FactoryAddress),
		zap.Int("known_vaults", len(knownVaults)))

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	eventEmitter := emitter.NewEmitter(
		vaultSubscriber,
		natsPublisher,
		dataStore,
		emitter.Config{
			ChainID:         cfg.Ethereum.ChainID,
			StartBlock:      cfg.Ethereum.StartBlock,
			CursorSaveFreq:  cfg.Cursor.SaveFrequency,
			CursorSaveDelay: cfg.Cursor.SaveDelay,
		},
		clockAdapter,
	)
	defer eventEmitter.Close()

	// Channel for emitter errors
	errCh := make(chan error, 1)

	// Start the emitter
	go func() {
		if err := eventEmitter.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or error
	exitCode := 0
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.ErrorCtx(ctx, err, zap.String("component", "emitter"))
		exitCode = 1
		cancel()
	}

	// Give some time for graceful shutdown
	time.Sleep(time.Second)

	// Use non-context logger for final shutdown message since context is already canceled
	logger.Info("Vault Event Emitter stopped")
	if exitCode != 0 {
		logger.Flush(2 * time.Second)
		os.Exit(exitCode) //nolint:gocritic
	}
}
