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
	"github.com/feral-file/ff-vault-indexer/internal/api/server"
	"github.com/feral-file/ff-vault-indexer/internal/config"
	"github.com/feral-file/ff-vault-indexer/internal/consumer"
	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/logger"
	"github.com/feral-file/ff-vault-indexer/internal/providers/ethereum"
	"github.com/feral-file/ff-vault-indexer/internal/providers/jetstream"
	"github.com/feral-file/ff-vault-indexer/internal/ratelimit"
	"github.com/feral-file/ff-vault-indexer/internal/reconciler"
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
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		Service:         "vault-reconciler",
		Environment:     cfg.Environment,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Vault Reconciler", zap.Int("chains", len(cfg.Chains)))

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.FatalCtx(ctx, "Failed to connect to database", zap.Error(err), zap.String("host", cfg.Database.Host))
	}
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.FatalCtx(ctx, "Failed to configure connection pool", zap.Error(err))
	}
	logger.InfoCtx(ctx, "Connected to database",
		zap.Int("max_open_conns", cfg.Database.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.Database.MaxIdleConns),
	)

	// Initialize store
	dataStore := store.NewPGStore(db)

	// Initialize adapters
	jsonAdapter := adapter.NewJSON()
	natsJS := adapter.NewNatsJetStream()

	// Dial one RPC client per chain for read-only contract calls
	ethDialer := adapter.NewEthClientDialer()
	clients := make(map[domain.Chain]adapter.EthClient, len(cfg.Chains))
	for _, chain := range cfg.Chains {
		client, err := ethDialer.Dial(ctx, chain.RPCURL)
		if err != nil {
			logger.FatalCtx(ctx, "Failed to dial Ethereum RPC", zap.Error(err), zap.String("chain", string(chain.ChainID)))
		}
		defer client.Close()
		clients[chain.ChainID] = client
	}

	rpcLimiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.Conversion.RequestsPerSecond,
		Burst:             cfg.Conversion.Burst,
	})
	vaultReconciler := reconciler.NewReconciler(dataStore, ethereum.NewVaultCaller(clients, rpcLimiter), reconciler.Config{
		MaxRetries:      cfg.Conversion.MaxRetries,
		InitialInterval: cfg.Conversion.InitialInterval,
		MaxInterval:     cfg.Conversion.MaxInterval,
		MaxElapsedTime:  cfg.Conversion.MaxElapsedTime,
	})

	// Initialize NATS consumer
	eventConsumer, err := consumer.NewConsumer(
		ctx,
		consumer.Config{
			NATS: jetstream.Config{
				URL:             cfg.NATS.URL,
				StreamName:      cfg.NATS.StreamName,
				MaxReconnects:   cfg.NATS.MaxReconnects,
				ReconnectWait:   cfg.NATS.ReconnectWait,
				ConnectionName:  cfg.NATS.ConnectionName,
				DuplicateWindow: cfg.NATS.DuplicateWindow,
			},
			ConsumerName:   cfg.NATS.ConsumerName,
			Chains:         cfg.ChainIDs(),
			AckWaitTimeout: cfg.NATS.AckWait,
			MaxDeliver:     cfg.NATS.MaxDeliver,
			NakDelay:       cfg.NATS.NakDelay,
		},
		natsJS,
		vaultReconciler,
		jsonAdapter,
	)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to create NATS consumer", zap.Error(err), zap.String("url", cfg.NATS.URL))
	}
	defer eventConsumer.Close()
	logger.InfoCtx(ctx, "Connected to NATS JetStream")

	// Status server
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		Chains:       cfg.ChainIDs(),
	}, dataStore)

	errCh := make(chan error, 2)
	go func() {
		if err := srv.Start(ctx); err != nil {
			errCh <- fmt.Errorf("status server: %w", err)
		}
	}()
	go func() {
		if err := eventConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("consumer: %w", err)
		}
	}()

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.ErrorCtx(ctx, err)
		exitCode = 1
	}
	cancel()

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorCtx(shutdownCtx, err)
	}

	// Use non-context logger for final message since original ctx is canceled
	logger.Info("Vault Reconciler stopped")
	if exitCode != 0 {
		logger.Flush(2 * time.Second)
		os.Exit(exitCode) //nolint:gocritic
	}
}
