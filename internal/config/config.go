package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	Environment string `mapstructure:"environment"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`     // Maximum number of open connections to the database
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`     // Maximum number of idle connections in the pool
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`  // Maximum amount of time a connection may be reused (e.g., "5m", "1h")
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"` // Maximum amount of time a connection may be idle (e.g., "10m", "30m")
}

// NATSConfig holds NATS JetStream configuration
type NATSConfig struct {
	URL             string        `mapstructure:"url"`
	StreamName      string        `mapstructure:"stream_name"`
	ConsumerName    string        `mapstructure:"consumer_name"`
	MaxReconnects   int           `mapstructure:"max_reconnects"`
	ReconnectWait   time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName  string        `mapstructure:"connection_name"`
	DuplicateWindow time.Duration `mapstructure:"duplicate_window"`
	AckWait         time.Duration `mapstructure:"ack_wait"`
	MaxDeliver      int           `mapstructure:"max_deliver"`
	NakDelay        time.Duration `mapstructure:"nak_delay"`
}

// EthereumConfig holds the chain access configuration of the emitter
type EthereumConfig struct {
	WebSocketURL         string        `mapstructure:"websocket_url"`
	ChainID              domain.Chain  `mapstructure:"chain_id"`
	StartBlock           uint64        `mapstructure:"start_block"`
	FactoryAddress       string        `mapstructure:"factory_address"`
	FactoryStartBlock    uint64        `mapstructure:"factory_start_block"`
	KnownVaults          []string      `mapstructure:"known_vaults"`
	BackfillStepSize     uint64        `mapstructure:"backfill_step_size"`
	BlockHeadTTL         time.Duration `mapstructure:"block_head_ttl"`
	BlockHeadStaleWindow time.Duration `mapstructure:"block_head_stale_window"`
	TimestampCacheSize   int           `mapstructure:"timestamp_cache_size"`
}

// CursorConfig holds how often the emitter persists its block cursor
type CursorConfig struct {
	SaveFrequency uint64        `mapstructure:"save_frequency"` // in blocks
	SaveDelay     time.Duration `mapstructure:"save_delay"`
}

// ChainConfig holds the RPC endpoint the reconciler uses for read-only calls on a chain
type ChainConfig struct {
	ChainID domain.Chain `mapstructure:"chain_id"`
	RPCURL  string       `mapstructure:"rpc_url"`
}

// ConversionConfig holds the retry policy of read-only contract calls
type ConversionConfig struct {
	MaxRetries      uint64        `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`

	// RequestsPerSecond caps read-only calls per chain (0 disables the limit)
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// EmitterConfig holds configuration for vault-event-emitter
type EmitterConfig struct {
	BaseConfig `mapstructure:",squash"`
	Database   DatabaseConfig `mapstructure:"database"`
	NATS       NATSConfig     `mapstructure:"nats"`
	Ethereum   EthereumConfig `mapstructure:"ethereum"`
	Cursor     CursorConfig   `mapstructure:"cursor"`
}

// ReconcilerConfig holds configuration for vault-reconciler
type ReconcilerConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	NATS       NATSConfig       `mapstructure:"nats"`
	Chains     []ChainConfig    `mapstructure:"chains"`
	Conversion ConversionConfig `mapstructure:"conversion"`
}

// LoadEmitterConfig loads configuration for vault-event-emitter
func LoadEmitterConfig(configFile string, envPath string) (*EmitterConfig, error) {
	v := configureViper("vault-event-emitter", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("nats.connection_name", "vault-event-emitter")
	v.SetDefault("ethereum.chain_id", "eip155:1")
	v.SetDefault("ethereum.backfill_step_size", 10000)
	v.SetDefault("ethereum.block_head_ttl", "12s")
	v.SetDefault("ethereum.block_head_stale_window", "60s")
	v.SetDefault("ethereum.timestamp_cache_size", 4096)
	v.SetDefault("cursor.save_frequency", 2)
	v.SetDefault("cursor.save_delay", "30s")

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config EmitterConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if !domain.IsValidChain(config.Ethereum.ChainID) {
		return nil, fmt.Errorf("invalid ethereum.chain_id: %q", config.Ethereum.ChainID)
	}
	if config.Ethereum.FactoryAddress == "" {
		return nil, errors.New("ethereum.factory_address is required")
	}

	return &config, nil
}

// LoadReconcilerConfig loads configuration for vault-reconciler
func LoadReconcilerConfig(configFile string, envPath string) (*ReconcilerConfig, error) {
	v := configureViper("vault-reconciler", configFile, envPath)

	// Set defaults
	setCommonDefaults(v)
	v.SetDefault("nats.connection_name", "vault-reconciler")
	v.SetDefault("nats.consumer_name", "vault-reconciler")
	v.SetDefault("nats.ack_wait", "2m")
	v.SetDefault("nats.max_deliver", -1)
	v.SetDefault("nats.nak_delay", "5s")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("conversion.max_retries", 5)
	v.SetDefault("conversion.initial_interval", "500ms")
	v.SetDefault("conversion.max_interval", "10s")
	v.SetDefault("conversion.max_elapsed_time", "1m")
	v.SetDefault("conversion.requests_per_second", 0)
	v.SetDefault("conversion.burst", 5)

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var config ReconcilerConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(config.Chains) == 0 {
		return nil, errors.New("at least one chain is required")
	}
	seen := make(map[domain.Chain]bool, len(config.Chains))
	for _, chain := range config.Chains {
		if !domain.IsValidChain(chain.ChainID) {
			return nil, fmt.Errorf("invalid chains.chain_id: %q", chain.ChainID)
		}
		if chain.RPCURL == "" {
			return nil, fmt.Errorf("chains.rpc_url is required for %s", chain.ChainID)
		}
		if seen[chain.ChainID] {
			return nil, fmt.Errorf("duplicate chain: %s", chain.ChainID)
		}
		seen[chain.ChainID] = true
	}

	return &config, nil
}

// ChainIDs returns the configured chains in order
func (c *ReconcilerConfig) ChainIDs() []domain.Chain {
	chains := make([]domain.Chain, 0, len(c.Chains))
	for _, chain := range c.Chains {
		chains = append(chains, chain.ChainID)
	}
	return chains
}

func setCommonDefaults(v *viper.Viper) {
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.stream_name", "VAULT_EVENTS")
	v.SetDefault("nats.duplicate_window", "24h")
}

// readConfig reads the config file, falling back to environment variables when there is none
func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		// An explicit config file path that does not exist surfaces as a path error
		var pathErr *os.PathError
		if errors.As(err, &pathErr) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// Search for config.yaml in multiple locations:
		// 1. Current directory
		v.AddConfigPath(".")
		// 2. Service-specific directory (e.g., cmd/vault-reconciler/)
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		// 3. Config directory
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("FF_VAULT_INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// This is required for viper to map env vars to config struct fields when no config file exists.
// The chains list of the reconciler can only be set from the config file.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"environment",
		"sentry_dsn",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.stream_name",
		"nats.consumer_name",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		"nats.duplicate_window",
		"nats.ack_wait",
		"nats.max_deliver",
		"nats.nak_delay",
		// Ethereum
		"ethereum.websocket_url",
		"ethereum.chain_id",
		"ethereum.start_block",
		"ethereum.factory_address",
		"ethereum.factory_start_block",
		"ethereum.known_vaults",
		"ethereum.backfill_step_size",
		"ethereum.block_head_ttl",
		"ethereum.block_head_stale_window",
		"ethereum.timestamp_cache_size",
		// Cursor
		"cursor.save_frequency",
		"cursor.save_delay",
		// Conversion
		"conversion.max_retries",
		"conversion.initial_interval",
		"conversion.max_interval",
		"conversion.max_elapsed_time",
		"conversion.requests_per_second",
		"conversion.burst",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	// Always try shared base first, then local, then optional per-service local.
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	// Default to config directory
	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
