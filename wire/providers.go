package wire

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/Digital-Creators-Team/velvet-slots/config"
	"github.com/Digital-Creators-Team/velvet-slots/db/redis"
	"github.com/Digital-Creators-Team/velvet-slots/engine"
	"github.com/Digital-Creators-Team/velvet-slots/events/kafka"
	"github.com/Digital-Creators-Team/velvet-slots/logging"
	"github.com/Digital-Creators-Team/velvet-slots/server"
	"github.com/Digital-Creators-Team/velvet-slots/session"
	"github.com/Digital-Creators-Team/velvet-slots/wallet"
)

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRedisClient provides a Redis client
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	return redis.New(cfg.Redis)
}

// ProvideGameConfig loads the engine configuration tables
func ProvideGameConfig(cfg *config.Config) (*engine.Config, error) {
	return engine.LoadConfig(cfg.Game.ConfigPath)
}

// ProvideSessionStore provides the Redis-backed session store
func ProvideSessionStore(client *redis.Client) *session.RedisStore {
	return session.NewRedisStore(client)
}

// ProvideLedger provides the wallet service client
func ProvideLedger(cfg *config.Config, logger zerolog.Logger) *wallet.HTTPLedger {
	return wallet.NewHTTPLedger(cfg.Wallet.BaseURL, cfg.Wallet.Timeout, logger)
}

// ProvidePublisher provides the Kafka event publisher. Returns nil
// when no brokers are configured, which disables event publishing.
func ProvidePublisher(cfg *config.Config, logger zerolog.Logger) (*kafka.Publisher, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		return nil, err
	}
	return kafka.NewPublisher(producer, cfg.Kafka.Topics, logger), nil
}

// ProvideServerOptions provides server options
func ProvideServerOptions(
	cfg *config.Config,
	logger zerolog.Logger,
	gameCfg *engine.Config,
	store *session.RedisStore,
	ledger *wallet.HTTPLedger,
	publisher *kafka.Publisher,
) server.Options {
	return server.Options{
		Config:     cfg,
		Logger:     logger,
		GameConfig: gameCfg,
		Store:      store,
		Locker:     store,
		Ledger:     ledger,
		Publisher:  publisher,
	}
}

// ProvideApp provides the main application
func ProvideApp(opts server.Options) *server.App {
	return server.New(opts)
}

// ConfigSet is the wire provider set for configuration
var ConfigSet = wire.NewSet(
	config.Load,
)

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// RedisSet is the wire provider set for Redis
var RedisSet = wire.NewSet(
	ProvideRedisClient,
)

// GameSet is the wire provider set for the engine configuration
var GameSet = wire.NewSet(
	ProvideGameConfig,
)

// StorageSet is the wire provider set for session persistence
var StorageSet = wire.NewSet(
	ProvideSessionStore,
)

// WalletSet is the wire provider set for the wallet client
var WalletSet = wire.NewSet(
	ProvideLedger,
)

// EventSet is the wire provider set for Kafka publishing
var EventSet = wire.NewSet(
	ProvidePublisher,
)

// ServerSet is the wire provider set for server
var ServerSet = wire.NewSet(
	ProvideServerOptions,
	ProvideApp,
)

// FullSet includes all providers
var FullSet = wire.NewSet(
	LoggingSet,
	RedisSet,
	GameSet,
	StorageSet,
	WalletSet,
	EventSet,
	ServerSet,
)
