package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/mep3ab4ik/GoB/internal/ability" // Import to register card behaviors
	"github.com/mep3ab4ik/GoB/internal/battle"
	"github.com/mep3ab4ik/GoB/internal/cache"
	"github.com/mep3ab4ik/GoB/internal/config"
	"github.com/mep3ab4ik/GoB/internal/repository"
	"github.com/mep3ab4ik/GoB/internal/session"
)

var (
	configPath = flag.String("config", "config/config.yaml", "path to configuration file")
	version    = "dev" // set via ldflags during build
)

// creatorAdapter narrows the battle manager to the session layer's creation
// contract.
type creatorAdapter struct {
	manager *battle.Manager
}

func (c creatorAdapter) Create(ctx context.Context, roomID, ticket1, ticket2 string, gameModeID int64) error {
	_, err := c.manager.Create(ctx, roomID, ticket1, ticket2, gameModeID)
	return err
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting battle server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	db, err := repository.NewDB(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	store := repository.NewStore(db)

	cacheClient, err := cache.New(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB,
		cfg.Battle.SnapshotTTL, cfg.Battle.LockTTL, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer cacheClient.Close()
	logger.Info("cache client initialized", zap.String("address", cfg.Redis.Address))

	hub := session.NewHub(logger)

	manager := battle.NewManager(store, store.Enchantments, cacheClient, hub, store.PlayerDecks, cfg.Battle, logger)
	defer manager.Stop()
	logger.Info("battle manager initialized",
		zap.Duration("reconnect_grace", cfg.Battle.ReconnectGrace),
		zap.Int("first_joiner_seat", cfg.Battle.FirstJoinerSeat),
	)

	tickets := session.NewTicketCodec(cfg.Auth.TicketSecret, cfg.Auth.TicketTTL)
	server := session.NewServer(cfg.Server, hub, manager, creatorAdapter{manager}, tickets, logger)

	go func() {
		if serveErr := server.ListenAndServe(); serveErr != nil {
			logger.Error("session server error", zap.Error(serveErr))
		}
	}()

	logger.Info("battle server initialized",
		zap.String("address", cfg.Server.Address),
	)

	sig := <-sigChan
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	logger.Info("shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("session server shutdown failed", zap.Error(err))
	}

	logger.Info("battle server stopped")
}

// initLogger initializes the zap logger based on configuration
func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "info":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
