package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/novatoken/marketplace/api"
	"github.com/novatoken/marketplace/internal/config"
	"github.com/novatoken/marketplace/internal/database"
	"github.com/novatoken/marketplace/internal/identities"
	"github.com/novatoken/marketplace/internal/ledger"
	"github.com/novatoken/marketplace/internal/listing"
	"github.com/novatoken/marketplace/internal/marketplace"
	"github.com/novatoken/marketplace/internal/registry"
	"github.com/novatoken/marketplace/pkg/logger"
	"github.com/novatoken/marketplace/pkg/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	zapLogger, err := logger.NewLogger(logLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := database.NewPostgresDB(cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	var cache *redis.Client
	if cfg.Redis.Enabled {
		cache, err = database.NewRedisClient(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
	}

	// Schedule DB pool metrics collection every 30s
	metricsDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if sqlDB, err := db.DB(); err == nil {
					stats := sqlDB.Stats()
					metrics.DBOpenConns.WithLabelValues("postgres").Set(float64(stats.OpenConnections))
					metrics.DBIdleConns.WithLabelValues("postgres").Set(float64(stats.Idle))
					metrics.DBInUseConns.WithLabelValues("postgres").Set(float64(stats.InUse))
				}
			case <-metricsDone:
				return
			}
		}
	}()

	identitiesSvc, err := identities.NewService(zapLogger, db)
	if err != nil {
		zapLogger.Fatal("Failed to create identities service", zap.Error(err))
	}

	registrySvc, err := registry.NewService(zapLogger, db)
	if err != nil {
		zapLogger.Fatal("Failed to create registry service", zap.Error(err))
	}

	ledgerSvc, err := ledger.NewService(zapLogger, db)
	if err != nil {
		zapLogger.Fatal("Failed to create ledger service", zap.Error(err))
	}

	listingMgr, err := listing.NewManager(zapLogger, db, registrySvc, ledgerSvc)
	if err != nil {
		zapLogger.Fatal("Failed to create listing manager", zap.Error(err))
	}

	marketplaceSvc, err := marketplace.NewService(zapLogger, registrySvc, listingMgr, ledgerSvc, cache)
	if err != nil {
		zapLogger.Fatal("Failed to create marketplace service", zap.Error(err))
	}

	apiServer := api.NewServer(zapLogger, marketplaceSvc, identitiesSvc)

	if err := identitiesSvc.Start(); err != nil {
		zapLogger.Fatal("Failed to start identities service", zap.Error(err))
	}
	if err := registrySvc.Start(); err != nil {
		zapLogger.Fatal("Failed to start registry service", zap.Error(err))
	}
	if err := ledgerSvc.Start(); err != nil {
		zapLogger.Fatal("Failed to start ledger service", zap.Error(err))
	}
	if err := listingMgr.Start(); err != nil {
		zapLogger.Fatal("Failed to start listing manager", zap.Error(err))
	}
	if err := marketplaceSvc.Start(); err != nil {
		zapLogger.Fatal("Failed to start marketplace service", zap.Error(err))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		if err := apiServer.Start(addr); err != nil {
			zapLogger.Fatal("Failed to start API server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	close(metricsDone)

	if err := marketplaceSvc.Stop(); err != nil {
		zapLogger.Error("Failed to stop marketplace service", zap.Error(err))
	}
	if err := listingMgr.Stop(); err != nil {
		zapLogger.Error("Failed to stop listing manager", zap.Error(err))
	}
	if err := ledgerSvc.Stop(); err != nil {
		zapLogger.Error("Failed to stop ledger service", zap.Error(err))
	}
	if err := registrySvc.Stop(); err != nil {
		zapLogger.Error("Failed to stop registry service", zap.Error(err))
	}
	if err := identitiesSvc.Stop(); err != nil {
		zapLogger.Error("Failed to stop identities service", zap.Error(err))
	}

	if cache != nil {
		if err := cache.Close(); err != nil {
			zapLogger.Error("Failed to close Redis client", zap.Error(err))
		}
	}
	if err := database.Close(db); err != nil {
		zapLogger.Error("Failed to close database", zap.Error(err))
	}

	zapLogger.Info("Server exited properly")
}
