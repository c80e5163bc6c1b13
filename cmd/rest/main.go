package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"multimodal-assistant-be/internal/bootstrap"
	"multimodal-assistant-be/internal/config"
	"multimodal-assistant-be/internal/pkg/logger"
	"multimodal-assistant-be/internal/server"
	"multimodal-assistant-be/internal/tracer"
	"multimodal-assistant-be/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 0. Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer("multimodal-assistant-be")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	if cfg.UsesDefaultSessionSecret() {
		if cfg.IsProduction() {
			log.Panicf("SESSION_SECRET must be set in production")
		}
		sysLogger.Warn("MAIN", "SESSION_SECRET not set, session tokens are signed with the built-in secret", nil)
	}

	// 2. Database (optional, keeps the dispatch audit trail)
	var gormDB *gorm.DB
	if cfg.Database.Connection != "" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	} else {
		sysLogger.Warn("MAIN", "DB_CONNECTION_STRING not set, dispatch history is disabled", nil)
	}

	// 3. Bootstrap Dependencies (Container)
	collaborators, closeCollaborators := bootstrap.DefaultCollaborators(cfg, sysLogger)
	container := bootstrap.NewContainer(cfg, gormDB, collaborators, sysLogger)
	container.AddCloser(closeCollaborators)

	// 4. Start Background Services
	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	go func() {
		sysLogger.Info("MAIN", "Starting dispatch consumer", nil)
		if err := container.ConsumerService.Consume(consumerCtx); err != nil {
			sysLogger.Error("MAIN", "Dispatch consumer stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		sysLogger.Info("MAIN", "Shutting down", nil)
		if err := srv.Shutdown(); err != nil {
			sysLogger.Error("MAIN", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("MAIN", "Server stopped", map[string]interface{}{"error": err.Error()})
	}

	stopConsumer()
	container.SessionManager.CloseAll()
	if err := container.Close(); err != nil {
		sysLogger.Error("MAIN", "Failed to release resources", map[string]interface{}{"error": err.Error()})
	}
}
