package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mediskill/internal/api"
	"mediskill/internal/api/handlers"
	"mediskill/internal/catalog"
	"mediskill/internal/repository"
	"mediskill/internal/repository/memory"
	"mediskill/internal/service"
	"mediskill/pkg/config"
	"mediskill/pkg/logger"
	"mediskill/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting MediSkill AI service")

	// Load the interface catalog; a malformed source is fatal, the service
	// never serves with a partial catalog.
	cat, err := catalog.Load(catalog.Sources{
		QuickActionsPath: cfg.Catalog.QuickActionsPath(),
		IntentRulesPath:  cfg.Catalog.IntentRulesPath(),
		PanelPaths:       cfg.Catalog.PanelPaths(),
	})
	if err != nil {
		appLogger.Fatal("Failed to load interface catalog", zap.Error(err))
	}
	appLogger.Info("Interface catalog loaded",
		zap.Int("panels", len(cat.Panels())),
		zap.Int("intents", len(cat.Intents())),
	)

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	historyRepo := repository.NewHistoryRepository(db, appLogger)
	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	sessionRepo := memory.NewSessionRepository(cfg.Chat.SessionTTL)

	// Initialize services
	llmService := service.NewLLMService(&cfg.OpenAI, appLogger)
	ragService := service.NewRAGService(knowledgeRepo, llmService, &cfg.RAG, appLogger)
	chatService := service.NewChatService(cat, sessionRepo, ragService, llmService, historyRepo, &cfg.Chat, appLogger)

	// Initialize handlers
	chatHandler := handlers.NewChatHandler(chatService, appLogger)
	panelHandler := handlers.NewPanelHandler(chatService, appLogger)

	// Setup router
	app := api.SetupRouter(chatHandler, panelHandler, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}
