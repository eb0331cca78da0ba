package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"mediskill/internal/models"
	"mediskill/internal/repository"
	"mediskill/internal/service"
	"mediskill/pkg/config"
	"mediskill/pkg/logger"
	"mediskill/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// kbFile is the seed knowledge base: curated facts about the clinic and its
// soft-skills programs, embedded once and stored as kb_seed entries.
type kbFile struct {
	KB []kbItem `json:"kb"`
}

type kbItem struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db, appLogger); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	llmService := service.NewLLMService(&cfg.OpenAI, appLogger)

	appLogger.Info("Starting knowledge base seeding...")

	kbPath := getEnv("KB_SEED_PATH", "data/kb.json")
	if err := seedKnowledgeBase(ctx, kbPath, knowledgeRepo, llmService, appLogger); err != nil {
		appLogger.Fatal("Failed to seed knowledge base", zap.Error(err))
	}

	appLogger.Info("Knowledge base seeding completed successfully!")
}

func seedKnowledgeBase(
	ctx context.Context,
	kbPath string,
	repo *repository.KnowledgeRepository,
	llmService *service.LLMService,
	logger *zap.Logger,
) error {
	data, err := os.ReadFile(kbPath)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var file kbFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(file.KB) == 0 {
		return fmt.Errorf("seed file %s has no kb entries", kbPath)
	}

	// Re-seeding replaces prior seed entries rather than duplicating them.
	deleted, err := repo.DeleteBySource(ctx, models.EntrySourceSeed)
	if err != nil {
		return fmt.Errorf("failed to clear previous seed entries: %w", err)
	}
	if deleted > 0 {
		logger.Info("Removed previous seed entries", zap.Int64("entries", deleted))
	}

	now := time.Now()
	for _, item := range file.KB {
		if item.Text == "" {
			logger.Warn("Skipping empty seed entry", zap.String("id", item.ID))
			continue
		}

		embedding, err := llmService.Embed(ctx, item.Text)
		if err != nil {
			return fmt.Errorf("failed to embed seed entry %s: %w", item.ID, err)
		}

		entry := &models.MemoryEntry{
			ID:        uuid.New(),
			Type:      item.Type,
			Content:   item.Text,
			Embedding: embedding,
			Source:    models.EntrySourceSeed,
			CreatedAt: now,
		}
		if err := repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("failed to store seed entry %s: %w", item.ID, err)
		}

		logger.Info("Seeded knowledge entry",
			zap.String("id", item.ID),
			zap.String("type", item.Type),
			zap.Int("content_length", len(item.Text)),
		)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
