package service

import (
	"context"
	"fmt"
	"time"

	"mediskill/internal/models"
	"mediskill/internal/repository"
	"mediskill/pkg/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Embedder turns text into a vector. Implemented by LLMService.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RAGService is the retrieval context provider: it searches the vector
// memory store and writes completed conversations back into it.
type RAGService struct {
	knowledgeRepo *repository.KnowledgeRepository
	embedder      Embedder
	config        *config.RAGConfig
	logger        *zap.Logger
}

func NewRAGService(knowledgeRepo *repository.KnowledgeRepository, embedder Embedder, cfg *config.RAGConfig, logger *zap.Logger) *RAGService {
	return &RAGService{
		knowledgeRepo: knowledgeRepo,
		embedder:      embedder,
		config:        cfg,
		logger:        logger,
	}
}

// Retrieve returns up to k snippets relevant to the query, most relevant
// first. An empty store yields an empty result. When the query cannot be
// embedded, plain text search is the fallback.
func (s *RAGService) Retrieve(ctx context.Context, query string, k int) ([]models.Snippet, error) {
	if k <= 0 {
		k = s.config.TopK
	}

	var entries []*models.MemoryEntry
	embedding, err := s.embedder.Embed(ctx, query)
	if err == nil {
		entries, err = s.knowledgeRepo.SearchSimilar(ctx, embedding, k)
	} else {
		s.logger.Warn("Query embedding failed, using text search", zap.Error(err))
		entries, err = s.knowledgeRepo.TextSearch(ctx, query, k)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search memory store: %w", err)
	}

	snippets := make([]models.Snippet, 0, len(entries))
	for _, e := range entries {
		snippets = append(snippets, models.Snippet{Content: e.Content, Source: e.Type})
	}

	s.logger.Debug("Retrieval completed",
		zap.String("query", query),
		zap.Int("results", len(snippets)),
	)
	return snippets, nil
}

// Remember stores a completed generative exchange as dynamic memory so later
// turns can retrieve it.
func (s *RAGService) Remember(ctx context.Context, userText, reply string) error {
	content := fmt.Sprintf("User bertanya: %s. Jawabannya: %s", userText, reply)

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("failed to embed conversation: %w", err)
	}

	entry := &models.MemoryEntry{
		ID:        uuid.New(),
		Type:      "conversation",
		Content:   content,
		Embedding: embedding,
		Source:    models.EntrySourceChat,
		CreatedAt: time.Now(),
	}
	if err := s.knowledgeRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to store conversation memory: %w", err)
	}
	return nil
}

// Forget wipes dynamic conversational memory. Seeded knowledge-base entries
// are kept.
func (s *RAGService) Forget(ctx context.Context) error {
	deleted, err := s.knowledgeRepo.DeleteBySource(ctx, models.EntrySourceChat)
	if err != nil {
		return fmt.Errorf("failed to clear dynamic memory: %w", err)
	}
	s.logger.Info("Dynamic memory cleared", zap.Int64("entries", deleted))
	return nil
}
