package service

import (
	"context"
	"fmt"
	"strings"

	"mediskill/internal/models"
	"mediskill/pkg/config"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// LLMService wraps the OpenAI chat and embedding APIs. It is the generation
// collaborator: callers bound the history window and the call deadline;
// any error here is recoverable per turn.
type LLMService struct {
	client         *openai.Client
	chatModel      string
	embeddingModel openai.EmbeddingModel
	logger         *zap.Logger
}

func NewLLMService(cfg *config.OpenAIConfig, logger *zap.Logger) *LLMService {
	return &LLMService{
		client:         openai.NewClient(cfg.APIKey),
		chatModel:      cfg.ChatModel,
		embeddingModel: openai.EmbeddingModel(cfg.EmbeddingModel),
		logger:         logger,
	}
}

const systemPromptTemplate = `Anda adalah MediSkill AI, asisten kesehatan sekaligus pendamping pengembangan diri (soft skills & produktivitas).

Mode aktif: %s
- "medical": fokus utama medis & kesehatan (keluhan, edukasi penyakit, obat secara umum, gaya hidup sehat). Jangan memberikan dosis spesifik; selalu sarankan konsultasi tenaga medis untuk keputusan akhir. Jika ada tanda gawat darurat, sarankan segera ke IGD.
- "softskills": fokus utama time management, habit building, mental wellness, goal setting, komunikasi efektif.

Aturan:
- Gunakan hanya informasi dari konteks di bawah dan riwayat percakapan; jangan mengarang fakta baru.
- Jika informasi terbatas, jelaskan keterbatasannya dan arahkan ke admin/CS atau tenaga profesional.
- Pertanyaan di luar domain kesehatan dan pengembangan diri cukup dijawab singkat bahwa fokus MediSkill AI ada di dua area tersebut.
- Gunakan Bahasa Indonesia yang hangat, profesional, dan mudah dipahami; ikuti gaya bahasa user.

KONTEKS:
%s`

// Generate produces the assistant reply for a generative turn. The supplied
// history is already bounded by the caller.
func (s *LLMService) Generate(ctx context.Context, userText string, mode models.Mode, snippets []models.Snippet, history []models.Turn) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf(systemPromptTemplate, mode, buildContext(snippets)),
		},
	}

	for _, t := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: t.UserText,
		})
		if t.Reply != "" {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: t.Reply,
			})
		}
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userText,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.chatModel,
		Messages:    messages,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from LLM")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Debug("Generation completed",
		zap.String("mode", string(mode)),
		zap.Int("history", len(history)),
		zap.Int("snippets", len(snippets)),
		zap.Int("reply_length", len(reply)),
	)
	return reply, nil
}

// Embed returns the embedding vector for one text.
func (s *LLMService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: s.embeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding in response")
	}
	return resp.Data[0].Embedding, nil
}

func buildContext(snippets []models.Snippet) string {
	if len(snippets) == 0 {
		return "Tidak ada informasi relevan di basis pengetahuan."
	}

	var builder strings.Builder
	for i, sn := range snippets {
		builder.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, sn.Source, sn.Content))
	}
	return builder.String()
}
