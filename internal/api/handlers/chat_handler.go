package handlers

import (
	"time"

	"mediskill/internal/dto"
	"mediskill/internal/models"
	"mediskill/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// SendMessage handles POST /api/v1/chat: runs one turn and returns either a
// panel or a generated reply, with the mode's quick actions attached.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	var req dto.TurnRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}
	if req.Message == "" && req.QuickAction == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message cannot be empty",
		})
	}

	var mode models.Mode
	if req.Mode != "" {
		parsed, err := models.ParseMode(req.Mode)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid mode",
			})
		}
		mode = parsed
	}

	result, err := h.chatService.HandleTurn(c.Context(), req.SessionID, req.Message, req.QuickAction, mode)
	if err != nil {
		h.logger.Error("Turn failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to process message",
		})
	}

	return c.JSON(dto.TurnResponse{
		Success:      true,
		Response:     result.Turn.Reply,
		Panel:        result.Panel,
		ResponseMode: string(result.Turn.ResponseMode),
		Mode:         string(result.Mode),
		QuickActions: h.chatService.QuickActions(result.Mode),
		Timestamp:    result.Turn.CreatedAt.Format(time.RFC3339),
	})
}

// GetHistory handles GET /api/v1/history?session_id=...
func (h *ChatHandler) GetHistory(c *fiber.Ctx) error {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	turns, err := h.chatService.History(c.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(dto.HistoryResponse{Success: true, Turns: turns})
}

// ResetSession handles POST /api/v1/reset: clears one session's history.
func (h *ChatHandler) ResetSession(c *fiber.Ctx) error {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "session_id is required",
		})
	}

	if err := h.chatService.Reset(c.Context(), req.SessionID); err != nil {
		h.logger.Error("Failed to reset session", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset session",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Chat history reset successfully",
	})
}

// ClearMemory handles POST /api/v1/memory/clear: wipes dynamic
// conversational memory while keeping the seeded knowledge base.
func (h *ChatHandler) ClearMemory(c *fiber.Ctx) error {
	if err := h.chatService.ClearMemory(c.Context()); err != nil {
		h.logger.Error("Failed to clear dynamic memory", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to clear dynamic memory",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Dynamic memory cleared successfully",
	})
}
