package handlers

import (
	"mediskill/internal/dto"
	"mediskill/internal/models"
	"mediskill/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type PanelHandler struct {
	chatService *service.ChatService
	logger      *zap.Logger
}

func NewPanelHandler(chatService *service.ChatService, logger *zap.Logger) *PanelHandler {
	return &PanelHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// GetPanels handles GET /api/v1/panels?q=...&mode=...: previews the panel a
// text would route to, without running a turn.
func (h *PanelHandler) GetPanels(c *fiber.Ctx) error {
	mode := models.ModeMedical
	if m := c.Query("mode"); m != "" {
		parsed, err := models.ParseMode(m)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid mode",
			})
		}
		mode = parsed
	}

	return c.JSON(dto.PanelsResponse{
		Success:      true,
		Panel:        h.chatService.Preview(c.Query("q"), mode),
		QuickActions: h.chatService.QuickActions(mode),
	})
}
