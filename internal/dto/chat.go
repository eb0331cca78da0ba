package dto

import "mediskill/internal/models"

// TurnRequest is one user turn. QuickAction carries the id of a clicked
// quick action; Mode, when set, switches the session before the turn runs.
type TurnRequest struct {
	Message     string `json:"message"`
	SessionID   string `json:"session_id"`
	Mode        string `json:"mode,omitempty"`
	QuickAction string `json:"quick_action,omitempty"`
}

// TurnResponse carries either a generated/fallback reply or a panel, plus
// the mode the turn ran under and the quick actions available in it.
type TurnResponse struct {
	Success      bool                 `json:"success"`
	Response     string               `json:"response,omitempty"`
	Panel        *models.Panel        `json:"panel,omitempty"`
	ResponseMode string               `json:"response_mode"`
	Mode         string               `json:"mode"`
	QuickActions []models.QuickAction `json:"quick_actions"`
	Timestamp    string               `json:"timestamp"`
}

type HistoryResponse struct {
	Success bool          `json:"success"`
	Turns   []models.Turn `json:"turns"`
}

// PanelsResponse is the preview surface: the panel a query would route to
// (absent when it routes to generation) and the mode's quick actions.
type PanelsResponse struct {
	Success      bool                 `json:"success"`
	Panel        *models.Panel        `json:"panel,omitempty"`
	QuickActions []models.QuickAction `json:"quick_actions"`
}
