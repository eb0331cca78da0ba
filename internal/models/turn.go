package models

import (
	"time"

	"github.com/google/uuid"
)

// ResponseMode is how a turn was answered.
type ResponseMode string

const (
	ResponsePanel      ResponseMode = "panel"
	ResponseGenerative ResponseMode = "generative"
	ResponseFallback   ResponseMode = "fallback"
)

// Turn is one user message and its fully resolved response. A turn is never
// mutated after completion.
type Turn struct {
	ID           uuid.UUID    `json:"id"`
	SessionID    string       `json:"session_id"`
	UserText     string       `json:"user_text"`
	Intent       string       `json:"intent,omitempty"`
	ResponseMode ResponseMode `json:"response_mode"`
	PanelID      string       `json:"panel_id,omitempty"`
	Snippets     []string     `json:"snippets,omitempty"`
	Reply        string       `json:"reply,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Snippet is one retrieved memory fragment attached to a generative turn.
type Snippet struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}
