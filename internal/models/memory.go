package models

import (
	"time"

	"github.com/google/uuid"
)

// Sources of memory entries. Seeded knowledge survives a dynamic-memory
// wipe; chat-derived entries do not.
const (
	EntrySourceSeed = "kb_seed"
	EntrySourceChat = "chat_history"
)

// MemoryEntry is one row of the vector memory store: a knowledge-base item
// or a remembered past conversation.
type MemoryEntry struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"-"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
