package types

import (
	"time"

	"github.com/google/uuid"
)

type MessagePreview struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
}

type SessionListItem struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	CreatedAt    time.Time       `json:"created_at"`
	Model        string          `json:"model"`
	IsArchived   bool            `json:"is_archived"`
	IsFavorite   bool            `json:"is_favorite"`
	Tags         []string        `json:"tags"`
	MessageCount int64           `json:"message_count"`
	LastMessage  *MessagePreview `json:"last_message"`
}

type MessageItem struct {
	ID        int       `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Model     *string   `json:"model,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type SessionDetail struct {
	ID           uuid.UUID       `json:"id"`
	Title        string          `json:"title"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Model        string          `json:"model"`
	IsArchived   bool            `json:"is_archived"`
	IsFavorite   bool            `json:"is_favorite"`
	Tags         []string        `json:"tags"`
	Messages     []MessageItem   `json:"messages"`
	MessageCount int64           `json:"message_count"`
	LastMessage  *MessagePreview `json:"last_message"`
}

type UpdateSessionRequest struct {
	Title      *string   `json:"title,omitempty"`
	IsArchived *bool     `json:"is_archived,omitempty"`
	IsFavorite *bool     `json:"is_favorite,omitempty"`
	Tags       *[]string `json:"tags,omitempty"`
}

type BulkDeleteRequest struct {
	ChatIDs []uuid.UUID `json:"chat_ids"`
}

type BulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

type ExportRequest struct {
	ChatIDs []uuid.UUID `json:"chat_ids"`
	Format  string      `json:"format"`
}

type ExportResponse struct {
	Format string          `json:"format"`
	Data   []SessionDetail `json:"data"`
}

type ModelList struct {
	Default string   `json:"default"`
	Models  []string `json:"models"`
}
