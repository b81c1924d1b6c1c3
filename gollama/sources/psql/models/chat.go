package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultTitle = "New Chat"
	DefaultModel = "phi:latest"

	SenderUser = "user"
	SenderBot  = "bot"
)

type ChatSession struct {
	ID         uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	Title      string                      `json:"title" gorm:"type:varchar(255);not null;default:'New Chat'"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at" gorm:"index:idx_user_updated,priority:2"`
	Model      string                      `json:"model" gorm:"type:varchar(50);not null;default:'phi:latest'"`
	UserID     *int                        `json:"user_id,omitempty" gorm:"index:idx_user_updated,priority:1;index:idx_session_key_user,priority:2"`
	User       *User                       `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`
	SessionKey *string                     `json:"-" gorm:"type:varchar(40);index:idx_session_key_user,priority:1"`
	IsArchived bool                        `json:"is_archived" gorm:"not null;default:false"`
	IsFavorite bool                        `json:"is_favorite" gorm:"not null;default:false"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	Messages   []Message                   `json:"-" gorm:"foreignKey:SessionID"`
}

func (s *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AddTag appends tag if not already present; order of earlier tags is kept.
func (s *ChatSession) AddTag(tag string) {
	for _, t := range s.Tags {
		if t == tag {
			return
		}
	}
	s.Tags = append(s.Tags, tag)
}

type Message struct {
	ID        int         `json:"id" gorm:"primaryKey;autoIncrement"`
	SessionID uuid.UUID   `json:"session_id" gorm:"type:uuid;not null;index:idx_session_timestamp,priority:1"`
	Session   ChatSession `json:"-" gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE"`
	Sender    string      `json:"sender" gorm:"type:varchar(10);not null"`
	Content   string      `json:"content" gorm:"type:text;not null"`
	Model     *string     `json:"model,omitempty" gorm:"type:varchar(50)"`
	Timestamp time.Time   `json:"timestamp" gorm:"autoCreateTime;index:idx_session_timestamp,priority:2"`
	IsEdited  bool        `json:"is_edited" gorm:"not null;default:false"`
	EditedAt  *time.Time  `json:"edited_at,omitempty"`
}
