package dao

import (
	"context"
	"time"

	"gollama/gollama/sources/psql/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatDAO struct {
	DB *gorm.DB
}

func NewChatDAO(db *gorm.DB) *ChatDAO {
	return &ChatDAO{DB: db}
}

// Viewer identifies who is looking at a chat: an authenticated user, or an
// anonymous browser session key. Ownership resolution prefers the user.
type Viewer struct {
	UserID     *int
	SessionKey *string
}

func (v Viewer) Owns(s *models.ChatSession) bool {
	if s.UserID != nil {
		return v.UserID != nil && *v.UserID == *s.UserID
	}
	return v.SessionKey != nil && s.SessionKey != nil && *v.SessionKey == *s.SessionKey
}

type ListFilters struct {
	Search   string
	Model    string
	DateFrom *time.Time
	DateTo   *time.Time
}

// Sessions with no messages sort by creation time only.
const activeFirst = "COALESCE((SELECT MAX(timestamp) FROM messages WHERE messages.session_id = chat_sessions.id), chat_sessions.created_at) DESC"

func (dao *ChatDAO) CreateSession(ctx context.Context, viewer Viewer, model string) (*models.ChatSession, error) {
	session := models.ChatSession{
		Title:      models.DefaultTitle,
		Model:      model,
		UserID:     viewer.UserID,
		SessionKey: viewer.SessionKey,
	}
	if session.Model == "" {
		session.Model = models.DefaultModel
	}
	if err := dao.DB.WithContext(ctx).Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (dao *ChatDAO) GetSession(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	err := dao.DB.WithContext(ctx).First(&session, "id = ?", id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (dao *ChatDAO) viewerScope(ctx context.Context, viewer Viewer) *gorm.DB {
	q := dao.DB.WithContext(ctx).Model(&models.ChatSession{})
	if viewer.UserID != nil {
		return q.Where("user_id = ?", *viewer.UserID)
	}
	if viewer.SessionKey != nil {
		return q.Where("user_id IS NULL AND session_key = ?", *viewer.SessionKey)
	}
	// A viewer with neither identity sees nothing.
	return q.Where("1 = 0")
}

func (dao *ChatDAO) ListSessions(ctx context.Context, viewer Viewer, filters ListFilters) ([]models.ChatSession, error) {
	q := dao.viewerScope(ctx, viewer)

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		q = q.Where(
			"LOWER(title) LIKE LOWER(?) OR EXISTS (SELECT 1 FROM messages WHERE messages.session_id = chat_sessions.id AND LOWER(messages.content) LIKE LOWER(?))",
			pattern, pattern,
		)
	}
	if filters.Model != "" {
		q = q.Where("model = ?", filters.Model)
	}
	if filters.DateFrom != nil {
		q = q.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		q = q.Where("created_at <= ?", *filters.DateTo)
	}

	var sessions []models.ChatSession
	if err := q.Order(activeFirst).Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (dao *ChatDAO) LatestSession(ctx context.Context, viewer Viewer) (*models.ChatSession, error) {
	var session models.ChatSession
	err := dao.viewerScope(ctx, viewer).Order("created_at DESC").First(&session).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// DeleteSession removes a session and its messages, but only when the viewer
// owns it. A non-owner delete is a silent no-op.
func (dao *ChatDAO) DeleteSession(ctx context.Context, viewer Viewer, id uuid.UUID) error {
	session, err := dao.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if session == nil || !viewer.Owns(session) {
		return nil
	}
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Message{}, "session_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatSession{}, "id = ?", id).Error
	})
}

func (dao *ChatDAO) BulkDeleteSessions(ctx context.Context, userID int, ids []uuid.UUID) (int64, error) {
	var deleted int64
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned []uuid.UUID
		if err := tx.Model(&models.ChatSession{}).
			Where("id IN ? AND user_id = ?", ids, userID).
			Pluck("id", &owned).Error; err != nil {
			return err
		}
		if len(owned) == 0 {
			return nil
		}
		if err := tx.Delete(&models.Message{}, "session_id IN ?", owned).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.ChatSession{}, "id IN ?", owned)
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// SaveMessage appends a message and bumps the parent session's updated_at to
// the message timestamp in the same transaction.
func (dao *ChatDAO) SaveMessage(ctx context.Context, sessionID uuid.UUID, sender, content string, model *string) (*models.Message, error) {
	msg := models.Message{
		SessionID: sessionID,
		Sender:    sender,
		Content:   content,
		Model:     model,
	}
	err := dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatSession{}).
			Where("id = ?", sessionID).
			Update("updated_at", msg.Timestamp).Error
	})
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (dao *ChatDAO) GetMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := dao.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (dao *ChatDAO) LastMessage(ctx context.Context, sessionID uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := dao.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp DESC, id DESC").
		First(&msg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (dao *ChatDAO) CountMessages(ctx context.Context, sessionID uuid.UUID) (int64, error) {
	var count int64
	err := dao.DB.WithContext(ctx).Model(&models.Message{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

func (dao *ChatDAO) UpdateTitle(ctx context.Context, sessionID uuid.UUID, title string) error {
	return dao.DB.WithContext(ctx).Model(&models.ChatSession{}).
		Where("id = ?", sessionID).
		Update("title", title).Error
}

func (dao *ChatDAO) UpdateModel(ctx context.Context, sessionID uuid.UUID, model string) error {
	return dao.DB.WithContext(ctx).Model(&models.ChatSession{}).
		Where("id = ?", sessionID).
		Update("model", model).Error
}

func (dao *ChatDAO) UpdateSession(ctx context.Context, session *models.ChatSession) error {
	return dao.DB.WithContext(ctx).Save(session).Error
}

// SweepGuestSessions deletes every anonymous session keyed to an expired
// browser session.
func (dao *ChatDAO) SweepGuestSessions(ctx context.Context, sessionKey string) error {
	return dao.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID
		if err := tx.Model(&models.ChatSession{}).
			Where("user_id IS NULL AND session_key = ?", sessionKey).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Delete(&models.Message{}, "session_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Delete(&models.ChatSession{}, "id IN ?", ids).Error
	})
}
