package controllers

import (
	"context"

	"gollama/gollama/sources/psql/dao"
	"gollama/gollama/sources/psql/models"
	"gollama/gollama/utils/logging"
	"gollama/gollama/utils/textutils"
	"gollama/gollama/utils/types"

	"github.com/google/uuid"
)

const (
	listPreviewLimit   = 50
	detailPreviewLimit = 100
)

// SessionsController serves the authenticated history surface: the session
// directory with search/filtering, aggregate stats, bulk delete and export.
type SessionsController struct {
	chatDAO *dao.ChatDAO
}

func NewSessionsController(chatDAO *dao.ChatDAO) *SessionsController {
	return &SessionsController{chatDAO: chatDAO}
}

func (c *SessionsController) preview(ctx context.Context, sessionID uuid.UUID, limit int) (*types.MessagePreview, int64, error) {
	count, err := c.chatDAO.CountMessages(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	last, err := c.chatDAO.LastMessage(ctx, sessionID)
	if err != nil {
		return nil, 0, err
	}
	if last == nil {
		return nil, count, nil
	}
	return &types.MessagePreview{
		Content:   textutils.TruncatePreview(last.Content, limit),
		Timestamp: last.Timestamp,
		Sender:    last.Sender,
	}, count, nil
}

func (c *SessionsController) List(ctx context.Context, userID int, filters dao.ListFilters) ([]types.SessionListItem, error) {
	defer logging.LogDuration(ctx, "sessions_list")()

	sessions, err := c.chatDAO.ListSessions(ctx, dao.Viewer{UserID: &userID}, filters)
	if err != nil {
		return nil, err
	}

	items := make([]types.SessionListItem, 0, len(sessions))
	for _, s := range sessions {
		preview, count, err := c.preview(ctx, s.ID, listPreviewLimit)
		if err != nil {
			return nil, err
		}
		items = append(items, types.SessionListItem{
			ID:           s.ID,
			Title:        s.Title,
			CreatedAt:    s.CreatedAt,
			Model:        s.Model,
			IsArchived:   s.IsArchived,
			IsFavorite:   s.IsFavorite,
			Tags:         s.Tags,
			MessageCount: count,
			LastMessage:  preview,
		})
	}
	return items, nil
}

// ownedSession fetches a session scoped to the user; anything else is
// reported as not found.
func (c *SessionsController) ownedSession(ctx context.Context, userID int, id uuid.UUID) (*models.ChatSession, error) {
	session, err := c.chatDAO.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID == nil || *session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (c *SessionsController) detail(ctx context.Context, session *models.ChatSession) (*types.SessionDetail, error) {
	messages, err := c.chatDAO.GetMessages(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	preview, count, err := c.preview(ctx, session.ID, detailPreviewLimit)
	if err != nil {
		return nil, err
	}

	items := make([]types.MessageItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, types.MessageItem{
			ID:        m.ID,
			Sender:    m.Sender,
			Content:   m.Content,
			Model:     m.Model,
			Timestamp: m.Timestamp,
		})
	}
	return &types.SessionDetail{
		ID:           session.ID,
		Title:        session.Title,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
		Model:        session.Model,
		IsArchived:   session.IsArchived,
		IsFavorite:   session.IsFavorite,
		Tags:         session.Tags,
		Messages:     items,
		MessageCount: count,
		LastMessage:  preview,
	}, nil
}

func (c *SessionsController) Detail(ctx context.Context, userID int, id uuid.UUID) (*types.SessionDetail, error) {
	session, err := c.ownedSession(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return c.detail(ctx, session)
}

func (c *SessionsController) Update(ctx context.Context, userID int, id uuid.UUID, req types.UpdateSessionRequest) (*types.SessionDetail, error) {
	session, err := c.ownedSession(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		session.Title = textutils.Escape(*req.Title)
	}
	if req.IsArchived != nil {
		session.IsArchived = *req.IsArchived
	}
	if req.IsFavorite != nil {
		session.IsFavorite = *req.IsFavorite
	}
	if req.Tags != nil {
		// Re-add one by one so duplicates collapse while order is kept.
		session.Tags = nil
		for _, tag := range *req.Tags {
			session.AddTag(tag)
		}
	}

	if err := c.chatDAO.UpdateSession(ctx, session); err != nil {
		return nil, err
	}
	return c.detail(ctx, session)
}

func (c *SessionsController) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	if _, err := c.ownedSession(ctx, userID, id); err != nil {
		return err
	}
	return c.chatDAO.DeleteSession(ctx, dao.Viewer{UserID: &userID}, id)
}

func (c *SessionsController) Stats(ctx context.Context, userID int) (*dao.HistoryStats, error) {
	defer logging.LogDuration(ctx, "sessions_stats")()
	return c.chatDAO.HistoryStats(ctx, userID)
}

func (c *SessionsController) BulkDelete(ctx context.Context, userID int, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoChatIDs
	}
	return c.chatDAO.BulkDeleteSessions(ctx, userID, ids)
}

// Export returns selected sessions (all of the user's when ids is empty) with
// their full message history. Only the json passthrough format is
// implemented; other declared formats report an error.
func (c *SessionsController) Export(ctx context.Context, userID int, ids []uuid.UUID, format string) (*types.ExportResponse, error) {
	if format != "json" {
		return nil, ErrBadFormat
	}

	sessions, err := c.chatDAO.ListSessions(ctx, dao.Viewer{UserID: &userID}, dao.ListFilters{})
	if err != nil {
		return nil, err
	}

	selected := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		selected[id] = true
	}

	data := make([]types.SessionDetail, 0, len(sessions))
	for i := range sessions {
		if len(ids) > 0 && !selected[sessions[i].ID] {
			continue
		}
		detail, err := c.detail(ctx, &sessions[i])
		if err != nil {
			return nil, err
		}
		data = append(data, *detail)
	}
	return &types.ExportResponse{Format: "json", Data: data}, nil
}
