package controllers

import (
	"context"
	"testing"

	"gollama/gollama/sources/psql/dao"
	"gollama/gollama/sources/psql/models"
	"gollama/gollama/utils/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSession(t *testing.T, chatDAO *dao.ChatDAO, userID int, model string, messages ...string) *models.ChatSession {
	t.Helper()
	ctx := context.Background()
	session, err := chatDAO.CreateSession(ctx, dao.Viewer{UserID: &userID}, model)
	require.NoError(t, err)
	for i, content := range messages {
		sender := models.SenderUser
		if i%2 == 1 {
			sender = models.SenderBot
		}
		_, err := chatDAO.SaveMessage(ctx, session.ID, sender, content, nil)
		require.NoError(t, err)
	}
	return session
}

func TestSessionsListPreviews(t *testing.T) {
	db := newTestDB(t)
	chatDAO := dao.NewChatDAO(db)
	ctrl := NewSessionsController(chatDAO)
	ctx := context.Background()

	user := newTestUser(t, db, "alice")
	seedSession(t, chatDAO, user.ID, "phi:latest", "hello", "hi back")
	seedSession(t, chatDAO, user.ID, "qwen3:0.6b")

	items, err := ctrl.List(ctx, user.ID, dao.ListFilters{})
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Most recently active first.
	assert.EqualValues(t, 0, items[0].MessageCount)
	assert.Nil(t, items[0].LastMessage)

	assert.EqualValues(t, 2, items[1].MessageCount)
	require.NotNil(t, items[1].LastMessage)
	assert.Equal(t, "hi back", items[1].LastMessage.Content)
	assert.Equal(t, models.SenderBot, items[1].LastMessage.Sender)
}

func TestSessionsDetailScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	chatDAO := dao.NewChatDAO(db)
	ctrl := NewSessionsController(chatDAO)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	session := seedSession(t, chatDAO, alice.ID, "phi:latest", "hello", "hi back")

	detail, err := ctrl.Detail(ctx, alice.ID, session.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.Equal(t, "hello", detail.Messages[0].Content)
	assert.EqualValues(t, 2, detail.MessageCount)

	_, err = ctrl.Detail(ctx, bob.ID, session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = ctrl.Detail(ctx, alice.ID, uuid.New())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionsUpdate(t *testing.T) {
	db := newTestDB(t)
	chatDAO := dao.NewChatDAO(db)
	ctrl := NewSessionsController(chatDAO)
	ctx := context.Background()

	user := newTestUser(t, db, "alice")
	session := seedSession(t, chatDAO, user.ID, "phi:latest")

	title := "Renamed <b>chat</b>"
	archived := true
	tags := []string{"work", "go", "work"}
	detail, err := ctrl.Update(ctx, user.ID, session.ID, types.UpdateSessionRequest{
		Title:      &title,
		IsArchived: &archived,
		Tags:       &tags,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed &lt;b&gt;chat&lt;/b&gt;", detail.Title)
	assert.True(t, detail.IsArchived)
	assert.False(t, detail.IsFavorite)
	assert.Equal(t, []string{"work", "go"}, detail.Tags)

	reloaded, err := chatDAO.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed &lt;b&gt;chat&lt;/b&gt;", reloaded.Title)
}

func TestSessionsDelete(t *testing.T) {
	db := newTestDB(t)
	chatDAO := dao.NewChatDAO(db)
	ctrl := NewSessionsController(chatDAO)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	session := seedSession(t, chatDAO, alice.ID, "phi:latest", "hello")

	assert.ErrorIs(t, ctrl.Delete(ctx, bob.ID, session.ID), ErrSessionNotFound)

	require.NoError(t, ctrl.Delete(ctx, alice.ID, session.ID))
	gone, err := chatDAO.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Messages go with the session.
	var count int64
	require.NoError(t, db.Model(&models.Message{}).
		Where("session_id = ?", session.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSessionsStats(t *testing.T) {
	db := newTestDB(t)
	chatDAO := dao.NewChatDAO(db)
	ctrl := NewSessionsController(chatDAO)
	ctx := context.Background()

	user := newTestUser(t, db, "alice")
	seedSession(t, chatDAO, user.ID, "phi:latest", "a", "b", "c", "d")
	seedSession(t, chatDAO, user.ID, "phi:latest", "a", "b", "c")
	seedSession(t, chatDAO, user.ID, "qwen3:0.6b", "a", "b", "c")

	stats, err := ctrl.Stats(ctx, user.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalChats)
	assert.EqualValues(t, 10, stats.TotalMessages)
	require.Len(t, stats.ModelUsage, 2)
	assert.Equal(t, "phi:latest", stats.ModelUsage[0].Model)
	assert.EqualValues(t, 2, stats.ModelUsage[0].Count)
}

func TestSessionsBulkDelete(t *testing.T) {
	db := newTestDB(t)
	chatDAO := dao.NewChatDAO(db)
	ctrl := NewSessionsController(chatDAO)
	ctx := context.Background()

	alice := newTestUser(t, db, "alice")
	bob := newTestUser(t, db, "bob")
	mine := seedSession(t, chatDAO, alice.ID, "phi:latest", "hello")
	theirs := seedSession(t, chatDAO, bob.ID, "phi:latest", "hello")

	_, err := ctrl.BulkDelete(ctx, alice.ID, nil)
	assert.ErrorIs(t, err, ErrNoChatIDs)

	deleted, err := ctrl.BulkDelete(ctx, alice.ID, []uuid.UUID{mine.ID, theirs.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	survivor, err := chatDAO.GetSession(ctx, theirs.ID)
	require.NoError(t, err)
	assert.NotNil(t, survivor)
}

func TestSessionsExport(t *testing.T) {
	db := newTestDB(t)
	chatDAO := dao.NewChatDAO(db)
	ctrl := NewSessionsController(chatDAO)
	ctx := context.Background()

	user := newTestUser(t, db, "alice")
	first := seedSession(t, chatDAO, user.ID, "phi:latest", "hello", "hi back")
	seedSession(t, chatDAO, user.ID, "qwen3:0.6b", "other")

	_, err := ctrl.Export(ctx, user.ID, nil, "csv")
	assert.ErrorIs(t, err, ErrBadFormat)

	all, err := ctrl.Export(ctx, user.ID, nil, "json")
	require.NoError(t, err)
	assert.Equal(t, "json", all.Format)
	assert.Len(t, all.Data, 2)

	one, err := ctrl.Export(ctx, user.ID, []uuid.UUID{first.ID}, "json")
	require.NoError(t, err)
	require.Len(t, one.Data, 1)
	assert.Equal(t, first.ID, one.Data[0].ID)
	require.Len(t, one.Data[0].Messages, 2)
	assert.Equal(t, "hi back", one.Data[0].Messages[1].Content)
}
