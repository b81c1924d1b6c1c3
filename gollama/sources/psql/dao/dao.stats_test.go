package dao

import (
	"context"
	"testing"
	"time"

	"gollama/gollama/sources/psql/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func backdate(t *testing.T, db *gorm.DB, sessionID uuid.UUID, when time.Time) {
	t.Helper()
	require.NoError(t, db.Model(&models.ChatSession{}).Where("id = ?", sessionID).
		UpdateColumn("created_at", when).Error)
}

func TestHistoryStats(t *testing.T) {
	db := newTestDB(t)
	chatDAO := NewChatDAO(db)
	ctx := context.Background()

	user := createUser(t, db, "alice")
	viewer := Viewer{UserID: &user.ID}

	// 3 sessions: 2 recent, 1 from last month.
	old, err := chatDAO.CreateSession(ctx, viewer, "phi:latest")
	require.NoError(t, err)
	backdate(t, db, old.ID, time.Now().AddDate(0, 0, -20))

	recent1, err := chatDAO.CreateSession(ctx, viewer, "phi:latest")
	require.NoError(t, err)
	recent2, err := chatDAO.CreateSession(ctx, viewer, "qwen3:0.6b")
	require.NoError(t, err)

	// 10 messages spread over the three sessions.
	for i := 0; i < 4; i++ {
		_, err := chatDAO.SaveMessage(ctx, old.ID, models.SenderUser, "m", nil)
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := chatDAO.SaveMessage(ctx, recent1.ID, models.SenderUser, "m", nil)
		require.NoError(t, err)
		_, err = chatDAO.SaveMessage(ctx, recent2.ID, models.SenderBot, "m", nil)
		require.NoError(t, err)
	}

	// Another user's activity must not leak in.
	other := createUser(t, db, "bob")
	otherSession, err := chatDAO.CreateSession(ctx, Viewer{UserID: &other.ID}, "phi:latest")
	require.NoError(t, err)
	_, err = chatDAO.SaveMessage(ctx, otherSession.ID, models.SenderUser, "m", nil)
	require.NoError(t, err)

	stats, err := chatDAO.HistoryStats(ctx, user.ID)
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.TotalChats)
	assert.EqualValues(t, 10, stats.TotalMessages)
	assert.EqualValues(t, 2, stats.RecentChats)
	assert.EqualValues(t, 10, stats.RecentMessages)

	require.Len(t, stats.ModelUsage, 2)
	assert.Equal(t, ModelUsage{Model: "phi:latest", Count: 2}, stats.ModelUsage[0])
	assert.Equal(t, ModelUsage{Model: "qwen3:0.6b", Count: 1}, stats.ModelUsage[1])

	// All messages were written today.
	require.Len(t, stats.DailyActivity, 1)
	assert.EqualValues(t, 10, stats.DailyActivity[0].MessageCount)
}

func TestHistoryStatsEmptyUser(t *testing.T) {
	db := newTestDB(t)
	chatDAO := NewChatDAO(db)

	user := createUser(t, db, "alice")
	stats, err := chatDAO.HistoryStats(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Zero(t, stats.TotalChats)
	assert.Zero(t, stats.TotalMessages)
	assert.Empty(t, stats.ModelUsage)
	assert.Empty(t, stats.DailyActivity)
}
