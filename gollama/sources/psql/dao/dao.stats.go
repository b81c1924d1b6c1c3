package dao

import (
	"context"
	"time"

	"gollama/gollama/sources/psql/models"
)

type ModelUsage struct {
	Model string `json:"model"`
	Count int64  `json:"count"`
}

type DailyActivity struct {
	Day          string `json:"day"`
	MessageCount int64  `json:"message_count"`
}

type HistoryStats struct {
	TotalChats     int64           `json:"total_chats"`
	TotalMessages  int64           `json:"total_messages"`
	RecentChats    int64           `json:"recent_chats"`
	RecentMessages int64           `json:"recent_messages"`
	ModelUsage     []ModelUsage    `json:"model_usage"`
	DailyActivity  []DailyActivity `json:"daily_activity"`
}

// HistoryStats computes point-in-time usage counters for one user. Nothing is
// cached; every call hits the store.
func (dao *ChatDAO) HistoryStats(ctx context.Context, userID int) (*HistoryStats, error) {
	db := dao.DB.WithContext(ctx)
	stats := HistoryStats{
		ModelUsage:    []ModelUsage{},
		DailyActivity: []DailyActivity{},
	}

	if err := db.Model(&models.ChatSession{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalChats).Error; err != nil {
		return nil, err
	}

	userMessages := db.Model(&models.Message{}).
		Joins("JOIN chat_sessions ON chat_sessions.id = messages.session_id").
		Where("chat_sessions.user_id = ?", userID)
	if err := userMessages.Count(&stats.TotalMessages).Error; err != nil {
		return nil, err
	}

	weekAgo := time.Now().AddDate(0, 0, -7)
	if err := db.Model(&models.ChatSession{}).
		Where("user_id = ? AND created_at >= ?", userID, weekAgo).
		Count(&stats.RecentChats).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Message{}).
		Joins("JOIN chat_sessions ON chat_sessions.id = messages.session_id").
		Where("chat_sessions.user_id = ? AND messages.timestamp >= ?", userID, weekAgo).
		Count(&stats.RecentMessages).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&models.ChatSession{}).
		Select("model, COUNT(id) AS count").
		Where("user_id = ?", userID).
		Group("model").
		Order("count DESC").
		Scan(&stats.ModelUsage).Error; err != nil {
		return nil, err
	}

	monthAgo := time.Now().AddDate(0, 0, -30)
	if err := db.Model(&models.Message{}).
		Select("DATE(messages.timestamp) AS day, COUNT(messages.id) AS message_count").
		Joins("JOIN chat_sessions ON chat_sessions.id = messages.session_id").
		Where("chat_sessions.user_id = ? AND messages.timestamp >= ?", userID, monthAgo).
		Group("DATE(messages.timestamp)").
		Order("day DESC").
		Limit(10).
		Scan(&stats.DailyActivity).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}
