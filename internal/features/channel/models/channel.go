package models

import (
	"time"

	"channel-admin-backend/internal/features/statistics"
)

// Константы статусов канала
const (
	ChannelStatusActive   = "active"
	ChannelStatusInactive = "inactive"
)

// Channel представляет отслеживаемый канал.
// ID — внутренний первичный ключ хранилища, TelegramID — идентификатор
// канала у провайдера. Запись создается при первой синхронизации и
// обновляется при каждой последующей; подсистема никогда не удаляет ее
type Channel struct {
	ID               string    `json:"id" example:"6a2f66be-6f86-4a9f-9c1a-2a65d9f6f2a0"`
	TelegramID       int64     `json:"telegram_id" example:"-1001234567890"`
	Name             string    `json:"name" example:"My Channel"`
	SubscribersCount int       `json:"subscribers_count" example:"1500"`
	Category         string    `json:"category,omitempty" example:"news"`
	Language         string    `json:"language,omitempty" example:"en"`
	Status           string    `json:"status" example:"active" enums:"active,inactive"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// StatisticsSnapshot — неизменяемый снимок статистики канала.
// Ровно один снимок добавляется за каждую успешную синхронизацию;
// записи никогда не обновляются и не удаляются
type StatisticsSnapshot struct {
	ID             string    `json:"id"`
	ChannelID      string    `json:"channel_id"`
	PostsCount     int       `json:"posts_count"`
	ViewsCount     int64     `json:"views_count"`
	EngagementRate float64   `json:"engagement_rate"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// ChannelWithStats — канал вместе с историей снимков статистики
type ChannelWithStats struct {
	Channel
	Statistics []StatisticsSnapshot `json:"channel_statistics"`
}

// SyncResult — результат синхронизации канала
type SyncResult struct {
	Channel    *Channel                      `json:"channel"`
	Statistics *statistics.ChannelStatistics `json:"statistics"`
}
