package repository

import (
	"context"
	"errors"

	"channel-admin-backend/internal/features/channel/models"
)

var ErrChannelNotFound = errors.New("channel not found")

// ChannelRepository определяет методы хранения каналов и снимков статистики
type ChannelRepository interface {
	// Upsert вставляет или обновляет канал по telegram_id и возвращает
	// сохраненную запись с внутренним идентификатором
	Upsert(ctx context.Context, channel *models.Channel) (*models.Channel, error)

	GetByID(ctx context.Context, id string) (*models.Channel, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.Channel, error)

	// List возвращает каналы с историей снимков, новые каналы первыми
	List(ctx context.Context) ([]*models.ChannelWithStats, error)

	// InsertSnapshot добавляет снимок статистики; снимки append-only
	InsertSnapshot(ctx context.Context, snapshot *models.StatisticsSnapshot) error

	ListSnapshots(ctx context.Context, channelID string) ([]models.StatisticsSnapshot, error)
}
