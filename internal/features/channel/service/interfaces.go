package service

import (
	"context"
	"time"

	"channel-admin-backend/internal/features/channel/models"
	"channel-admin-backend/internal/features/statistics"
	"channel-admin-backend/internal/platform/telegram"
)

type ChannelService interface {
	// SyncChannel получает живые данные канала, обновляет его запись
	// и добавляет снимок статистики. Используется и для добавления
	// нового канала, и для обновления существующего
	SyncChannel(ctx context.Context, telegramID int64) (*models.SyncResult, error)

	// ResyncChannel повторяет синхронизацию для уже известного канала
	// по его внутреннему идентификатору
	ResyncChannel(ctx context.Context, id string) (*models.SyncResult, error)

	ListChannels(ctx context.Context) ([]*models.ChannelWithStats, error)
	GetChannel(ctx context.Context, id string) (*models.Channel, error)
}

// ChannelGateway — часть Gateway, нужная оркестратору синхронизации
type ChannelGateway interface {
	GetChannelInfo(ctx context.Context, chatID int64) (*telegram.ChannelInfo, error)
}

// StatisticsProvider считает сводные метрики канала
type StatisticsProvider interface {
	ChannelStatistics(ctx context.Context, chatID int64) (*statistics.ChannelStatistics, error)
}

// Cache — контракт кэша, реализуется CacheService
type Cache interface {
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, setter func() (interface{}, error)) error
	InvalidateChannelCache(ctx context.Context, channelID string) error
}
