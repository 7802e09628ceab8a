package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"channel-admin-backend/internal/common/errors"
	"channel-admin-backend/internal/common/validation"
	"channel-admin-backend/internal/features/channel/models"
	"channel-admin-backend/internal/features/channel/repository"
)

const channelListCacheTTL = time.Minute

type channelService struct {
	repo    repository.ChannelRepository
	gateway ChannelGateway
	stats   StatisticsProvider
	cache   Cache
	debug   bool
	logger  *zap.Logger
}

func NewChannelService(repo repository.ChannelRepository, gateway ChannelGateway, stats StatisticsProvider, cache Cache, debug bool, logger *zap.Logger) ChannelService {
	return &channelService{
		repo:    repo,
		gateway: gateway,
		stats:   stats,
		cache:   cache,
		debug:   debug,
		logger:  logger,
	}
}

// SyncChannel синхронизирует канал с Telegram: получает метаданные и
// статистику, обновляет запись канала и добавляет снимок статистики.
// Два последних шага — независимые записи без общей транзакции: при
// ошибке вставки снимка запись канала остается обновленной, отката нет
func (s *channelService) SyncChannel(ctx context.Context, telegramID int64) (*models.SyncResult, error) {
	if err := validation.ValidateChatID(telegramID); err != nil {
		s.logger.Warn("Invalid telegram ID provided for sync",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err),
		)
		return nil, errors.NewValidationError("telegram_id", "Invalid Telegram chat ID").
			WithDetail("provided_value", telegramID)
	}

	if s.debug {
		s.logger.Debug("Syncing channel", zap.Int64("telegram_id", telegramID))
	}

	info, err := s.gateway.GetChannelInfo(ctx, telegramID)
	if err != nil {
		s.logger.Error("Failed to fetch channel info",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err),
		)
		return nil, err
	}

	stats, err := s.stats.ChannelStatistics(ctx, telegramID)
	if err != nil {
		s.logger.Error("Failed to compute channel statistics",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err),
		)
		return nil, err
	}

	channel := &models.Channel{
		TelegramID:       telegramID,
		Name:             info.Title,
		SubscribersCount: stats.SubscribersCount,
		Status:           models.ChannelStatusActive,
	}

	saved, err := s.repo.Upsert(ctx, channel)
	if err != nil {
		s.logger.Error("Failed to upsert channel",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err),
		)
		return nil, errors.NewDatabaseError("upsert channel", err).
			WithDetail("telegram_id", telegramID)
	}

	snapshot := &models.StatisticsSnapshot{
		ID:             uuid.New().String(),
		ChannelID:      saved.ID,
		PostsCount:     stats.PostsCount,
		ViewsCount:     stats.ViewsCount,
		EngagementRate: stats.EngagementRate,
		RecordedAt:     time.Now(),
	}

	if err := s.repo.InsertSnapshot(ctx, snapshot); err != nil {
		// Канал уже обновлен; снимок просто отсутствует
		s.logger.Error("Failed to insert statistics snapshot",
			zap.Int64("telegram_id", telegramID),
			zap.String("channel_id", saved.ID),
			zap.Error(err),
		)
		return nil, errors.NewDatabaseError("insert statistics snapshot", err).
			WithDetail("channel_id", saved.ID)
	}

	// Инвалидация кэша — побочный эффект, не блокирует результат
	if err := s.cache.InvalidateChannelCache(ctx, saved.ID); err != nil {
		s.logger.Warn("Failed to invalidate channel cache",
			zap.String("channel_id", saved.ID),
			zap.Error(err),
		)
	}

	s.logger.Info("Channel synced",
		zap.Int64("telegram_id", telegramID),
		zap.String("channel_id", saved.ID),
		zap.Int("subscribers_count", stats.SubscribersCount),
		zap.Int("posts_count", stats.PostsCount),
	)

	return &models.SyncResult{Channel: saved, Statistics: stats}, nil
}

// ResyncChannel повторяет синхронизацию для известного канала
func (s *channelService) ResyncChannel(ctx context.Context, id string) (*models.SyncResult, error) {
	channel, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.SyncChannel(ctx, channel.TelegramID)
}

// ListChannels возвращает каналы с историей снимков статистики
func (s *channelService) ListChannels(ctx context.Context) ([]*models.ChannelWithStats, error) {
	var channels []*models.ChannelWithStats

	err := s.cache.GetOrSet(ctx, "channels:list", &channels, channelListCacheTTL, func() (interface{}, error) {
		return s.repo.List(ctx)
	})
	if err != nil {
		s.logger.Error("Failed to list channels", zap.Error(err))
		return nil, errors.NewDatabaseError("list channels", err)
	}

	if s.debug {
		s.logger.Debug("Channels listed", zap.Int("count", len(channels)))
	}

	return channels, nil
}

// GetChannel получает канал по внутреннему идентификатору
func (s *channelService) GetChannel(ctx context.Context, id string) (*models.Channel, error) {
	return s.getByID(ctx, id)
}

func (s *channelService) getByID(ctx context.Context, id string) (*models.Channel, error) {
	channel, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrChannelNotFound {
			s.logger.Info("Channel not found", zap.String("channel_id", id))
			return nil, errors.NewChannelNotFoundError(id)
		}

		s.logger.Error("Failed to get channel",
			zap.String("channel_id", id),
			zap.Error(err),
		)
		return nil, errors.NewDatabaseError("get channel by id", err).
			WithDetail("channel_id", id)
	}

	return channel, nil
}
