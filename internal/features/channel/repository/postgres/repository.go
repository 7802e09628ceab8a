package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"channel-admin-backend/internal/features/channel/models"
	"channel-admin-backend/internal/features/channel/repository"
)

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) repository.ChannelRepository {
	return &postgresRepository{db: db}
}

// Upsert вставляет или обновляет канал по telegram_id.
// Внутренний uuid присваивается только при первой вставке
func (r *postgresRepository) Upsert(ctx context.Context, channel *models.Channel) (*models.Channel, error) {
	query := `
		INSERT INTO channels (id, telegram_id, name, subscribers_count, category, language, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (telegram_id) DO UPDATE SET
			name = EXCLUDED.name,
			subscribers_count = EXCLUDED.subscribers_count,
			status = EXCLUDED.status,
			updated_at = now()
		RETURNING id, telegram_id, name, subscribers_count,
			COALESCE(category, ''), COALESCE(language, ''), status, created_at, updated_at
	`

	var saved models.Channel
	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), channel.TelegramID, channel.Name,
		channel.SubscribersCount, nullIfEmpty(channel.Category),
		nullIfEmpty(channel.Language), channel.Status).Scan(
		&saved.ID, &saved.TelegramID, &saved.Name, &saved.SubscribersCount,
		&saved.Category, &saved.Language, &saved.Status, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert channel: %w", err)
	}

	return &saved, nil
}

// GetByID получает канал по внутреннему идентификатору
func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.Channel, error) {
	query := `
		SELECT id, telegram_id, name, subscribers_count,
			COALESCE(category, ''), COALESCE(language, ''), status, created_at, updated_at
		FROM channels
		WHERE id = $1
	`

	return r.scanChannel(r.db.QueryRowContext(ctx, query, id))
}

// GetByTelegramID получает канал по идентификатору Telegram
func (r *postgresRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.Channel, error) {
	query := `
		SELECT id, telegram_id, name, subscribers_count,
			COALESCE(category, ''), COALESCE(language, ''), status, created_at, updated_at
		FROM channels
		WHERE telegram_id = $1
	`

	return r.scanChannel(r.db.QueryRowContext(ctx, query, telegramID))
}

// List возвращает каналы вместе с историей снимков статистики
func (r *postgresRepository) List(ctx context.Context) ([]*models.ChannelWithStats, error) {
	query := `
		SELECT id, telegram_id, name, subscribers_count,
			COALESCE(category, ''), COALESCE(language, ''), status, created_at, updated_at
		FROM channels
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*models.ChannelWithStats
	for rows.Next() {
		var ch models.ChannelWithStats
		if err := rows.Scan(
			&ch.ID, &ch.TelegramID, &ch.Name, &ch.SubscribersCount,
			&ch.Category, &ch.Language, &ch.Status, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, &ch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate channels: %w", err)
	}

	for _, ch := range channels {
		snapshots, err := r.ListSnapshots(ctx, ch.ID)
		if err != nil {
			return nil, err
		}
		ch.Statistics = snapshots
	}

	return channels, nil
}

// InsertSnapshot добавляет снимок статистики канала
func (r *postgresRepository) InsertSnapshot(ctx context.Context, snapshot *models.StatisticsSnapshot) error {
	query := `
		INSERT INTO channel_statistics (id, channel_id, posts_count, views_count, engagement_rate, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		snapshot.ID, snapshot.ChannelID, snapshot.PostsCount,
		snapshot.ViewsCount, snapshot.EngagementRate, snapshot.RecordedAt)
	if err != nil {
		return fmt.Errorf("failed to insert statistics snapshot: %w", err)
	}

	return nil
}

// ListSnapshots возвращает снимки статистики канала, свежие первыми
func (r *postgresRepository) ListSnapshots(ctx context.Context, channelID string) ([]models.StatisticsSnapshot, error) {
	query := `
		SELECT id, channel_id, posts_count, views_count, engagement_rate, recorded_at
		FROM channel_statistics
		WHERE channel_id = $1
		ORDER BY recorded_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.StatisticsSnapshot
	for rows.Next() {
		var s models.StatisticsSnapshot
		if err := rows.Scan(&s.ID, &s.ChannelID, &s.PostsCount, &s.ViewsCount, &s.EngagementRate, &s.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

func (r *postgresRepository) scanChannel(row *sql.Row) (*models.Channel, error) {
	var ch models.Channel
	err := row.Scan(
		&ch.ID, &ch.TelegramID, &ch.Name, &ch.SubscribersCount,
		&ch.Category, &ch.Language, &ch.Status, &ch.CreatedAt, &ch.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, repository.ErrChannelNotFound
		}
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	return &ch, nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
