package statistics

import (
	"context"
	"time"

	"channel-admin-backend/internal/platform/telegram"
)

// Жесткий потолок страницы последних обновлений канала
const recentUpdatesLimit = 100

// ChannelStatistics — сводные метрики канала за один опрос
type ChannelStatistics struct {
	SubscribersCount int     `json:"subscribers_count"`
	PostsCount       int     `json:"posts_count"`
	ViewsCount       int64   `json:"views_count"`
	EngagementRate   float64 `json:"engagement_rate"`
}

// Transport — часть транспорта Bot API, нужная для подсчета статистики
type Transport interface {
	GetChatMemberCount(ctx context.Context, chatID int64) (int, error)
	GetUpdates(ctx context.Context, chatID int64, limit int) ([]telegram.Update, error)
}

// Aggregator превращает сырые данные активности в сводные метрики
type Aggregator struct {
	transport Transport
}

func NewAggregator(transport Transport) *Aggregator {
	return &Aggregator{transport: transport}
}

// ChannelStatistics опрашивает количество подписчиков и страницу
// последних обновлений канала. Ошибка любого из двух вызовов
// пробрасывается вызывающему
func (a *Aggregator) ChannelStatistics(ctx context.Context, chatID int64) (*ChannelStatistics, error) {
	memberCount, err := a.transport.GetChatMemberCount(ctx, chatID)
	if err != nil {
		return nil, err
	}

	updates, err := a.transport.GetUpdates(ctx, chatID, recentUpdatesLimit)
	if err != nil {
		return nil, err
	}

	views, _ := totals(updates)

	return &ChannelStatistics{
		SubscribersCount: memberCount,
		PostsCount:       len(updates),
		ViewsCount:       views,
		EngagementRate:   EngagementRate(updates),
	}, nil
}

// EngagementRate возвращает 100 * Σреакций / Σпросмотров.
// Для пустого набора постов и при нулевой сумме просмотров
// возвращается ровно 0 — деление на ноль исключено явной веткой
func EngagementRate(posts []telegram.Update) float64 {
	if len(posts) == 0 {
		return 0
	}

	views, reactions := totals(posts)
	if views == 0 {
		return 0
	}

	return float64(reactions) / float64(views) * 100
}

// UserEngagementRate возвращает 100 * количество взаимодействий /
// число уникальных календарных дат (по локальному времени) с хотя бы
// одним взаимодействием. Для пустого набора возвращается ровно 0
func UserEngagementRate(interactions []time.Time) float64 {
	if len(interactions) == 0 {
		return 0
	}

	days := make(map[string]struct{}, len(interactions))
	for _, t := range interactions {
		days[t.Local().Format("2006-01-02")] = struct{}{}
	}

	return float64(len(interactions)) / float64(len(days)) * 100
}

func totals(posts []telegram.Update) (views, reactions int64) {
	for _, p := range posts {
		views += p.Views
		reactions += int64(len(p.Reactions))
	}
	return views, reactions
}
