package telegram

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"channel-admin-backend/internal/common/logger"
)

// DefaultCacheTTL — окно свежести кэша информации о каналах
const DefaultCacheTTL = 5 * time.Minute

// BotPermissions — права бота в канале
type BotPermissions struct {
	CanPostMessages   bool `json:"can_post_messages"`
	CanDeleteMessages bool `json:"can_delete_messages"`
	CanPinMessages    bool `json:"can_pin_messages"`
	CanInviteUsers    bool `json:"can_invite_users"`
}

// ChannelInfo — метаданные канала, дополненные статусом бота.
// BotPermissions равен nil, когда бот не администратор канала
type ChannelInfo struct {
	Chat
	BotIsAdmin     bool            `json:"bot_is_admin"`
	BotPermissions *BotPermissions `json:"bot_permissions"`
}

type cacheEntry struct {
	info      *ChannelInfo
	fetchedAt time.Time
}

// Gateway — фасад над Telegram Bot API для работы с каналами.
// Владеет кэшем метаданных: записи живут ttl и вытесняются только
// по времени. Неудачные запросы не кэшируются
type Gateway struct {
	client *Client
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger

	// Мьютекс защищает только map и не удерживается на время
	// сетевых запросов: конкурентные вызовы для холодного канала
	// могут выполнить избыточный запрос к API
	mu    sync.Mutex
	cache map[int64]cacheEntry
}

// NewGateway создает Gateway. При ttl <= 0 используется DefaultCacheTTL,
// при now == nil — time.Now; тесты подставляют детерминированные часы
func NewGateway(client *Client, ttl time.Duration, now func() time.Time) *Gateway {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if now == nil {
		now = time.Now
	}

	return &Gateway{
		client: client,
		ttl:    ttl,
		now:    now,
		log:    logger.With("telegram_gateway"),
		cache:  make(map[int64]cacheEntry),
	}
}

// Client возвращает нижележащий транспорт Bot API
func (g *Gateway) Client() *Client {
	return g.client
}

// IsBotAdministrator проверяет, входит ли бот в список администраторов
// канала. Любая ошибка — транспортная или от API — деградирует в false:
// неизвестный статус трактуется как "не администратор"
func (g *Gateway) IsBotAdministrator(ctx context.Context, chatID int64) bool {
	admins, err := g.client.GetChatAdministrators(ctx, chatID)
	if err != nil {
		g.log.Debug().
			Int64("chat_id", chatID).
			Err(err).
			Msg("Admin list unavailable, assuming bot is not an administrator")
		return false
	}

	for _, admin := range admins {
		if admin.User.ID == g.client.BotID() {
			return true
		}
	}

	return false
}

// GetBotPermissions возвращает права бота в канале или nil, если бот
// не администратор либо список получить не удалось. Отсутствующие
// в ответе флаги считаются false
func (g *Gateway) GetBotPermissions(ctx context.Context, chatID int64) *BotPermissions {
	admins, err := g.client.GetChatAdministrators(ctx, chatID)
	if err != nil {
		g.log.Debug().
			Int64("chat_id", chatID).
			Err(err).
			Msg("Admin list unavailable, bot permissions unknown")
		return nil
	}

	for _, admin := range admins {
		if admin.User.ID == g.client.BotID() {
			return &BotPermissions{
				CanPostMessages:   admin.CanPostMessages,
				CanDeleteMessages: admin.CanDeleteMessages,
				CanPinMessages:    admin.CanPinMessages,
				CanInviteUsers:    admin.CanInviteUsers,
			}
		}
	}

	return nil
}

// GetChannelInfo возвращает метаданные канала вместе со статусом бота.
// Значение берется из кэша, пока запись моложе ttl; иначе выполняется
// живой запрос. Ошибка getChat пробрасывается вызывающему с описанием
// провайдера — в отличие от мягких проверок статуса администратора
func (g *Gateway) GetChannelInfo(ctx context.Context, chatID int64) (*ChannelInfo, error) {
	g.mu.Lock()
	if entry, ok := g.cache[chatID]; ok && g.now().Sub(entry.fetchedAt) < g.ttl {
		g.mu.Unlock()
		return entry.info, nil
	}
	g.mu.Unlock()

	chat, err := g.client.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	isAdmin := g.IsBotAdministrator(ctx, chatID)

	var permissions *BotPermissions
	if isAdmin {
		permissions = g.GetBotPermissions(ctx, chatID)
	}

	info := &ChannelInfo{
		Chat:           *chat,
		BotIsAdmin:     isAdmin,
		BotPermissions: permissions,
	}

	g.mu.Lock()
	g.cache[chatID] = cacheEntry{info: info, fetchedAt: g.now()}
	g.mu.Unlock()

	g.log.Debug().
		Int64("chat_id", chatID).
		Bool("bot_is_admin", isAdmin).
		Msg("Channel info refreshed")

	return info, nil
}
