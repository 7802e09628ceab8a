package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"channel-admin-backend/internal/common/errors"
	"channel-admin-backend/internal/common/logger"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// User представляет аккаунт Telegram
type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	Username  string `json:"username"`
}

// Chat представляет чат или канал
type Chat struct {
	ID          int64  `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Username    string `json:"username"`
	Description string `json:"description,omitempty"`
}

// ChatMember представляет участника чата из списка администраторов.
// Флаги прав опциональны в ответе API: отсутствующий флаг
// десериализуется в false
type ChatMember struct {
	User              User   `json:"user"`
	Status            string `json:"status"`
	CanPostMessages   bool   `json:"can_post_messages"`
	CanDeleteMessages bool   `json:"can_delete_messages"`
	CanPinMessages    bool   `json:"can_pin_messages"`
	CanInviteUsers    bool   `json:"can_invite_users"`
}

// Reaction представляет реакцию на пост
type Reaction struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji,omitempty"`
}

// Update представляет запись из getUpdates; для подсчета статистики
// важны только просмотры и реакции
type Update struct {
	UpdateID  int64      `json:"update_id"`
	Views     int64      `json:"views,omitempty"`
	Reactions []Reaction `json:"reactions,omitempty"`
}

// Message представляет отправленное сообщение
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Client — типизированный клиент Telegram Bot API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	botID      int64
	log        zerolog.Logger
}

// NewClient создает клиент Bot API. Токен имеет формат "<botId>:<secret>";
// идентификатор бота извлекается из префикса и используется для проверки
// собственных прав в каналах
func NewClient(token, baseURL string) (*Client, error) {
	idPart, _, ok := strings.Cut(token, ":")
	if !ok {
		return nil, fmt.Errorf("invalid bot token format: expected \"<botId>:<secret>\"")
	}

	botID, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid bot token: non-numeric bot id: %w", err)
	}

	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		botID:   botID,
		log:     logger.With("telegram"),
	}, nil
}

// BotID возвращает идентификатор бота, извлеченный из токена
func (c *Client) BotID() int64 {
	return c.botID
}

// GetChatAdministrators возвращает список администраторов чата
func (c *Client) GetChatAdministrators(ctx context.Context, chatID int64) ([]ChatMember, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
	}

	var result struct {
		Ok          bool         `json:"ok"`
		Description string       `json:"description,omitempty"`
		Result      []ChatMember `json:"result"`
	}

	if err := c.makeRequest(ctx, http.MethodGet, "getChatAdministrators", params, &result); err != nil {
		return nil, err
	}

	if !result.Ok {
		return nil, errors.NewTelegramAPIError("getChatAdministrators", result.Description)
	}

	return result.Result, nil
}

// GetChat возвращает метаданные чата
func (c *Client) GetChat(ctx context.Context, chatID int64) (*Chat, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
	}

	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		Result      Chat   `json:"result"`
	}

	if err := c.makeRequest(ctx, http.MethodGet, "getChat", params, &result); err != nil {
		return nil, err
	}

	if !result.Ok {
		c.log.Debug().
			Int64("chat_id", chatID).
			Str("description", result.Description).
			Msg("getChat rejected by API")
		return nil, errors.NewTelegramAPIError("getChat", result.Description)
	}

	return &result.Result, nil
}

// GetChatMemberCount возвращает количество участников чата
func (c *Client) GetChatMemberCount(ctx context.Context, chatID int64) (int, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
	}

	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		Result      int    `json:"result"`
	}

	if err := c.makeRequest(ctx, http.MethodGet, "getChatMemberCount", params, &result); err != nil {
		return 0, err
	}

	if !result.Ok {
		return 0, errors.NewTelegramAPIError("getChatMemberCount", result.Description)
	}

	return result.Result, nil
}

// GetUpdates возвращает ограниченную страницу последних обновлений чата
func (c *Client) GetUpdates(ctx context.Context, chatID int64, limit int) ([]Update, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"limit":   {strconv.Itoa(limit)},
	}

	var result struct {
		Ok          bool     `json:"ok"`
		Description string   `json:"description,omitempty"`
		Result      []Update `json:"result"`
	}

	if err := c.makeRequest(ctx, http.MethodGet, "getUpdates", params, &result); err != nil {
		return nil, err
	}

	if !result.Ok {
		return nil, errors.NewTelegramAPIError("getUpdates", result.Description)
	}

	return result.Result, nil
}

// SendMessage отправляет текстовое сообщение в чат
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	}

	var result struct {
		Ok          bool    `json:"ok"`
		Description string  `json:"description,omitempty"`
		Result      Message `json:"result"`
	}

	if err := c.makeRequest(ctx, http.MethodPost, "sendMessage", params, &result); err != nil {
		return nil, err
	}

	if !result.Ok {
		return nil, errors.NewTelegramAPIError("sendMessage", result.Description)
	}

	c.log.Debug().Int64("chat_id", chatID).Msg("Message sent")
	return &result.Result, nil
}

// GetMe возвращает информацию о самом боте
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var result struct {
		Ok          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
		Result      User   `json:"result"`
	}

	if err := c.makeRequest(ctx, http.MethodGet, "getMe", nil, &result); err != nil {
		return nil, err
	}

	if !result.Ok {
		return nil, errors.NewTelegramAPIError("getMe", result.Description)
	}

	return &result.Result, nil
}

// makeRequest выполняет запрос к Bot API и декодирует ответ.
// Ошибки уровня транспорта оборачиваются в TRANSPORT_ERROR;
// проверка флага ok остается на вызывающей стороне
func (c *Client) makeRequest(ctx context.Context, method, apiMethod string, data url.Values, result interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, apiMethod)

	var req *http.Request
	var err error

	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(data.Encode()))
		if err != nil {
			return errors.NewTransportError(apiMethod, err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		if len(data) > 0 {
			endpoint = fmt.Sprintf("%s?%s", endpoint, data.Encode())
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return errors.NewTransportError(apiMethod, err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError(apiMethod, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.NewTransportError(apiMethod, err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return errors.NewTransportError(apiMethod, fmt.Errorf("failed to parse response: %w", err))
	}

	return nil
}
