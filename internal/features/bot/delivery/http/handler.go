package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channel-admin-backend/internal/common/middleware"
	"channel-admin-backend/internal/common/validation"
	"channel-admin-backend/internal/platform/telegram"
)

// BotHandler — панель проверки подключения бота
type BotHandler struct {
	client *telegram.Client
	logger *zap.Logger
}

func NewBotHandler(client *telegram.Client, logger *zap.Logger) *BotHandler {
	return &BotHandler{
		client: client,
		logger: logger,
	}
}

func (h *BotHandler) RegisterRoutes(router *gin.RouterGroup) {
	bot := router.Group("/bot")
	{
		bot.GET("/status", h.getStatus)
		bot.POST("/test-message", h.sendTestMessage)
	}
}

type testMessageRequest struct {
	ChatID int64  `json:"chat_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

// @Summary Bot status
// @Description Verifies bot connectivity by querying its own identity.
// @Tags bot
// @Produce json
// @Success 200 {object} telegram.User "Bot identity"
// @Failure 502 {object} middleware.ErrorResponse "Telegram API error"
// @Router /bot/status [get]
func (h *BotHandler) getStatus(c *gin.Context) {
	me, err := h.client.GetMe(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, me)
}

// @Summary Send test message
// @Description Sends a test message to a chat to verify bot permissions.
// @Tags bot
// @Accept json
// @Produce json
// @Param request body testMessageRequest true "Target chat and text"
// @Success 200 {object} telegram.Message "Sent message"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 502 {object} middleware.ErrorResponse "Telegram API error"
// @Router /bot/test-message [post]
func (h *BotHandler) sendTestMessage(c *gin.Context) {
	var req testMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := validation.ValidateMessageText(req.Text); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.client.SendMessage(c.Request.Context(), req.ChatID, req.Text)
	if err != nil {
		h.logger.Warn("Test message failed",
			zap.Int64("chat_id", req.ChatID),
			zap.Error(err),
		)
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, msg)
}
