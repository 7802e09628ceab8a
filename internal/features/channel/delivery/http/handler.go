package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"channel-admin-backend/internal/common/middleware"
	"channel-admin-backend/internal/features/channel/service"
)

type ChannelHandler struct {
	service service.ChannelService
	logger  *zap.Logger
}

func NewChannelHandler(service service.ChannelService, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ChannelHandler) RegisterRoutes(router *gin.RouterGroup) {
	channels := router.Group("/channels")
	{
		channels.GET("", h.listChannels)
		channels.GET("/:id", h.getChannel)
		channels.POST("", h.addChannel)
		channels.POST("/:id/sync", h.syncChannel)
	}
}

type addChannelRequest struct {
	TelegramID int64 `json:"telegram_id" binding:"required"`
}

// @Summary List channels
// @Description Returns all tracked channels with their statistics snapshot history, newest first.
// @Tags channels
// @Produce json
// @Success 200 {array} models.ChannelWithStats "Channels"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /channels [get]
func (h *ChannelHandler) listChannels(c *gin.Context) {
	channels, err := h.service.ListChannels(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, channels)
}

// @Summary Get channel
// @Description Returns a single channel by its internal id.
// @Tags channels
// @Produce json
// @Param id path string true "Channel internal id"
// @Success 200 {object} models.Channel "Channel"
// @Failure 404 {object} middleware.ErrorResponse "Channel not found"
// @Router /channels/{id} [get]
func (h *ChannelHandler) getChannel(c *gin.Context) {
	channel, err := h.service.GetChannel(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, channel)
}

// @Summary Add channel
// @Description Performs the first synchronization of a Telegram channel and creates its record.
// @Tags channels
// @Accept json
// @Produce json
// @Param request body addChannelRequest true "Telegram channel id"
// @Success 201 {object} models.SyncResult "Sync result"
// @Failure 400 {object} middleware.ErrorResponse "Invalid request"
// @Failure 502 {object} middleware.ErrorResponse "Telegram API error"
// @Router /channels [post]
func (h *ChannelHandler) addChannel(c *gin.Context) {
	var req addChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.service.SyncChannel(c.Request.Context(), req.TelegramID)
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// @Summary Refresh channel
// @Description Re-synchronizes an already tracked channel and appends a new statistics snapshot.
// @Tags channels
// @Produce json
// @Param id path string true "Channel internal id"
// @Success 200 {object} models.SyncResult "Sync result"
// @Failure 404 {object} middleware.ErrorResponse "Channel not found"
// @Failure 502 {object} middleware.ErrorResponse "Telegram API error"
// @Router /channels/{id}/sync [post]
func (h *ChannelHandler) syncChannel(c *gin.Context) {
	result, err := h.service.ResyncChannel(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, result)
}
