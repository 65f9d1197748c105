package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/services"
)

type ChannelHandler struct {
	channelService services.IChannelService
	logger         *zap.Logger
}

func NewChannelHandler(channelService services.IChannelService, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{channelService: channelService, logger: logger}
}

func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	var req services.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	channel, err := h.channelService.CreateChannel(c.Request.Context(), currentUserID(c), c.Param("guild_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, channel)
}

func (h *ChannelHandler) GetChannel(c *gin.Context) {
	channel, err := h.channelService.GetChannel(c.Request.Context(), currentUserID(c), c.Param("channel_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, channel)
}

func (h *ChannelHandler) ListChannels(c *gin.Context) {
	channels, err := h.channelService.ListChannels(c.Request.Context(), currentUserID(c), c.Param("guild_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, channels)
}

func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	var req services.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	channel, err := h.channelService.UpdateChannel(c.Request.Context(), currentUserID(c), c.Param("channel_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, channel)
}

func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	if err := h.channelService.DeleteChannel(c.Request.Context(), currentUserID(c), c.Param("channel_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
