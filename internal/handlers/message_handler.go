package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/services"
)

type MessageHandler struct {
	messageService services.IMessageService
	logger         *zap.Logger
}

func NewMessageHandler(messageService services.IMessageService, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{messageService: messageService, logger: logger}
}

func (h *MessageHandler) SendChannelMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	message, err := h.messageService.SendChannelMessage(c.Request.Context(), currentUserID(c), c.Param("channel_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *MessageHandler) SendDirectMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	message, err := h.messageService.SendDirectMessage(c.Request.Context(), currentUserID(c), c.Param("conversation_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *MessageHandler) EditMessage(c *gin.Context) {
	var req services.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	message, err := h.messageService.EditMessage(c.Request.Context(), currentUserID(c), c.Param("message_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, message)
}

func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	if err := h.messageService.DeleteMessage(c.Request.Context(), currentUserID(c), c.Param("message_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *MessageHandler) ListChannelMessages(c *gin.Context) {
	req, err := parseListQuery(c)
	if err != nil {
		bindError(c, err)
		return
	}

	messages, err := h.messageService.ListChannelMessages(c.Request.Context(), currentUserID(c), c.Param("channel_id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) ListConversationMessages(c *gin.Context) {
	req, err := parseListQuery(c)
	if err != nil {
		bindError(c, err)
		return
	}

	messages, err := h.messageService.ListConversationMessages(c.Request.Context(), currentUserID(c), c.Param("conversation_id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, messages)
}

// parseListQuery reads ?limit= and ?before= (RFC3339) pagination parameters.
func parseListQuery(c *gin.Context) (*services.ListMessagesRequest, error) {
	req := &services.ListMessagesRequest{}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return nil, err
		}
		req.Limit = limit
	}
	if raw := c.Query("before"); raw != "" {
		before, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		req.Before = before
	}
	return req, nil
}
