package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/services"
)

type ConversationHandler struct {
	conversationService services.IConversationService
	logger              *zap.Logger
}

func NewConversationHandler(conversationService services.IConversationService, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService, logger: logger}
}

func (h *ConversationHandler) OpenConversation(c *gin.Context) {
	var req services.OpenConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	conversation, err := h.conversationService.OpenConversation(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

func (h *ConversationHandler) GetConversation(c *gin.Context) {
	conversation, err := h.conversationService.GetConversation(c.Request.Context(), currentUserID(c), c.Param("conversation_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, conversation)
}

func (h *ConversationHandler) ListConversations(c *gin.Context) {
	conversations, err := h.conversationService.ListConversations(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, conversations)
}
