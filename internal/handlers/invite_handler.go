package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/services"
)

type InviteHandler struct {
	inviteService services.IInviteService
	logger        *zap.Logger
}

func NewInviteHandler(inviteService services.IInviteService, logger *zap.Logger) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, logger: logger}
}

func (h *InviteHandler) CreateInvite(c *gin.Context) {
	// An empty body means default expiry and unlimited uses.
	var req services.CreateInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err)
		return
	}

	invite, err := h.inviteService.CreateInvite(c.Request.Context(), currentUserID(c), c.Param("guild_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, invite)
}

// Redeem joins the requester to the invite's guild and returns the guild.
func (h *InviteHandler) Redeem(c *gin.Context) {
	guild, err := h.inviteService.Redeem(c.Request.Context(), currentUserID(c), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, guild)
}

func (h *InviteHandler) DeleteInvite(c *gin.Context) {
	if err := h.inviteService.DeleteInvite(c.Request.Context(), currentUserID(c), c.Param("invite_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *InviteHandler) ListGuildInvites(c *gin.Context) {
	invites, err := h.inviteService.ListGuildInvites(c.Request.Context(), currentUserID(c), c.Param("guild_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, invites)
}
