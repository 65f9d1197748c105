package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/services"
)

type GuildHandler struct {
	guildService services.IGuildService
	logger       *zap.Logger
}

func NewGuildHandler(guildService services.IGuildService, logger *zap.Logger) *GuildHandler {
	return &GuildHandler{guildService: guildService, logger: logger}
}

func (h *GuildHandler) CreateGuild(c *gin.Context) {
	var req services.CreateGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	guild, err := h.guildService.CreateGuild(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, guild)
}

func (h *GuildHandler) GetGuild(c *gin.Context) {
	guild, err := h.guildService.GetGuild(c.Request.Context(), currentUserID(c), c.Param("guild_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, guild)
}

func (h *GuildHandler) ListMyGuilds(c *gin.Context) {
	guilds, err := h.guildService.ListUserGuilds(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, guilds)
}

func (h *GuildHandler) UpdateGuild(c *gin.Context) {
	var req services.UpdateGuildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	guild, err := h.guildService.UpdateGuild(c.Request.Context(), currentUserID(c), c.Param("guild_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, guild)
}

func (h *GuildHandler) DeleteGuild(c *gin.Context) {
	if err := h.guildService.DeleteGuild(c.Request.Context(), currentUserID(c), c.Param("guild_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) KickMember(c *gin.Context) {
	err := h.guildService.KickMember(c.Request.Context(), currentUserID(c), c.Param("guild_id"), c.Param("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) LeaveGuild(c *gin.Context) {
	if err := h.guildService.LeaveGuild(c.Request.Context(), currentUserID(c), c.Param("guild_id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) CreateRole(c *gin.Context) {
	var req services.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	role, err := h.guildService.CreateRole(c.Request.Context(), currentUserID(c), c.Param("guild_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, role)
}

func (h *GuildHandler) UpdateRole(c *gin.Context) {
	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	guild, err := h.guildService.UpdateRole(c.Request.Context(), currentUserID(c), c.Param("guild_id"), c.Param("role_id"), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, guild)
}

func (h *GuildHandler) DeleteRole(c *gin.Context) {
	err := h.guildService.DeleteRole(c.Request.Context(), currentUserID(c), c.Param("guild_id"), c.Param("role_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) AssignRole(c *gin.Context) {
	err := h.guildService.AssignRole(c.Request.Context(), currentUserID(c),
		c.Param("guild_id"), c.Param("role_id"), c.Param("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *GuildHandler) UnassignRole(c *gin.Context) {
	err := h.guildService.UnassignRole(c.Request.Context(), currentUserID(c),
		c.Param("guild_id"), c.Param("role_id"), c.Param("user_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
