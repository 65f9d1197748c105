package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/presence"
	"github.com/Gopher0727/Concord/internal/services"
)

type UserHandler struct {
	authService services.IAuthService
	presence    *presence.Tracker
	logger      *zap.Logger
}

func NewUserHandler(authService services.IAuthService, tracker *presence.Tracker, logger *zap.Logger) *UserHandler {
	return &UserHandler{authService: authService, presence: tracker, logger: logger}
}

func (h *UserHandler) Me(c *gin.Context) {
	h.getUser(c, currentUserID(c))
}

func (h *UserHandler) GetUser(c *gin.Context) {
	h.getUser(c, c.Param("user_id"))
}

func (h *UserHandler) getUser(c *gin.Context, userID string) {
	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	status, err := h.presence.Status(c.Request.Context(), user.ID)
	if err != nil {
		h.logger.Warn("presence lookup failed", zap.String("user_id", user.ID), zap.Error(err))
		status = presence.StatusOffline
	}
	user.Status = status

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus records an explicit availability choice (online, idle, dnd,
// offline) in the presence tracker.
func (h *UserHandler) SetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !presence.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown presence status"})
		return
	}

	if err := h.presence.SetStatus(c.Request.Context(), currentUserID(c), req.Status); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}
