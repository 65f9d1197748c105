package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Gopher0727/Concord/internal/services"
)

// respondError translates service sentinels into HTTP statuses. Anything
// unrecognized is an internal failure: it is logged in full and masked with a
// generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrGuildNotFound),
		errors.Is(err, services.ErrChannelNotFound),
		errors.Is(err, services.ErrMessageNotFound),
		errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrInviteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrForbidden),
		errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrCannotKickOwner),
		errors.Is(err, services.ErrOwnerCannotLeave):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrDuplicateConversation),
		errors.Is(err, services.ErrUsernameTaken),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrLastChannel),
		errors.Is(err, services.ErrManagedRole):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInviteExpired),
		errors.Is(err, services.ErrInviteExhausted):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})

	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request: " + err.Error()})
}

// currentUserID reads the identity placed by the auth middleware.
func currentUserID(c *gin.Context) string {
	return c.GetString("user_id")
}
