package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orgchat/internal/logger"
	"orgchat/pkg/apperrors"
)

// respondError maps service errors onto HTTP. AppErrors carry their own
// status; anything else is an opaque 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if apperrors.As(err, &appErr) {
		c.JSON(appErr.HTTPCode, gin.H{"error": appErr})
		return
	}
	logger.WithError(err).Error("unhandled error", "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": apperrors.InternalError(err)})
}

// actingUser resolves the caller set by the out-of-scope auth layer.
func actingUser(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user identity required"})
		return "", false
	}
	return userID, true
}
