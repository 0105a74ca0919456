package handler

import (
	"errors"
	"net/http"

	"github.com/Baaaki/event-manager/internal/media"
	"github.com/Baaaki/event-manager/internal/service"
	"github.com/Baaaki/event-manager/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidEventID),
		errors.Is(err, service.ErrInvalidUserID):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrEventExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotEventOwner):
		return http.StatusForbidden
	case errors.Is(err, media.ErrUploadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes {"error": msg}. Internal failures never leak their cause.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.Log.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		message = "Internal server error"
	case http.StatusBadGateway:
		message = "Flyer upload failed"
	}

	c.AbortWithStatusJSON(status, gin.H{
		"error": message,
	})
}

// bindError answers a request whose body or query could not be parsed.
func bindError(c *gin.Context, err error) {
	logger.Log.Debug("Request binding failed",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"error": "Invalid request: " + err.Error(),
	})
}
