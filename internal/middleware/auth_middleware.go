package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Baaaki/event-manager/internal/models"
	"github.com/Baaaki/event-manager/internal/rbac"
	"github.com/Baaaki/event-manager/internal/service"
	"github.com/Baaaki/event-manager/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Authenticator resolves a bearer token to a user. A rejected token must
// yield an error wrapping service.ErrUnauthenticated.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware is the authentication gate. It fails closed: a missing,
// malformed or rejected credential ends the request with 401.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract token from "Bearer <token>"
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Not authenticated",
			})
			return
		}

		// 2. Resolve to a user
		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "Invalid authentication credentials"
			if !errors.Is(err, service.ErrUnauthenticated) {
				logger.Log.Error("Authentication lookup failed", zap.Error(err))
				status = http.StatusInternalServerError
				message = "Internal server error"
			}
			c.AbortWithStatusJSON(status, gin.H{
				"error": message,
			})
			return
		}

		// 3. Record the subject for the gates and handlers that follow
		c.Set(subjectKey, Authenticated{User: user})
		c.Next()
	}
}

// RequirePermission is the authorization gate for action. It must run after
// AuthMiddleware; an anonymous subject gets 401, a role without the action 403.
func RequirePermission(policy *rbac.Policy, action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Not authenticated",
			})
			return
		}

		if !policy.Allows(user.Role, action) {
			logger.Log.Warn("Access denied",
				zap.String("user_id", user.ID.String()),
				zap.String("role", string(user.Role)),
				zap.Stringer("action", action),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Access denied!",
			})
			return
		}

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
