package handler

import (
	"net/http"

	"github.com/Baaaki/event-manager/internal/middleware"
	"github.com/Baaaki/event-manager/internal/service"
	"github.com/Baaaki/event-manager/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	authService *service.AuthService
}

func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{
		authService: authService,
	}
}

type UpdateRoleRequest struct {
	Role string `json:"role" form:"role" binding:"required"`
}

// DeleteUser removes a user and every event they own
// DELETE /users/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	targetID := c.Param("id")
	logger.Log.Info("Admin deleting user",
		zap.String("admin_id", adminID(c)),
		zap.String("target_user_id", targetID),
	)

	if err := h.authService.DeleteUser(c.Request.Context(), targetID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deleted successfully!",
	})
}

// UpdateUserRole changes the role of a user
// PUT /users/:id/role
func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	var req UpdateRoleRequest

	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	targetID := c.Param("id")
	logger.Log.Info("Admin changing user role",
		zap.String("admin_id", adminID(c)),
		zap.String("target_user_id", targetID),
		zap.String("role", req.Role),
	)

	user, err := h.authService.UpdateUserRole(c.Request.Context(), targetID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User role updated successfully!",
		"data":    user,
	})
}

func adminID(c *gin.Context) string {
	if user, ok := middleware.CurrentUser(c); ok {
		return user.ID.String()
	}
	return ""
}
