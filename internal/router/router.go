// Package router wires handlers and gates into a gin engine.
package router

import (
	"time"

	"github.com/Baaaki/event-manager/internal/handler"
	"github.com/Baaaki/event-manager/internal/middleware"
	"github.com/Baaaki/event-manager/internal/rbac"
	"github.com/Baaaki/event-manager/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the long-lived objects built at startup. Policy is shared read-only.
type Deps struct {
	AuthService  *service.AuthService
	EventService *service.EventService
	Policy       *rbac.Policy

	AllowedOrigins []string
	IsProduction   bool
	// MaxMultipartMemory bounds the in-memory part of a flyer upload
	MaxMultipartMemory int64
}

// New builds the engine. Every mutating event route sits behind the
// authentication gate; POST and PUT additionally need a role permission.
func New(deps Deps) *gin.Engine {
	r := gin.New()
	if deps.MaxMultipartMemory > 0 {
		r.MaxMultipartMemory = deps.MaxMultipartMemory
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.HSTSMiddleware(deps.IsProduction))
	r.Use(cors.New(corsConfig(deps.AllowedOrigins)))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	adminHandler := handler.NewAdminHandler(deps.AuthService)
	eventHandler := handler.NewEventHandler(deps.EventService)

	requireAuth := middleware.AuthMiddleware(deps.AuthService)
	can := func(action rbac.Action) gin.HandlerFunc {
		return middleware.RequirePermission(deps.Policy, action)
	}

	r.GET("/", handler.Home)

	// Public routes
	users := r.Group("/users")
	{
		users.POST("/register", authHandler.Register)
		users.POST("/login", authHandler.Login)
	}

	// Admin user management
	admin := r.Group("/users", requireAuth)
	{
		admin.DELETE("/:id", can(rbac.ActionDeleteUser), adminHandler.DeleteUser)
		admin.PUT("/:id/role", can(rbac.ActionPutUser), adminHandler.UpdateUserRole)
	}

	events := r.Group("/events")
	{
		events.GET("", eventHandler.ListEvents)
		events.GET("/:id", eventHandler.GetEvent)

		// Protected routes
		events.POST("", requireAuth, can(rbac.ActionPostEvent), eventHandler.CreateEvent)
		events.PUT("/:id", requireAuth, can(rbac.ActionPutEvent), eventHandler.ReplaceEvent)
		events.DELETE("/:id", requireAuth, eventHandler.DeleteEvent)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}
