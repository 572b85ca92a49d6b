package api

import (
	"teamhub-backend/internal/config"
	"teamhub-backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, server *Server, cfg *config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.CORSSpecific(cfg.GetCORSOrigins()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "teamhub-backend",
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Auth routes (no authentication required)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", server.Register)
			auth.POST("/login", server.Login)
		}

		// Protected routes (authentication required)
		protected := v1.Group("/")
		protected.Use(middleware.AuthMiddleware(server.jwtManager))
		{
			protected.GET("/profile", server.GetProfile)

			// Notification polling surface
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", server.GetNotifications)
				notifications.GET("/unread-count", server.GetUnreadCount)
				notifications.POST("/mark-read", server.MarkRead)
				notifications.POST("/mark-all-read", server.MarkAllRead)
			}

			// Message routes (message send is the producer that triggers fan-out)
			messages := protected.Group("/messages")
			{
				messages.POST("", server.SendMessage)
				messages.GET("", server.GetMessages)
			}

			// Internal fan-out API for other services and jobs
			internal := protected.Group("/internal")
			internal.Use(middleware.AdminOnly())
			{
				internal.POST("/notify", server.Notify)
			}

			// Admin routes; every admin page load opportunistically runs
			// the reminder digest check
			admin := protected.Group("/admin")
			admin.Use(middleware.AdminOnly())
			admin.Use(server.DigestCheck())
			{
				reminders := admin.Group("/reminders")
				{
					reminders.GET("", server.GetReminders)
					reminders.POST("", server.CreateReminder)
					reminders.PUT("/:id", server.UpdateReminder)
					reminders.DELETE("/:id", server.DeleteReminder)
					reminders.PUT("/:id/complete", server.CompleteReminder)
				}

				admin.GET("/digest/status", server.GetDigestStatus)
			}
		}
	}
}
