// Package api binds the presence and message services to HTTP with gin.
// Identity travels in the User header; every handler maps service errors to status codes.
package api

import (
	"chat-room/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const identityHeader = "User"

type Handler struct {
	log      *slog.Logger
	presence services.IPresenceService
	messages services.IMessageService
}

func NewHandler(log *slog.Logger, presence services.IPresenceService, messages services.IMessageService) *Handler {
	return &Handler{log: log, presence: presence, messages: messages}
}

// NewRouter wires the chat routes. allowedOrigin "*" accepts any origin.
func NewRouter(log *slog.Logger, h *Handler, allowedOrigin string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log), cors.New(corsConfig(allowedOrigin)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/participants", h.RegisterParticipant)
	router.GET("/participants", h.ListParticipants)
	router.POST("/status", h.Heartbeat)

	messages := router.Group("/messages")
	messages.POST("", h.SendMessage)
	messages.GET("", h.ListMessages)
	messages.PUT("/:messageId", h.EditMessage)
	messages.DELETE("/:messageId", h.DeleteMessage)

	return router
}

func corsConfig(allowedOrigin string) cors.Config {
	config := cors.DefaultConfig()
	if allowedOrigin == "" || allowedOrigin == "*" {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = []string{allowedOrigin}
	}
	config.AddAllowHeaders(identityHeader)
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	return config
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"user", c.GetHeader(identityHeader),
			"duration", time.Since(start),
		)
	}
}
