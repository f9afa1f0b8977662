package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/jewelry-assistant/internal/auth"
	"github.com/suPer8Hu/jewelry-assistant/internal/common"
	"github.com/suPer8Hu/jewelry-assistant/internal/httpapi/handlers"
	"github.com/suPer8Hu/jewelry-assistant/internal/httpapi/middleware"
	"go.uber.org/zap"
)

func NewRouter(h *handlers.Handler, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	r.GET("/ping", h.Ping)

	// Chat: guests welcome, a customer token only tags the rows
	chatGroup := r.Group("/chat")
	if h.ClientLimiter != nil {
		chatGroup.Use(middleware.ClientRateLimit(h.ClientLimiter, log))
	}
	chatGroup.Use(middleware.OptionalAuth(h.Cfg.JWTSecret))
	chatGroup.POST("/sessions", h.CreateChatSession)
	chatGroup.POST("/messages", h.SendChatMessage)
	chatGroup.GET("/sessions/:session_id/messages", h.ListChatMessages)

	// admin
	r.POST("/admin/login", h.AdminLogin)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.AuthRequired(h.Cfg.JWTSecret, auth.RoleAdmin))
	adminGroup.POST("/maintenance/expire", h.RunExpiry)
	adminGroup.POST("/maintenance/purge", h.RunPurge)
	adminGroup.GET("/analytics", h.ListAnalytics)
	return r
}
