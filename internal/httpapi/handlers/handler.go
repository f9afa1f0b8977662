package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
	"github.com/suPer8Hu/jewelry-assistant/internal/common"
	"github.com/suPer8Hu/jewelry-assistant/internal/config"
	"github.com/suPer8Hu/jewelry-assistant/internal/ratelimit"
	"go.uber.org/zap"
)

type Handler struct {
	Cfg      config.Config
	ChatSvc  *chat.Service
	Sessions *chat.SessionManager
	ChatRepo *chat.Repo
	Log      *zap.Logger

	// ClientLimiter, when set, caps chat requests per client IP.
	ClientLimiter ratelimit.Limiter
}

func NewHandler(cfg config.Config, svc *chat.Service, sessions *chat.SessionManager, repo *chat.Repo, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Cfg: cfg, ChatSvc: svc, Sessions: sessions, ChatRepo: repo, Log: log}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"message": "pong"})
}
