package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/jewelry-assistant/internal/auth"
	"github.com/suPer8Hu/jewelry-assistant/internal/common"
	"go.uber.org/zap"
)

const adminTokenTTL = 12 * time.Hour

type adminLoginReq struct {
	Password string `json:"password" binding:"required"`
}

func (h *Handler) AdminLogin(c *gin.Context) {
	var req adminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if !auth.CheckPassword(h.Cfg.AdminPasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40102, "invalid credentials")
		return
	}

	token, err := auth.SignJWT("admin", auth.RoleAdmin, h.Cfg.JWTSecret, adminTokenTTL)
	if err != nil {
		h.Log.Error("sign admin token", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}
	common.OK(c, gin.H{"token": token, "expires_in": int(adminTokenTTL.Seconds())})
}

// RunExpiry runs the expiry sweep now instead of waiting for the janitor.
func (h *Handler) RunExpiry(c *gin.Context) {
	n := h.Sessions.ExpireStaleSessions(c.Request.Context())
	common.OK(c, gin.H{"expired": n})
}

func (h *Handler) RunPurge(c *gin.Context) {
	n := h.Sessions.PurgeOldArchives(c.Request.Context())
	common.OK(c, gin.H{"purged": n})
}

func (h *Handler) ListAnalytics(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.ChatRepo.ListEvents(c.Request.Context(), c.Query("event_type"), limit)
	if err != nil {
		h.Log.Error("list analytics", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50003, "failed to list analytics events")
		return
	}
	common.OK(c, gin.H{"events": events})
}
