package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/jewelry-assistant/internal/assistant"
	"github.com/suPer8Hu/jewelry-assistant/internal/catalog"
	"github.com/suPer8Hu/jewelry-assistant/internal/chat"
	"github.com/suPer8Hu/jewelry-assistant/internal/common"
	"github.com/suPer8Hu/jewelry-assistant/internal/httpapi/middleware"
	"go.uber.org/zap"
)

const maxMessageLen = 2000

func userIDFromContext(c *gin.Context) *string {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return nil
	}
	id, ok := v.(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}

func (h *Handler) CreateChatSession(c *gin.Context) {
	sid, _, err := h.Sessions.GetOrCreateGuestSession(c.Request.Context(), "")
	if err != nil {
		h.Log.Error("create chat session", zap.Error(err))
		common.Fail(c, http.StatusServiceUnavailable, 50300, chat.SessionUnavailableReply)
		return
	}
	common.OK(c, gin.H{"session_id": sid})
}

type sendMessageReq struct {
	SessionID      string            `json:"session_id"`
	Message        string            `json:"message" binding:"required"`
	History        []assistant.Turn  `json:"history"`
	ProductContext []catalog.Product `json:"product_context"`
}

func (h *Handler) SendChatMessage(c *gin.Context) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" || len(req.Message) > maxMessageLen {
		common.Fail(c, http.StatusBadRequest, 10002, "message must be 1-2000 characters")
		return
	}

	res, err := h.ChatSvc.SendMessage(c.Request.Context(), chat.SendRequest{
		SessionID:      strings.TrimSpace(req.SessionID),
		UserID:         userIDFromContext(c),
		Message:        req.Message,
		History:        req.History,
		ProductContext: req.ProductContext,
	})
	switch {
	case err == nil:
		common.OK(c, res)
	case errors.Is(err, chat.ErrRateLimited):
		common.FailWith(c, http.StatusTooManyRequests, 42900, chat.RateLimitedReply, gin.H{"session_id": res.SessionID})
	case errors.Is(err, chat.ErrSessionUnavailable):
		common.Fail(c, http.StatusServiceUnavailable, 50300, chat.SessionUnavailableReply)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// the client is usually gone; this is for proxies that are still listening
		common.Fail(c, http.StatusServiceUnavailable, 50301, "request cancelled")
	default:
		h.Log.Error("send chat message", zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "Sorry, something went wrong. Please try again.")
	}
}

func (h *Handler) ListChatMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	limit, _ := strconv.Atoi(c.Query("limit"))
	beforeIDStr := c.Query("before_id")
	var beforeID uint64
	if beforeIDStr != "" {
		if n, err := strconv.ParseUint(beforeIDStr, 10, 64); err == nil {
			beforeID = n
		}
	}

	msgs, err := h.ChatSvc.ListMessages(c.Request.Context(), sessionID, limit, beforeID)
	if err != nil {
		h.Log.Error("list chat messages", zap.String("session_id", sessionID), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50002, "failed to list messages")
		return
	}

	var nextBeforeID uint64
	if len(msgs) > 0 {
		nextBeforeID = msgs[len(msgs)-1].ID
	}

	common.OK(c, gin.H{
		"messages":       msgs,
		"next_before_id": nextBeforeID,
	})
}
