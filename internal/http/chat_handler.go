package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"techmart-assistant/internal/service"
)

// ChatHandler mantiene dependencias para los endpoints del asistente.
type ChatHandler struct {
	logger  *zap.Logger
	chat    *service.ChatService
	limiter service.MessageRateLimiter
}

// NewChatHandler crea una instancia de ChatHandler. limiter puede ser nil.
func NewChatHandler(logger *zap.Logger, chat *service.ChatService, limiter service.MessageRateLimiter) *ChatHandler {
	return &ChatHandler{
		logger:  logger,
		chat:    chat,
		limiter: limiter,
	}
}

// PostMessage maneja POST /api/chat.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Message   string `json:"message" binding:"required"`
		SessionID string `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.limiter != nil && !h.limiter.Allow(c.Request.Context(), userID) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
		return
	}

	msg, sessionID, err := h.chat.HandleMessage(c.Request.Context(), userID, req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		case errors.Is(err, service.ErrStoreUnavailable) && msg.ID != "":
			// la respuesta se genero pero no quedo guardada
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"message":   msg,
				"sessionId": sessionID,
				"saved":     false,
			})
		case errors.Is(err, service.ErrStoreUnavailable):
			h.logger.Error("chat store unavailable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		default:
			h.logger.Error("handle chat message failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": msg, "sessionId": sessionID})
}

// ListSessions maneja GET /api/chat/sessions.
func (h *ChatHandler) ListSessions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summaries, err := h.chat.ListSessions(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list chat sessions failed", zap.Error(err))
		if errors.Is(err, service.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetSession maneja GET /api/chat/sessions/:sessionId.
func (h *ChatHandler) GetSession(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	session, err := h.chat.GetSession(c.Request.Context(), userID, c.Param("sessionId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrStoreUnavailable):
			h.logger.Error("get chat session failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session store unavailable"})
		default:
			h.logger.Error("get chat session failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		}
		return
	}
	c.JSON(http.StatusOK, session)
}
