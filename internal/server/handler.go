package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chat"
	"github.com/sayeesck/portfolio-chatbot-go/internal/chatlog"
	"github.com/sayeesck/portfolio-chatbot-go/internal/config"
	"github.com/sayeesck/portfolio-chatbot-go/internal/genai"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/metrics"
	"github.com/sayeesck/portfolio-chatbot-go/internal/profile"
	"github.com/sayeesck/portfolio-chatbot-go/internal/ratelimit"
)

// ChatRequest is the POST /chatbot payload.
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the POST /chatbot reply.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// Handler serves the chatbot HTTP API.
type Handler struct {
	engine   *chat.Engine
	sessions *SessionManager
	profile  *profile.Profile
	store    *chatlog.Store // nil when chat logging is disabled
	limiter  *ratelimit.PerSessionLimiter
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewHandler wires the chatbot HTTP surface.
func NewHandler(engine *chat.Engine, sessions *SessionManager, p *profile.Profile, store *chatlog.Store, limiter *ratelimit.PerSessionLimiter, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		engine:   engine,
		sessions: sessions,
		profile:  p,
		store:    store,
		limiter:  limiter,
		log:      log.WithModule("http"),
		metrics:  m,
	}
}

// Status handles GET / with a small service description.
func (h *Handler) Status(c *gin.Context) {
	status := gin.H{
		"bot":      "portfolio-chatbot",
		"owner":    h.profile.DisplayName(),
		"sessions": h.sessions.Count(),
	}
	if last := h.sessions.LastInteraction(); !last.IsZero() {
		status["last_interaction"] = last.UTC().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, status)
}

// Health handles the liveness probe. It never checks dependencies.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles the readiness probe: profile loaded plus chat-log ping.
func (h *Handler) Ready(c *gin.Context) {
	if h.profile == nil || h.profile.Name == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "profile not loaded",
		})
		return
	}

	chatlogStatus := "disabled"
	if h.store != nil {
		if err := h.store.Ready(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
		chatlogStatus = "connected"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"chatlog":  chatlogStatus,
		"sessions": h.sessions.Count(),
	})
}

// Chat handles POST /chatbot.
func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.recordError("bad_request", "/chatbot")
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.recordError("bad_request", "/chatbot")
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	sess, sessionID := h.sessions.GetOrCreate(req.SessionID)

	if h.limiter != nil && !h.limiter.Allow(sessionID) {
		h.recordError("rate_limited", "/chatbot")
		c.Header("Retry-After", "2")
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":      "too many messages, slow down a little",
			"session_id": sessionID,
		})
		return
	}

	ctx := genai.WithRateKey(c.Request.Context(), sessionID)
	reply := h.engine.ProcessMessage(ctx, sess, req.Message)

	h.appendChatLog(sessionID, req.Message, reply)

	c.JSON(http.StatusOK, ChatResponse{
		Response:  reply,
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// History handles GET /history?session_id=.
func (h *Handler) History(c *gin.Context) {
	sess, sessionID, ok := h.sessionFromQuery(c, "/history")
	if !ok {
		return
	}

	turns := h.engine.History(sess)
	if turns == nil {
		turns = []chat.Turn{}
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"history":    turns,
	})
}

// ClearHistory handles DELETE /history?session_id=.
func (h *Handler) ClearHistory(c *gin.Context) {
	sess, sessionID, ok := h.sessionFromQuery(c, "/history")
	if !ok {
		return
	}

	h.engine.ClearHistory(sess)
	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"status":     "cleared",
	})
}

func (h *Handler) sessionFromQuery(c *gin.Context, route string) (*chat.Session, string, bool) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		h.recordError("bad_request", route)
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return nil, "", false
	}

	sess := h.sessions.Get(sessionID)
	if sess == nil {
		h.recordError("not_found", route)
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return nil, "", false
	}
	return sess, sessionID, true
}

// appendChatLog records the exchange off the request path. A full write
// queue or slow disk must not delay the reply.
func (h *Handler) appendChatLog(sessionID, userText, botText string) {
	if h.store == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ChatLogWriteTimeout)
		defer cancel()
		if err := h.store.Append(ctx, sessionID, userText, botText); err != nil {
			h.log.WithSessionID(sessionID).WithError(err).Warn("chat log append failed")
		}
	}()
}

func (h *Handler) recordError(errorType, route string) {
	if h.metrics != nil {
		h.metrics.RecordHTTPError(errorType, route)
	}
}
