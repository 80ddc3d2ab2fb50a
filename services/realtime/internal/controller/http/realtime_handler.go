package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"akiya-share/pkg/jwt"
	"akiya-share/pkg/logger"
	"akiya-share/pkg/middleware"
	"akiya-share/services/realtime/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type RealtimeHandler struct {
	subscriptions usecase.SubscriptionUseCase
	jwtService    *jwt.Service
	revocations   middleware.RevocationChecker
	logger        *logger.Logger
}

func NewRealtimeHandler(subscriptions usecase.SubscriptionUseCase, jwtService *jwt.Service, revocations middleware.RevocationChecker, logger *logger.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		subscriptions: subscriptions,
		jwtService:    jwtService,
		revocations:   revocations,
		logger:        logger,
	}
}

func (h *RealtimeHandler) authenticate(c *gin.Context) (string, bool) {
	if userID := c.GetString("user_id"); userID != "" {
		return userID, true
	}

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token required"})
		return "", false
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return "", false
	}

	if h.revocations != nil && claims.ID != "" {
		revoked, err := h.revocations.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			h.logger.Error("[REALTIME] Failed to check token revocation: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify token"})
			return "", false
		}
		if revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has been revoked"})
			return "", false
		}
	}
	return claims.UserID, true
}

// HandleWebSocket godoc
// @Summary      Subscribe to row changes
// @Description  Upgrades to a websocket that streams change events for one table. The subscription is live once the upgrade succeeds.
// @Tags         realtime
// @Param        token   query string true  "Access token"
// @Param        table   query string true  "posts, likes or comments"
// @Param        filter  query string false "Equality filter, e.g. post_id=eq.<id>"
// @Success      101
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /ws [get]
func (h *RealtimeHandler) HandleWebSocket(c *gin.Context) {
	userID, ok := h.authenticate(c)
	if !ok {
		return
	}

	table := c.Query("table")
	filter := c.Query("filter")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.subscriptions.Subscribe(ctx, table, filter)
	if err != nil {
		if errors.Is(err, usecase.ErrUnknownTable) || errors.Is(err, usecase.ErrBadFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Change feed unavailable"})
		return
	}
	defer sub.Close()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	h.logger.Info("[REALTIME] %s subscribed to %s %s", userID, table, filter)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writeLoop(conn, sub)
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("[REALTIME] Read error for %s: %v", userID, err)
			}
			break
		}
	}

	sub.Close()
	<-done
	h.logger.Info("[REALTIME] %s left %s", userID, table)
}

// writeLoop is the only writer of data frames on conn.
func (h *RealtimeHandler) writeLoop(conn *websocket.Conn, sub *usecase.Subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				h.logger.Error("Failed to write WebSocket message: %v", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}
