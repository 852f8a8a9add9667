package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/smsi-platform/smsi-backend/internal/config"
	"github.com/smsi-platform/smsi-backend/internal/middleware"
	"github.com/smsi-platform/smsi-backend/internal/model"
	ws "github.com/smsi-platform/smsi-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams live audit activity to admin dashboards.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ActivityStream godoc
// WS /ws/v1/admin/activity
// Relays audit events published on Redis until either side goes away.
func (h *WSHandler) ActivityStream(c *gin.Context) {
	p := middleware.GetPrincipal(c)
	if p == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if h.rdb == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "activity stream unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("admin_id", p.ID).Logger()
	ctx := c.Request.Context()
	channel := config.CacheKey.AuditActivityChannel()

	sub := h.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before announcing readiness.
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Activity subscribe failed")
		ws.WriteError(conn, "subscription failed")
		return
	}
	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady, Channel: channel}); err != nil {
		return
	}

	wsLog.Info().Msg("Admin connected to activity stream")

	// The reader only detects closes and pings; all writes stay on this goroutine.
	pings := make(chan struct{}, 1)
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		ws.KeepAlive(conn)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	messages := sub.Channel()
	for {
		select {
		case <-closed:
			wsLog.Info().Msg("Admin disconnected from activity stream")
			return
		case <-ctx.Done():
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var entry model.AuditEntry
			if err := json.Unmarshal([]byte(msg.Payload), &entry); err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed activity event")
				continue
			}
			if err := ws.WriteTyped(conn, ws.ActivityResponse{Event: ws.EventActivity, Entry: entry}); err != nil {
				return
			}
		}
	}
}
