// Package ws exposes the real-time channel: one websocket per client,
// identified by JWT at upgrade time, fanned out through the broadcast
// router.
package ws

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"gaming-hub/auth"
	"gaming-hub/contract"
	"gaming-hub/observability"
	"gaming-hub/services"
)

type Gateway struct {
	log        *slog.Logger
	presence   contract.PresenceRegistry
	router     contract.Router
	tokens     *auth.TokenManager
	messages   services.IMessageService
	monitor    *observability.Monitor
	bufferSize int
	handlers   map[string]handlerFunc

	upgrader websocket.Upgrader
}

func NewGateway(log *slog.Logger, presence contract.PresenceRegistry, router contract.Router,
	tokens *auth.TokenManager, messages services.IMessageService, bufferSize int,
	monitor *observability.Monitor) *Gateway {
	g := &Gateway{
		log:        log,
		presence:   presence,
		router:     router,
		tokens:     tokens,
		messages:   messages,
		monitor:    monitor,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Browsers cannot forge the token; origin filtering happens
				// at the reverse proxy.
				return true
			},
		},
	}
	g.handlers = g.handlerTable()
	return g
}

// Handle upgrades the HTTP request to a websocket. Identity comes from the
// token query parameter (browsers cannot set headers on websocket dials);
// an Authorization header works too. The connection only joins presence and
// topics once the client sends identify.
func (g *Gateway) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = c.GetHeader("Authorization")
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}
	}
	claims, err := g.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return
	}

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		g.log.Warn("websocket upgrade failed", "err", err)
		return
	}

	client := newClient(g.log, conn, claims.UserID, g.bufferSize, g.monitor)
	g.monitor.ConnectionOpened()
	g.log.Info("websocket connected", "user_id", client.userID)

	go client.writePump()
	go client.readPump(g)
}

// teardown runs once per connection when its read pump exits. Unsubscribing
// happens before the presence removal so the offline hook observes the final
// state.
func (g *Gateway) teardown(client *Client) {
	g.router.UnsubscribeAll(client)
	g.presence.Disconnect(client)
	client.close()
	g.monitor.ConnectionClosed()
	g.log.Info("websocket disconnected", "user_id", client.userID)
}
