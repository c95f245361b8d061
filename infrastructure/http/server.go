// Package http exposes the REST API over gin. Handlers stay thin: decode,
// call the service, map the error once.
package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"gaming-hub/auth"
	"gaming-hub/errors"
	"gaming-hub/infrastructure/ws"
	"gaming-hub/observability"
	"gaming-hub/services"
)

type Server struct {
	log           *slog.Logger
	db            *sql.DB
	authn         services.IAuthService
	sessions      services.ISessionService
	messages      services.IMessageService
	friends       services.IFriendService
	notifications services.INotificationService
	tokens        *auth.TokenManager
	gateway       *ws.Gateway
	monitor       *observability.Monitor

	engine *gin.Engine
}

func NewServer(log *slog.Logger, db *sql.DB,
	authn services.IAuthService,
	sessions services.ISessionService,
	messages services.IMessageService,
	friends services.IFriendService,
	notifications services.INotificationService,
	tokens *auth.TokenManager,
	gateway *ws.Gateway,
	monitor *observability.Monitor) *Server {
	s := &Server{
		log:           log,
		db:            db,
		authn:         authn,
		sessions:      sessions,
		messages:      messages,
		friends:       friends,
		notifications: notifications,
		tokens:        tokens,
		gateway:       gateway,
		monitor:       monitor,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the root http.Handler for the server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/api/health", s.health)
	engine.POST("/api/auth/register", s.register)
	engine.POST("/api/auth/login", s.login)
	// The gateway validates its own token: browsers cannot set headers on
	// websocket dials.
	engine.GET("/ws", s.gateway.Handle)

	api := engine.Group("/api")
	api.Use(auth.Middleware(s.tokens))
	{
		api.GET("/stats", s.stats)

		api.POST("/sessions", s.createSession)
		api.GET("/sessions", s.listSessions)
		api.GET("/sessions/:id", s.getSession)
		api.DELETE("/sessions/:id", s.deleteSession)
		api.POST("/sessions/:id/join", s.joinSession)
		api.PATCH("/sessions/:id/participants/:userId", s.updateParticipant)
		api.GET("/sessions/:id/messages", s.sessionMessages)
		api.POST("/sessions/:id/messages", s.sendSessionMessage)

		api.GET("/notifications", s.listNotifications)
		api.GET("/notifications/unread-count", s.unreadCount)
		api.POST("/notifications/read-all", s.markAllNotificationsRead)
		api.POST("/notifications/:id/read", s.markNotificationRead)
		api.DELETE("/notifications/:id", s.deleteNotification)

		api.POST("/messages", s.sendDirectMessage)
		api.GET("/messages/conversation/:userId", s.conversation)
		api.POST("/messages/conversation/:userId/read", s.markConversationRead)

		api.GET("/users", s.searchUsers)
		api.GET("/users/:id", s.getUser)
		api.POST("/users/:id/friend-request", s.sendFriendRequest)
		api.POST("/users/:id/accept-friend", s.acceptFriendRequest)
	}
	return engine
}

func (s *Server) health(c *gin.Context) {
	if err := s.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.Snapshot())
}

// fail maps a service error to its HTTP status exactly once, at the edge.
// Store internals never leak into response bodies.
func (s *Server) fail(c *gin.Context, err error) {
	status := errors.MapToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "err", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
