package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gaming-hub/auth"
	"gaming-hub/repositories"
)

func (s *Server) listNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	page := repositories.NotificationPage{
		UnreadOnly: c.Query("unread") == "true",
		Limit:      limit,
		Offset:     offset,
	}

	notifications, err := s.notifications.List(c.Request.Context(), auth.UserID(c), page)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (s *Server) unreadCount(c *gin.Context) {
	count, err := s.notifications.UnreadCount(c.Request.Context(), auth.UserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	if err := s.notifications.MarkRead(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) markAllNotificationsRead(c *gin.Context) {
	if err := s.notifications.MarkAllRead(c.Request.Context(), auth.UserID(c)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deleteNotification(c *gin.Context) {
	if err := s.notifications.Delete(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) sendDirectMessage(c *gin.Context) {
	var body struct {
		RecipientID string `json:"recipientId"`
		Content     string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message, err := s.messages.SendDirect(c.Request.Context(),
		auth.UserID(c), body.RecipientID, body.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func (s *Server) conversation(c *gin.Context) {
	messages, err := s.messages.Conversation(c.Request.Context(),
		auth.UserID(c), c.Param("userId"), messagePage(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) markConversationRead(c *gin.Context) {
	if err := s.messages.MarkConversationRead(c.Request.Context(),
		auth.UserID(c), c.Param("userId")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) searchUsers(c *gin.Context) {
	filter := repositories.UserFilter{
		Search:   c.Query("search"),
		Platform: c.Query("platform"),
	}
	if v := c.Query("online"); v != "" {
		online := v == "true"
		filter.Online = &online
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.Limit = limit
	}

	users, err := s.friends.Search(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (s *Server) getUser(c *gin.Context) {
	user, err := s.friends.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) sendFriendRequest(c *gin.Context) {
	if err := s.friends.SendRequest(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) acceptFriendRequest(c *gin.Context) {
	if err := s.friends.AcceptRequest(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
