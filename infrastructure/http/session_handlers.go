package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gaming-hub/auth"
	"gaming-hub/domain"
	"gaming-hub/repositories"
	"gaming-hub/services"
)

func (s *Server) createSession(c *gin.Context) {
	var params services.CreateSessionParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := s.sessions.Create(c.Request.Context(), auth.UserID(c), params)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) listSessions(c *gin.Context) {
	filter := repositories.SessionFilter{
		Status:   c.Query("status"),
		Platform: c.Query("platform"),
		Game:     c.Query("game"),
	}

	sessions, err := s.sessions.List(c.Request.Context(), auth.UserID(c), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (s *Server) getSession(c *gin.Context) {
	session, err := s.sessions.Get(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) joinSession(c *gin.Context) {
	session, err := s.sessions.Join(c.Request.Context(), c.Param("id"), auth.UserID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) updateParticipant(c *gin.Context) {
	var body struct {
		Status domain.ParticipantStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := s.sessions.UpdateParticipantStatus(c.Request.Context(),
		c.Param("id"), auth.UserID(c), c.Param("userId"), body.Status)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) deleteSession(c *gin.Context) {
	if err := s.sessions.Delete(c.Request.Context(), c.Param("id"), auth.UserID(c)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) sessionMessages(c *gin.Context) {
	messages, err := s.messages.SessionMessages(c.Request.Context(),
		auth.UserID(c), c.Param("id"), messagePage(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (s *Server) sendSessionMessage(c *gin.Context) {
	var body struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	message, err := s.messages.SendSession(c.Request.Context(),
		auth.UserID(c), c.Param("id"), body.Content)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, message)
}

func messagePage(c *gin.Context) repositories.MessagePage {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return repositories.MessagePage{Limit: limit, Offset: offset}
}
