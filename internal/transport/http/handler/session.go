package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"legalai-assistant/internal/store"
	"legalai-assistant/internal/transport/http/response"
)

type SessionHandler struct {
	sessions  *store.SessionStore
	documents *store.DocumentStore
}

func NewSessionHandler(sessions *store.SessionStore, documents *store.DocumentStore) *SessionHandler {
	return &SessionHandler{sessions: sessions, documents: documents}
}

func (h *SessionHandler) Create(c *gin.Context) {
	sessionID := h.sessions.Create()
	response.OK(c, gin.H{"session_id": sessionID})
}

func (h *SessionHandler) Get(c *gin.Context) {
	sessionID := c.Param("id")
	session, ok := h.sessions.Get(sessionID)
	if !ok {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
		return
	}

	response.OK(c, gin.H{
		"session":   session,
		"documents": h.documents.ListByIDs(session.DocumentIDs),
	})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	sessionID := c.Param("id")
	if !h.sessions.Evict(sessionID) {
		response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, "session not found")
		return
	}
	response.OK(c, gin.H{"deleted_session_id": sessionID})
}
