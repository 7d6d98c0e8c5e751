package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legalai-assistant/internal/app"
	"legalai-assistant/internal/model"
	"legalai-assistant/internal/transport/http/middleware"
	"legalai-assistant/internal/transport/http/response"
)

type ChatHandler struct {
	chat *app.ChatService
}

type ChatRequest struct {
	Message     string           `json:"message" binding:"required,max=2000"`
	History     []model.ChatTurn `json:"history"`
	DocumentIDs []string         `json:"document_ids"`
}

func NewChatHandler(chat *app.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Stream answers a chat request as a server-sent event stream of JSON
// events. Every stream ends with a done event, whether it completed or
// failed; failures never leave the stream hanging.
func (h *ChatHandler) Stream(c *gin.Context) {
	sessionID := middleware.SessionID(c)

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "stream not supported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	err := h.chat.StreamAnswer(c.Request.Context(), app.ChatInput{
		SessionID:   sessionID,
		Message:     req.Message,
		History:     req.History,
		DocumentIDs: req.DocumentIDs,
	}, func(event app.StreamEvent) error {
		payload, marshalErr := json.Marshal(event)
		if marshalErr != nil {
			return marshalErr
		}
		if _, writeErr := c.Writer.Write([]byte("data: " + string(payload) + "\n\n")); writeErr != nil {
			return writeErr
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		if errors.Is(err, app.ErrMessageEmpty) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
			return
		}
		// The stream already carried its terminal event or the client is
		// gone; nothing sensible left to write.
		return
	}
}
