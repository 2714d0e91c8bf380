package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"psyconnect/internal/delivery/http/helpers"
	"psyconnect/internal/domain"
)

// ChatRequest is the request body for POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
}

// Validate implements Validator.
func (req ChatRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(req.Message) == "" {
		errs = append(errs, "message is required")
	}
	return errs
}

// ChatResponse is the response body for POST /chat.
type ChatResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// ChatController handles the conversational relay endpoints.
type ChatController struct {
	Logger  *slog.Logger
	Service domain.ChatService
}

// NewChatController creates a ChatController with the given logger and service.
func NewChatController(logger *slog.Logger, svc domain.ChatService) *ChatController {
	return &ChatController{
		Logger:  logger,
		Service: svc,
	}
}

// Chat godoc
// @Summary Send a chat message
// @Description Relay a message to the assistant, keeping bounded per-session history.
// @Tags chat
// @Accept json
// @Produce json
// @Param body body ChatRequest true "Chat message"
// @Success 200 {object} controllers.ChatResponse
// @Failure 400 {object} helpers.ErrorResponse "missing message"
// @Failure 502 {object} helpers.ErrorResponse "upstream failure"
// @Router /chat [post]
func (c *ChatController) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	reply, sessionID, err := c.Service.SendMessage(r.Context(), req.SessionID, req.UserID, req.Message)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "chat relay failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusBadGateway, "failed to process message")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ChatResponse{
		Message:   reply,
		SessionID: sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ListAgents godoc
// @Summary List available chat agents
// @Tags chat
// @Produce json
// @Success 200 {array} domain.Agent
// @Router /agents [get]
func (c *ChatController) ListAgents(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, c.Service.ListAgents())
}
