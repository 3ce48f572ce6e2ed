package api

import (
	"net/http"
	"time"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler holds the chat service dependency.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// --- DTOs ---

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

type ChatMessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func mapChatMessageToResponse(m *domain.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID.Hex(),
		Role:      string(m.Role),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}

// --- Handler Methods ---

// SendMessage forwards the user's message to the assistant and returns the reply.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reply, err := h.chatService.SendMessage(c.Request.Context(), userID, req.Message)
	if err != nil {
		abortWithError(c, http.StatusBadGateway, "Failed to get a response from the assistant.")
		return
	}

	c.JSON(http.StatusOK, mapChatMessageToResponse(reply))
}

// GetHistory returns the user's chat history, oldest first.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messages, err := h.chatService.GetHistory(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve chat history.")
		return
	}

	responses := make([]ChatMessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, mapChatMessageToResponse(&messages[i]))
	}
	c.JSON(http.StatusOK, responses)
}
