package handlers

import (
	"context"
	"errors"
	"net/http"

	"hotelbot/models"
	"hotelbot/services/dialogue"
	"hotelbot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConversationEngine is the part of the dialogue engine exposed over HTTP.
type ConversationEngine interface {
	HandleTurn(ctx context.Context, userID, text string) string
	State(ctx context.Context, userID string) (*models.ConversationState, error)
	Reset(ctx context.Context, userID string) error
}

type ChatHandler struct {
	Engine ConversationEngine
}

func NewChatHandler(engine ConversationEngine) *ChatHandler {
	return &ChatHandler{Engine: engine}
}

// HandleChat runs one turn synchronously and returns the reply with the resulting intent.
func (h *ChatHandler) HandleChat(c *gin.Context) {
	logger := getLogger(c)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	reply := h.Engine.HandleTurn(c.Request.Context(), req.UserID, req.Text)

	resp := models.ChatResponse{UserID: req.UserID, ResponseText: reply, CurrentIntent: models.IntentNone}
	state, err := h.Engine.State(c.Request.Context(), req.UserID)
	switch {
	case err == nil:
		resp.CurrentIntent = state.CurrentIntent
	case !errors.Is(err, dialogue.ErrStateNotFound):
		logger.Warn("Could not read conversation state", zap.String("user_id", req.UserID), zap.Error(err))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) GetConversationHandler(c *gin.Context) {
	state, err := h.Engine.State(c.Request.Context(), c.Param("userID"))
	if errors.Is(err, dialogue.ErrStateNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
		return
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to read conversation", err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *ChatHandler) ResetConversationHandler(c *gin.Context) {
	if err := h.Engine.Reset(c.Request.Context(), c.Param("userID")); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "Failed to reset conversation", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation reset"})
}
