package models

// ChatRequest is the payload accepted by /api/chat for driving a conversation directly.
type ChatRequest struct {
	UserID string `json:"user_id" binding:"required"` // unique user identifier
	Text   string `json:"text"`                       // user's message; empty is answered with a prompt
}

// ChatResponse is what the chat endpoint returns.
type ChatResponse struct {
	UserID        string `json:"user_id"`
	ResponseText  string `json:"response"`
	CurrentIntent Intent `json:"current_intent"`
}
