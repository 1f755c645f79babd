package models

import "time"

// TurnPayload is one inbound chat message queued for processing.
type TurnPayload struct {
	MessageID   string    `json:"messageId"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	ReceivedAt  time.Time `json:"receivedAt"`
}

// ReplyPayload is an outbound reply whose first delivery attempt failed.
type ReplyPayload struct {
	RecipientID string `json:"recipientId"`
	Text        string `json:"text"`
}
