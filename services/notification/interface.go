package notification

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Sender actions understood by the messaging platform.
const (
	ActionMarkSeen  = "mark_seen"
	ActionTypingOn  = "typing_on"
	ActionTypingOff = "typing_off"
)

// ErrDeliveryFailed wraps any non-2xx response from the messaging platform.
var ErrDeliveryFailed = errors.New("message delivery failed")

// NotificationService delivers replies and presence indicators to a conversation.
type NotificationService interface {
	SendMessage(ctx context.Context, recipientID, text string) error
	SendAction(ctx context.Context, recipientID, action string) error
}

// LogNotificationService only logs what it would send. Used when no access
// token is configured.
type LogNotificationService struct {
	Logger *zap.Logger
}

func (l LogNotificationService) logger() *zap.Logger {
	if l.Logger == nil {
		return zap.NewNop()
	}
	return l.Logger
}

func (l LogNotificationService) SendMessage(_ context.Context, recipientID, text string) error {
	l.logger().Info("Outbound message (not delivered)", zap.String("recipient_id", recipientID), zap.String("text", text))
	return nil
}

func (l LogNotificationService) SendAction(_ context.Context, recipientID, action string) error {
	l.logger().Debug("Outbound sender action (not delivered)", zap.String("recipient_id", recipientID), zap.String("action", action))
	return nil
}
