package tasks

import (
	"encoding/json"
	"time"

	"hotelbot/models"

	"github.com/hibiken/asynq"
)

const (
	TypeConversationTurn  = "conversation:turn"
	TypeConversationReply = "conversation:reply"

	// QueueConversation carries inbound turns; replies share it.
	QueueConversation = "conversation"
)

// NewTurnTask wraps one inbound message. The task ID is the platform message
// ID so webhook redeliveries are dropped by the queue, and turns are never
// retried because a retry could repeat a booking side effect.
func NewTurnTask(payload models.TurnPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeConversationTurn, b)
	opts := []asynq.Option{
		asynq.Queue(QueueConversation),
		asynq.MaxRetry(0),
		asynq.Timeout(time.Minute),
		asynq.Retention(24 * time.Hour),
	}
	if payload.MessageID != "" {
		opts = append(opts, asynq.TaskID("turn:"+payload.MessageID))
	}
	return task, opts, nil
}

// NewReplyTask retries delivery of a reply whose first send failed.
func NewReplyTask(payload models.ReplyPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeConversationReply, b)
	opts := []asynq.Option{
		asynq.Queue(QueueConversation),
		asynq.MaxRetry(5),
		asynq.Timeout(30 * time.Second),
	}
	return task, opts, nil
}
