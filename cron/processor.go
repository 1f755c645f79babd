package cron

import (
	"context"
	"errors"
	"sync"
	"time"

	"hotelbot/models"
	"hotelbot/services/notification"
	"hotelbot/services/tasks"
	"hotelbot/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const replyProcessingFailed = "I apologize, but I encountered an error processing your request. Please try again."

// Turner is the dialogue entry point.
type Turner interface {
	HandleTurn(ctx context.Context, userID, text string) string
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TurnProcessor wraps one dialogue turn in the transport steps around it:
// mark seen, typing on, the turn itself, the reply, typing off.
type TurnProcessor struct {
	Engine   Turner
	Notifier notification.NotificationService
	// Retry, when set, receives replies whose first delivery failed.
	Retry  Enqueuer
	Logger *zap.Logger
}

func (p *TurnProcessor) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Process runs one inbound message to completion.
func (p *TurnProcessor) Process(ctx context.Context, payload models.TurnPayload) {
	logger := p.logger().With(zap.String("user_id", payload.SenderID), zap.String("message_id", payload.MessageID))

	p.action(ctx, logger, payload.SenderID, notification.ActionMarkSeen)
	p.action(ctx, logger, payload.SenderID, notification.ActionTypingOn)
	defer p.action(context.WithoutCancel(ctx), logger, payload.SenderID, notification.ActionTypingOff)

	reply := p.runTurn(ctx, logger, payload)
	p.deliver(ctx, logger, payload.SenderID, reply)
}

func (p *TurnProcessor) runTurn(ctx context.Context, logger *zap.Logger, payload models.TurnPayload) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Turn panicked", zap.Any("panic", r))
			reply = replyProcessingFailed
		}
	}()
	return p.Engine.HandleTurn(ctx, payload.SenderID, payload.Text)
}

func (p *TurnProcessor) action(ctx context.Context, logger *zap.Logger, recipientID, action string) {
	if err := p.Notifier.SendAction(ctx, recipientID, action); err != nil {
		logger.Debug("Sender action failed", zap.String("action", action), zap.Error(err))
	}
}

func (p *TurnProcessor) deliver(ctx context.Context, logger *zap.Logger, recipientID, text string) {
	err := p.Notifier.SendMessage(ctx, recipientID, text)
	if err == nil {
		utils.RepliesTotal.WithLabelValues("sent").Inc()
		return
	}
	logger.Warn("Reply delivery failed", zap.Error(err))

	if p.Retry == nil {
		utils.RepliesTotal.WithLabelValues("failed").Inc()
		return
	}
	task, opts, terr := tasks.NewReplyTask(models.ReplyPayload{RecipientID: recipientID, Text: text})
	if terr == nil {
		_, terr = p.Retry.EnqueueContext(context.WithoutCancel(ctx), task, opts...)
	}
	if terr != nil {
		logger.Error("Could not queue reply retry", zap.Error(terr))
		utils.RepliesTotal.WithLabelValues("failed").Inc()
		return
	}
	utils.RepliesTotal.WithLabelValues("queued").Inc()
}

// Dispatcher hands an inbound message to whatever processes turns.
type Dispatcher interface {
	Dispatch(ctx context.Context, payload models.TurnPayload) error
}

// QueueDispatcher enqueues turns on asynq.
type QueueDispatcher struct {
	Client Enqueuer
	Logger *zap.Logger
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, payload models.TurnPayload) error {
	task, opts, err := tasks.NewTurnTask(payload)
	if err != nil {
		return err
	}
	info, err := d.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		if d.Logger != nil {
			d.Logger.Info("Dropping redelivered message", zap.String("message_id", payload.MessageID))
		}
		return nil
	}
	if err != nil {
		return err
	}
	if d.Logger != nil {
		d.Logger.Debug("Turn queued", zap.String("task_id", info.ID), zap.String("user_id", payload.SenderID))
	}
	return nil
}

// InlineDispatcher runs turns in background goroutines of this process.
type InlineDispatcher struct {
	Processor *TurnProcessor
	Timeout   time.Duration

	wg   sync.WaitGroup
	mu   sync.Mutex
	seen map[string]time.Time
}

func (d *InlineDispatcher) Dispatch(_ context.Context, payload models.TurnPayload) error {
	if d.duplicate(payload.MessageID) {
		return nil
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx := context.Background()
		if d.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, d.Timeout)
			defer cancel()
		}
		d.Processor.Process(ctx, payload)
	}()
	return nil
}

// duplicate remembers message IDs for an hour so webhook redeliveries are dropped.
func (d *InlineDispatcher) duplicate(messageID string) bool {
	if messageID == "" {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	now := time.Now()
	if d.seen == nil {
		d.seen = make(map[string]time.Time)
	}
	for id, at := range d.seen {
		if now.Sub(at) > time.Hour {
			delete(d.seen, id)
		}
	}
	if _, ok := d.seen[messageID]; ok {
		return true
	}
	d.seen[messageID] = now
	return false
}

// Wait blocks until every dispatched turn has finished.
func (d *InlineDispatcher) Wait() {
	d.wg.Wait()
}
