package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"hotelbot/config"
	"hotelbot/models"
	"hotelbot/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RedisOpt builds the asynq connection from AppConfig.
func RedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// Worker runs queued conversation turns and reply retries.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

func NewWorker(redisOpt asynq.RedisConnOpt, concurrency int, proc *TurnProcessor, logger *zap.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				tasks.QueueConversation: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Warn("Task failed", zap.String("type", task.Type()), zap.Error(err))
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeConversationTurn, proc.HandleTurnTask)
	mux.HandleFunc(tasks.TypeConversationReply, proc.HandleReplyTask)

	return &Worker{srv: srv, mux: mux, logger: logger}
}

// Run starts the worker, retrying the start with backoff, and blocks until ctx
// is cancelled. Shutdown waits for in-flight turns.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Starting conversation worker")
	const maxAttempts = 5

	for attempts := 1; ; attempts++ {
		err := w.srv.Start(w.mux)
		if err == nil {
			break
		}
		w.logger.Warn("Failed to start worker", zap.Int("attempt", attempts), zap.Int("max_attempts", maxAttempts), zap.Error(err))
		if attempts == maxAttempts {
			return fmt.Errorf("conversation worker: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Duration(attempts*2) * time.Second):
		}
	}

	<-ctx.Done()
	w.logger.Info("Stopping conversation worker")
	w.srv.Shutdown()
	return nil
}

// HandleTurnTask is the asynq handler for conversation:turn.
func (p *TurnProcessor) HandleTurnTask(ctx context.Context, task *asynq.Task) error {
	var payload models.TurnPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		p.logger().Error("Invalid turn payload", zap.Error(err))
		return fmt.Errorf("decode turn payload: %v: %w", err, asynq.SkipRetry)
	}
	p.Process(ctx, payload)
	return nil
}

// HandleReplyTask is the asynq handler for conversation:reply. Errors are
// returned so asynq retries delivery.
func (p *TurnProcessor) HandleReplyTask(ctx context.Context, task *asynq.Task) error {
	var payload models.ReplyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		p.logger().Error("Invalid reply payload", zap.Error(err))
		return fmt.Errorf("decode reply payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := p.Notifier.SendMessage(ctx, payload.RecipientID, payload.Text); err != nil {
		return err
	}
	p.logger().Info("Queued reply delivered", zap.String("recipient_id", payload.RecipientID))
	return nil
}
