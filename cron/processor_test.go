package cron

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"hotelbot/models"
	"hotelbot/services/notification"
	"hotelbot/services/tasks"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingNotifier struct {
	mu       sync.Mutex
	events   []string
	messages []string
	failSend error
}

func (n *recordingNotifier) SendMessage(_ context.Context, recipientID, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, "message")
	if n.failSend != nil {
		return n.failSend
	}
	n.messages = append(n.messages, recipientID+":"+text)
	return nil
}

func (n *recordingNotifier) SendAction(_ context.Context, _ string, action string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, action)
	return nil
}

type echoTurner struct {
	panicOn string
}

func (e echoTurner) HandleTurn(_ context.Context, userID, text string) string {
	if text == e.panicOn {
		panic("boom")
	}
	return "echo " + text
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "t1"}, nil
}

func TestProcessOrdersSenderActionsAroundReply(t *testing.T) {
	n := &recordingNotifier{}
	p := &TurnProcessor{Engine: echoTurner{}, Notifier: n}

	p.Process(context.Background(), models.TurnPayload{MessageID: "m1", SenderID: "u1", Text: "hi"})

	assert.Equal(t, []string{
		notification.ActionMarkSeen,
		notification.ActionTypingOn,
		"message",
		notification.ActionTypingOff,
	}, n.events)
	assert.Equal(t, []string{"u1:echo hi"}, n.messages)
}

func TestProcessRecoversFromPanic(t *testing.T) {
	n := &recordingNotifier{}
	p := &TurnProcessor{Engine: echoTurner{panicOn: "explode"}, Notifier: n}

	p.Process(context.Background(), models.TurnPayload{SenderID: "u1", Text: "explode"})

	require.Len(t, n.messages, 1)
	assert.Equal(t, "u1:"+replyProcessingFailed, n.messages[0])
}

func TestProcessQueuesReplyOnDeliveryFailure(t *testing.T) {
	n := &recordingNotifier{failSend: notification.ErrDeliveryFailed}
	q := &fakeEnqueuer{}
	p := &TurnProcessor{Engine: echoTurner{}, Notifier: n, Retry: q}

	p.Process(context.Background(), models.TurnPayload{SenderID: "u1", Text: "hi"})

	require.Len(t, q.tasks, 1)
	assert.Equal(t, tasks.TypeConversationReply, q.tasks[0].Type())
	var payload models.ReplyPayload
	require.NoError(t, json.Unmarshal(q.tasks[0].Payload(), &payload))
	assert.Equal(t, models.ReplyPayload{RecipientID: "u1", Text: "echo hi"}, payload)
}

func TestHandleTurnTaskRejectsBadPayload(t *testing.T) {
	p := &TurnProcessor{Engine: echoTurner{}, Notifier: &recordingNotifier{}}

	err := p.HandleTurnTask(context.Background(), asynq.NewTask(tasks.TypeConversationTurn, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandleTurnTaskProcessesPayload(t *testing.T) {
	n := &recordingNotifier{}
	p := &TurnProcessor{Engine: echoTurner{}, Notifier: n}
	task, _, err := tasks.NewTurnTask(models.TurnPayload{MessageID: "m1", SenderID: "u2", Text: "hello"})
	require.NoError(t, err)

	require.NoError(t, p.HandleTurnTask(context.Background(), task))
	assert.Equal(t, []string{"u2:echo hello"}, n.messages)
}

func TestHandleReplyTaskReturnsDeliveryError(t *testing.T) {
	n := &recordingNotifier{failSend: notification.ErrDeliveryFailed}
	p := &TurnProcessor{Engine: echoTurner{}, Notifier: n}
	task, _, err := tasks.NewReplyTask(models.ReplyPayload{RecipientID: "u1", Text: "later"})
	require.NoError(t, err)

	assert.ErrorIs(t, p.HandleReplyTask(context.Background(), task), notification.ErrDeliveryFailed)

	n.failSend = nil
	require.NoError(t, p.HandleReplyTask(context.Background(), task))
	assert.Equal(t, []string{"u1:later"}, n.messages)
}

func TestQueueDispatcherIgnoresDuplicateMessage(t *testing.T) {
	q := &fakeEnqueuer{err: asynq.ErrTaskIDConflict}
	d := &QueueDispatcher{Client: q}

	assert.NoError(t, d.Dispatch(context.Background(), models.TurnPayload{MessageID: "m1", SenderID: "u1", Text: "hi"}))

	q.err = errors.New("redis down")
	assert.Error(t, d.Dispatch(context.Background(), models.TurnPayload{MessageID: "m2", SenderID: "u1", Text: "hi"}))
}

func TestInlineDispatcherRunsEachMessageOnce(t *testing.T) {
	defer goleak.VerifyNone(t)

	n := &recordingNotifier{}
	d := &InlineDispatcher{Processor: &TurnProcessor{Engine: echoTurner{}, Notifier: n}}

	payload := models.TurnPayload{MessageID: "m1", SenderID: "u1", Text: "hi"}
	require.NoError(t, d.Dispatch(context.Background(), payload))
	require.NoError(t, d.Dispatch(context.Background(), payload))
	d.Wait()

	assert.Equal(t, []string{"u1:echo hi"}, n.messages)
}
