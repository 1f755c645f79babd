package dialogue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotelbot/config"
	"hotelbot/models"
	"hotelbot/utils"

	"go.uber.org/zap"
)

// DefaultTurnTimeout bounds one HandleTurn call including collaborator calls.
const DefaultTurnTimeout = 20 * time.Second

// Engine drives the per-user booking conversations. It is safe for concurrent
// use; turns for the same user are serialised through the StateStore lock.
type Engine struct {
	store      *StateStore
	classifier IntentClassifier
	bookings   BookingCollaborator
	answerer   InquiryAnswerer
	validator  *Validator
	hotel      config.HotelFacts

	logger      *zap.Logger
	now         func() time.Time
	turnTimeout time.Duration
}

type Option func(*Engine)

// WithClock overrides the clock used to resolve "today".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithTurnTimeout(d time.Duration) Option {
	return func(e *Engine) { e.turnTimeout = d }
}

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func NewEngine(store *StateStore, classifier IntentClassifier, bookings BookingCollaborator, answerer InquiryAnswerer, validator *Validator, hotel config.HotelFacts, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		classifier:  classifier,
		bookings:    bookings,
		answerer:    answerer,
		validator:   validator,
		hotel:       hotel,
		logger:      zap.NewNop(),
		now:         time.Now,
		turnTimeout: DefaultTurnTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// turn is the working set of one HandleTurn call. state is a private copy;
// it only reaches the store if the outcome is not discarded.
type turn struct {
	userID string
	state  *models.ConversationState
	text   string
	today  time.Time
	// fresh is set when the intent was classified from this message.
	fresh bool
}

type outcome struct {
	reply      string
	kind       ErrorKind
	label      string
	discard    bool
	sideEffect bool
	// err is the cause behind a collaborator failure.
	err error
}

func (o outcome) metricLabel() string {
	switch {
	case o.kind != KindNone:
		return string(o.kind)
	case o.label != "":
		return o.label
	case o.sideEffect:
		return "completed"
	}
	return "advanced"
}

// HandleTurn consumes one inbound message and returns the reply. It never
// fails: collaborator errors become an apology and leave the state untouched.
func (e *Engine) HandleTurn(ctx context.Context, userID, text string) string {
	if e.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.turnTimeout)
		defer cancel()
	}
	start := e.now()
	logger := e.logger.With(zap.String("user_id", userID))

	unlock, err := e.store.Lock(ctx, userID)
	if err != nil {
		logger.Warn("Timed out waiting for conversation lock", zap.Error(err))
		utils.TurnsTotal.WithLabelValues("", string(KindCollaboratorUnavailable)).Inc()
		return replyUnavailable
	}
	defer unlock()

	stored, err := e.store.LoadOrCreate(ctx, userID)
	if err != nil {
		logger.Error("Failed to load conversation state", zap.Error(err))
		utils.CollaboratorFailuresTotal.WithLabelValues("state_store").Inc()
		utils.TurnsTotal.WithLabelValues("", string(KindCollaboratorUnavailable)).Inc()
		return replyUnavailable
	}

	t := &turn{
		userID: userID,
		state:  stored.Clone(),
		text:   strings.TrimSpace(text),
		today:  e.today(),
	}
	out := e.step(ctx, t)

	if !out.discard {
		if err := e.store.Save(ctx, t.state); err != nil {
			// The reply still goes out: a side effect may already have happened.
			logger.Error("Failed to save conversation state", zap.Error(err), zap.Bool("side_effect", out.sideEffect))
			utils.CollaboratorFailuresTotal.WithLabelValues("state_store").Inc()
		}
	}

	intent := t.state.CurrentIntent
	if out.discard {
		intent = stored.CurrentIntent
	}
	utils.TurnsTotal.WithLabelValues(string(intent), out.metricLabel()).Inc()
	logger.Info("Handled turn",
		zap.String("intent", string(intent)),
		zap.String("outcome", out.metricLabel()),
		zap.Duration("took", e.now().Sub(start)))
	return out.reply
}

// State returns a copy of the user's stored conversation, or ErrStateNotFound.
func (e *Engine) State(ctx context.Context, userID string) (*models.ConversationState, error) {
	return e.store.Get(ctx, userID)
}

// Reset drops the user's conversation entirely.
func (e *Engine) Reset(ctx context.Context, userID string) error {
	unlock, err := e.store.Lock(ctx, userID)
	if err != nil {
		return err
	}
	defer unlock()
	return e.store.Delete(ctx, userID)
}

func (e *Engine) today() time.Time {
	return models.DateOnly(e.now().In(e.hotel.Location()))
}

func (e *Engine) step(ctx context.Context, t *turn) outcome {
	st := t.state
	if t.text == "" {
		return outcome{reply: replyEmpty, kind: KindExtractionFailure, discard: true}
	}

	if st.CurrentIntent != models.IntentNone && isAbandon(t.text, st.CurrentIntent) {
		st.Reset()
		return outcome{reply: replyAbandoned, label: "abandoned"}
	}

	if st.CurrentIntent == models.IntentNone {
		if out, done := e.classify(ctx, t); done {
			return out
		}
	}

	switch st.CurrentIntent {
	case models.IntentBooking:
		return e.bookingFlow(ctx, t)
	case models.IntentRescheduling:
		return e.rescheduleFlow(ctx, t)
	case models.IntentCancellation:
		return e.cancellationFlow(ctx, t)
	case models.IntentInquiry:
		return e.inquiryFlow(ctx, t)
	}

	// Stored state carried an intent this engine does not serve.
	e.logger.Warn("Resetting conversation with unexpected intent",
		zap.String("user_id", t.userID), zap.String("intent", string(st.CurrentIntent)))
	st.Reset()
	return outcome{reply: e.helpReply(), label: "unknown"}
}

// classify sets the intent for a conversation that has none. done is true
// when the turn ends here.
func (e *Engine) classify(ctx context.Context, t *turn) (outcome, bool) {
	intent, err := e.classifier.ClassifyIntent(ctx, t.text)
	if err != nil {
		return e.unavailable(t, "classifier", err), true
	}

	st := t.state
	switch intent {
	case models.IntentBooking, models.IntentInquiry:
		st.CurrentIntent = intent
		t.fresh = true
		return outcome{}, false
	case models.IntentRescheduling, models.IntentCancellation:
		st.CurrentIntent = intent
		t.fresh = true
		if findBookingID(t.text) != "" {
			return outcome{}, false
		}
		return outcome{reply: refPrompt(intent, st.LastBookingRef)}, true
	}
	return outcome{reply: e.helpReply(), label: "unknown"}, true
}

func (e *Engine) unavailable(t *turn, collaborator string, err error) outcome {
	err = fmt.Errorf("%w: %s: %w", ErrCollaboratorUnavailable, collaborator, err)
	e.logger.Warn("Collaborator call failed",
		zap.String("user_id", t.userID),
		zap.String("collaborator", collaborator),
		zap.Error(err))
	utils.CollaboratorFailuresTotal.WithLabelValues(collaborator).Inc()
	return outcome{reply: replyUnavailable, kind: KindCollaboratorUnavailable, discard: true, err: err}
}
