// Package orchestrator drives a shopping conversation: it classifies each
// message, plans the stages that serve it and executes them one turn at a
// time, with confirmation and feedback detours.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/pkg/classifier"
	"smart-grocery-be/pkg/events"
	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/planner"
	"smart-grocery-be/pkg/stage"
	"smart-grocery-be/pkg/store"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTurnTimeout        = 20 * time.Second
	DefaultMaxSessionsPerUser = 5
	eventTimeout              = 2 * time.Second
)

var tracer = otel.Tracer("smart-grocery-be/orchestrator")

// Message is one inbound user message. An empty SessionID starts a new
// conversation. Confirm and Rating are structured answers to the confirmation
// and rating questions.
type Message struct {
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
	Confirm   *bool  `json:"confirm,omitempty"`
	Rating    *int   `json:"rating,omitempty"`
}

type Response struct {
	SessionID            string          `json:"session_id"`
	Step                 string          `json:"step"`
	StepNumber           int             `json:"step_number"`
	Category             intent.Category `json:"category,omitempty"`
	RequiresConfirmation bool            `json:"requires_confirmation"`
	RequiresInput        bool            `json:"requires_input"`
	Message              string          `json:"message"`
	Data                 store.Artifacts `json:"data"`
}

// EventPublisher receives domain events after a turn is committed.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// FeedbackSubmission is handed to the FeedbackSink when a session finishes
// the feedback questions.
type FeedbackSubmission struct {
	SessionID string
	UserID    string
	Feedback  store.Feedback
	CartItems []string
}

type FeedbackSink interface {
	SubmitFeedback(ctx context.Context, submission FeedbackSubmission) error
}

type Option func(*Orchestrator)

func WithTurnTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.turnTimeout = d
		}
	}
}

func WithMaxSessionsPerUser(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxSessions = n
		}
	}
}

func WithPublisher(p EventPublisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

func WithFeedbackSink(s FeedbackSink) Option {
	return func(o *Orchestrator) { o.feedback = s }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(o *Orchestrator) { o.newID = newID }
}

// WithSessionLocker serializes turns across instances. When unset, the
// session store is used if it implements store.SessionLocker.
func WithSessionLocker(l store.SessionLocker) Option {
	return func(o *Orchestrator) { o.remote = l }
}

// Orchestrator owns all conversation state through its SessionStore.
type Orchestrator struct {
	classifier  classifier.Classifier
	sessions    store.SessionStore
	handlers    stage.Registry
	logger      logger.ILogger
	publisher   EventPublisher
	feedback    FeedbackSink
	locks       *keyedMutex
	remote      store.SessionLocker
	turnTimeout time.Duration
	maxSessions int
	now         func() time.Time
	newID       func() string
}

func New(c classifier.Classifier, sessions store.SessionStore, handlers stage.Registry, log logger.ILogger, opts ...Option) (*Orchestrator, error) {
	if c == nil || sessions == nil {
		return nil, errors.New("orchestrator: classifier and session store are required")
	}
	if err := handlers.Validate(); err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	o := &Orchestrator{
		classifier:  c,
		sessions:    sessions,
		handlers:    handlers,
		logger:      log,
		locks:       newKeyedMutex(),
		turnTimeout: DefaultTurnTimeout,
		maxSessions: DefaultMaxSessionsPerUser,
		now:         time.Now,
		newID:       uuid.NewString,
	}
	if l, ok := sessions.(store.SessionLocker); ok {
		o.remote = l
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// AdvanceTurn processes one message. The turn works on a copy of the session
// and stores it only when the turn succeeds, so a failed or timed-out turn
// leaves the session exactly as it was.
func (o *Orchestrator) AdvanceTurn(ctx context.Context, msg Message) (*Response, error) {
	if strings.TrimSpace(msg.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidMessage)
	}

	ctx, span := tracer.Start(ctx, "orchestrator.AdvanceTurn")
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, o.turnTimeout)
	defer cancel()

	sessionID := msg.SessionID
	isNew := sessionID == ""
	if isNew {
		sessionID = o.newID()
	}
	span.SetAttributes(attribute.String("session.id", sessionID), attribute.Bool("session.new", isNew))

	unlock, err := o.lockSession(ctx, sessionID)
	if err != nil {
		kind := ErrTurnTimeout
		if ctx.Err() == nil {
			kind = ErrSessionLock
		}
		return nil, o.fail(span, &TurnError{Kind: kind, Err: err})
	}
	defer unlock()

	var current *store.Session
	if isNew {
		if err := o.makeRoom(ctx, msg.UserID); err != nil {
			return nil, o.fail(span, err)
		}
		current = store.NewSession(sessionID, msg.UserID, o.now())
	} else {
		current, err = o.sessions.Get(ctx, sessionID)
		if err != nil {
			return nil, o.fail(span, err)
		}
		if current.UserID != msg.UserID {
			return nil, o.fail(span, store.ErrSessionNotFound)
		}
	}

	t := &turn{session: current.Clone(), msg: msg}
	resp, err := o.step(ctx, t)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		var te *TurnError
		if errors.Is(err, context.DeadlineExceeded) && !errors.As(err, &te) {
			err = &TurnError{Kind: ErrTurnTimeout, Err: err}
		} else if errors.As(err, &te) && errors.Is(te.Err, context.DeadlineExceeded) {
			te.Kind = ErrTurnTimeout
		}
		o.logger.Warn("ORCHESTRATOR", "Turn failed, session not advanced", map[string]interface{}{
			"session_id":  sessionID,
			"step_number": current.StepNumber,
			"step":        current.StepLabel(),
			"error":       err.Error(),
		})
		return nil, o.fail(span, err)
	}

	if t.unchanged && !isNew {
		return o.respond(current, resp), nil
	}

	s := t.session
	s.StepNumber++
	s.LastUpdatedAt = o.now()
	if err := o.sessions.Put(ctx, s); err != nil {
		return nil, o.fail(span, fmt.Errorf("save session: %w", err))
	}

	o.logger.Info("ORCHESTRATOR", "Turn committed", map[string]interface{}{
		"session_id":  s.ID,
		"step_number": s.StepNumber,
		"category":    string(t.classification.Category),
		"method":      string(t.classification.Method),
		"confidence":  t.classification.Confidence,
		"executed":    t.executed,
		"step":        s.StepLabel(),
	})
	span.SetAttributes(attribute.String("session.step", s.StepLabel()), attribute.Int("session.step_number", s.StepNumber))

	o.afterCommit(ctx, t)
	return o.respond(s, resp), nil
}

func (o *Orchestrator) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (o *Orchestrator) respond(s *store.Session, r *Response) *Response {
	r.SessionID = s.ID
	r.Step = s.StepLabel()
	r.StepNumber = s.StepNumber
	if s.Plan != nil {
		r.Category = s.Plan.Category
	}
	r.Data = s.Artifacts.Clone()
	return r
}

// makeRoom deletes the user's oldest sessions so a new one fits the limit.
func (o *Orchestrator) makeRoom(ctx context.Context, userID string) error {
	existing, err := o.sessions.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}
	if len(existing) < o.maxSessions {
		return nil
	}
	slices.SortFunc(existing, func(a, b *store.Session) int {
		return a.LastUpdatedAt.Compare(b.LastUpdatedAt)
	})
	for _, s := range existing[:len(existing)-o.maxSessions+1] {
		if err := o.sessions.Delete(ctx, s.ID); err != nil && !errors.Is(err, store.ErrSessionNotFound) {
			return fmt.Errorf("replace session %s: %w", s.ID, err)
		}
		o.logger.Info("ORCHESTRATOR", "Replaced oldest session", map[string]interface{}{
			"user_id":    userID,
			"session_id": s.ID,
		})
	}
	return nil
}

// afterCommit publishes events. Failures are logged and never undo the turn.
func (o *Orchestrator) afterCommit(ctx context.Context, t *turn) {
	s := t.session
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventTimeout)
	defer cancel()

	if o.publisher != nil {
		category := ""
		if s.Plan != nil {
			category = string(s.Plan.Category)
		}
		evs := []events.Event{events.TurnCompleted(s.ID, s.UserID, s.StepNumber, category, s.StepLabel(), o.now())}
		if slices.Contains(t.executed, planner.StageBasketBuilder) && s.Artifacts.Cart != nil {
			c := s.Artifacts.Cart.Cart
			evs = append(evs, events.CartUpdated(s.UserID, c.Count(), c.Total().StringFixed(2), o.now()))
		}
		for _, ev := range evs {
			if err := o.publisher.Publish(ctx, ev); err != nil {
				o.logger.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
					"type":  ev.EventType(),
					"error": err.Error(),
				})
			}
		}
	}

	if t.feedbackSubmitted && o.feedback != nil {
		sub := FeedbackSubmission{SessionID: s.ID, UserID: s.UserID, Feedback: s.Feedback.Clone()}
		if s.Artifacts.Cart != nil {
			for _, it := range s.Artifacts.Cart.Cart.Items {
				sub.CartItems = append(sub.CartItems, it.Name)
			}
		}
		if err := o.feedback.SubmitFeedback(ctx, sub); err != nil {
			o.logger.Warn("FEEDBACK", "Failed to submit feedback", map[string]interface{}{
				"session_id": s.ID,
				"error":      err.Error(),
			})
		}
	}
}

// Session returns a copy of the stored session.
func (o *Orchestrator) Session(ctx context.Context, sessionID string) (*store.Session, error) {
	s, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// EndSession deletes a conversation, waiting for any turn in flight.
func (o *Orchestrator) EndSession(ctx context.Context, sessionID string) error {
	unlock, err := o.lockSession(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()
	return o.sessions.Delete(ctx, sessionID)
}
