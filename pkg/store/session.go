// Package store holds the conversation session record and the contract of
// the stores that keep it between turns.
package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"smart-grocery-be/pkg/planner"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// Step is the state-machine position of a session.
type Step string

const (
	StepConversationStart    Step = "conversationStart"
	StepStageExecuting       Step = "perStageExecuting"
	StepAwaitingConfirmation Step = "awaitingConfirmation"
	StepResponseCompiling    Step = "responseCompiling"
	StepTurnComplete         Step = "turnComplete"

	StepFeedbackRating      Step = "feedbackRatingRequested"
	StepFeedbackLiked       Step = "feedbackLikedRequested"
	StepFeedbackDisliked    Step = "feedbackDislikedRequested"
	StepFeedbackSuggestions Step = "feedbackSuggestionsRequested"
	StepFeedbackComplete    Step = "feedbackComplete"
)

// AwaitingFeedback reports whether the step belongs to the feedback sub-machine
// and still expects input.
func (s Step) AwaitingFeedback() bool {
	switch s {
	case StepFeedbackRating, StepFeedbackLiked, StepFeedbackDisliked, StepFeedbackSuggestions:
		return true
	}
	return false
}

// Session is the unit of conversational state.
type Session struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	CurrentStep     Step                   `json:"current_step"`
	PendingStage    planner.Stage          `json:"pending_stage,omitempty"`
	StepNumber      int                    `json:"step_number"`
	Plan            *planner.ExecutionPlan `json:"plan,omitempty"`
	CompletedStages []planner.Stage        `json:"completed_stages"`
	Artifacts       Artifacts              `json:"artifacts"`
	Feedback        Feedback               `json:"feedback"`
	CreatedAt       time.Time              `json:"created_at"`
	LastUpdatedAt   time.Time              `json:"last_updated_at"`
}

// NewSession starts a conversation for userID.
func NewSession(id, userID string, now time.Time) *Session {
	return &Session{
		ID:              id,
		UserID:          userID,
		CurrentStep:     StepConversationStart,
		CompletedStages: []planner.Stage{},
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}
}

// StepLabel renders the step for callers, including the pending stage.
func (s *Session) StepLabel() string {
	if s.CurrentStep == StepStageExecuting && s.PendingStage != "" {
		return string(s.CurrentStep) + "(" + string(s.PendingStage) + ")"
	}
	return string(s.CurrentStep)
}

// IsCompleted reports whether stage already ran in the current plan.
func (s *Session) IsCompleted(stage planner.Stage) bool {
	return slices.Contains(s.CompletedStages, stage)
}

// NextStage returns the first plan stage not yet completed.
func (s *Session) NextStage() (planner.Stage, bool) {
	if s.Plan == nil {
		return "", false
	}
	for _, st := range s.Plan.Stages {
		if !s.IsCompleted(st) {
			return st, true
		}
	}
	return "", false
}

// HasActivePlan reports whether the plan still has stages to run and the
// session has not been finished by a compile or a cancellation.
func (s *Session) HasActivePlan() bool {
	if s.Plan == nil || s.Artifacts.Cancellation != nil {
		return false
	}
	switch s.CurrentStep {
	case StepStageExecuting, StepAwaitingConfirmation:
		_, ok := s.NextStage()
		return ok
	}
	return false
}

// CompletedPrefixOK verifies that CompletedStages is a prefix of the plan.
func (s *Session) CompletedPrefixOK() bool {
	if s.Plan == nil {
		return len(s.CompletedStages) == 0
	}
	if len(s.CompletedStages) > len(s.Plan.Stages) {
		return false
	}
	for i, st := range s.CompletedStages {
		if s.Plan.Stages[i] != st {
			return false
		}
	}
	return true
}

// Clone returns a deep copy. Turns work on a clone and only a successful turn
// is written back.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.Plan != nil {
		p := *s.Plan
		p.Stages = slices.Clone(s.Plan.Stages)
		c.Plan = &p
	}
	c.CompletedStages = append([]planner.Stage{}, s.CompletedStages...)
	c.Artifacts = s.Artifacts.Clone()
	c.Feedback = s.Feedback.Clone()
	return &c
}

// SessionStore keeps sessions between turns. Get returns ErrSessionNotFound
// or ErrSessionExpired when no live session exists.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Session, error)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, sessionID string) error
	ListByUser(ctx context.Context, userID string) ([]*Session, error)
}

// SessionLocker grants one holder at a time per session across processes.
// Stores shared by several instances implement it next to SessionStore.
type SessionLocker interface {
	// LockSession blocks until the session is held or ctx is done. The
	// returned func releases the hold.
	LockSession(ctx context.Context, sessionID string) (func(), error)
}
