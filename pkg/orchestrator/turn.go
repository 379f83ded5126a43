package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smart-grocery-be/pkg/classifier"
	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/planner"
	"smart-grocery-be/pkg/stage"
	"smart-grocery-be/pkg/store"

	"go.opentelemetry.io/otel/attribute"
)

// turn is the working state of one AdvanceTurn call.
type turn struct {
	session        *store.Session
	msg            Message
	classification classifier.Result
	confirmed      planner.Stage
	executed       []planner.Stage
	// unchanged marks turns that must not be stored, such as answers given
	// to a question that is not being asked.
	unchanged         bool
	feedbackSubmitted bool
}

var continuationPhrases = map[string]bool{
	"continue": true, "next": true, "go on": true, "ok": true, "okay": true, "proceed": true,
}

var (
	yesPhrases = map[string]bool{"yes": true, "y": true, "yeah": true, "yep": true, "sure": true, "confirm": true, "go ahead": true, "do it": true}
	noPhrases  = map[string]bool{"no": true, "n": true, "nope": true, "cancel": true, "stop": true, "don't": true, "dont": true}
)

func normalize(text string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(text)), ".!? ")
}

func (o *Orchestrator) step(ctx context.Context, t *turn) (*Response, error) {
	s := t.session

	switch {
	case s.CurrentStep == store.StepAwaitingConfirmation:
		if t.msg.Rating != nil {
			return o.rejectInput(t), nil
		}
		return o.onConfirmation(ctx, t)
	case s.CurrentStep.AwaitingFeedback():
		if t.msg.Confirm != nil || (t.msg.Rating != nil && s.CurrentStep != store.StepFeedbackRating) {
			return o.rejectInput(t), nil
		}
		if s.CurrentStep == store.StepFeedbackRating && t.msg.Rating == nil {
			return o.onRatingText(ctx, t)
		}
		return o.onFeedback(t), nil
	}

	if t.msg.Confirm != nil || t.msg.Rating != nil {
		return o.rejectInput(t), nil
	}

	// Continuation only applies once the plan has made progress, so a retry
	// of a failed first stage still sees a fresh classification.
	text := strings.TrimSpace(t.msg.Text)
	if s.HasActivePlan() && len(s.CompletedStages) > 0 && (text == "" || continuationPhrases[normalize(text)]) {
		return o.advance(ctx, t)
	}

	if err := o.classify(ctx, t); err != nil {
		return nil, err
	}
	if !s.HasActivePlan() || s.Plan.Key() != t.classification.Key() {
		o.replan(t)
	}
	return o.advance(ctx, t)
}

// classify runs the classifier on the message text of this turn only.
func (o *Orchestrator) classify(ctx context.Context, t *turn) error {
	ctx, span := tracer.Start(ctx, "orchestrator.classify")
	defer span.End()

	res, err := o.classifier.Classify(ctx, t.msg.Text)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &TurnError{Kind: ErrTurnTimeout, Err: ctxErr}
		}
		o.logger.Warn("CLASSIFIER", "Classification failed, using general query", map[string]interface{}{
			"session_id": t.session.ID,
			"error":      err.Error(),
			"ambiguous":  errors.Is(err, classifier.ErrClassificationAmbiguous),
		})
		res = classifier.Default()
	}
	t.classification = res
	span.SetAttributes(
		attribute.String("classification.category", string(res.Category)),
		attribute.String("classification.method", string(res.Method)),
		attribute.Float64("classification.confidence", res.Confidence),
	)
	return nil
}

// replan replaces the plan for a new request kind. Stage progress and
// per-plan artifacts are dropped; the profile and cart survive.
func (o *Orchestrator) replan(t *turn) {
	s := t.session
	key := t.classification.Key()
	plan, err := planner.For(key)
	if err != nil {
		o.logger.Warn("ORCHESTRATOR", "No plan for category, using general query plan", map[string]interface{}{
			"key":   key.String(),
			"error": err.Error(),
		})
	}

	if s.Plan != nil {
		o.logger.Info("ORCHESTRATOR", "Re-planning session", map[string]interface{}{
			"session_id": s.ID,
			"from":       s.Plan.Key().String(),
			"to":         plan.Key().String(),
			"completed":  len(s.CompletedStages),
		})
	}

	s.Plan = &plan
	s.CompletedStages = []planner.Stage{}
	s.Artifacts = s.Artifacts.Retained()
	s.Feedback = store.Feedback{}
	s.PendingStage = ""
	s.CurrentStep = store.StepStageExecuting
}

// onRatingText lets a new request interrupt the rating question. Text that is
// neither a rating nor a recognisable request gets the rating prompt again.
func (o *Orchestrator) onRatingText(ctx context.Context, t *turn) (*Response, error) {
	text := normalize(t.msg.Text)
	if _, ok := parseRating(t.msg); ok || text == "" || text == "skip" {
		return o.onFeedback(t), nil
	}
	if err := o.classify(ctx, t); err != nil {
		return nil, err
	}
	if t.classification.Category == intent.GeneralQuery {
		return o.onFeedback(t), nil
	}
	t.session.CurrentStep = store.StepFeedbackComplete
	o.replan(t)
	return o.advance(ctx, t)
}

func needsConfirmation(p *planner.ExecutionPlan, st planner.Stage) bool {
	return !p.SkipConfirmation && st.Mutates() && !p.ExplicitConsent
}

// advance executes exactly one stage, then either pauses for the next turn or
// compiles the response when the plan is done.
func (o *Orchestrator) advance(ctx context.Context, t *turn) (*Response, error) {
	s := t.session
	next, ok := s.NextStage()
	if !ok {
		return o.compile(t), nil
	}

	if needsConfirmation(s.Plan, next) && t.confirmed != next {
		return o.askConfirmation(t, next, ""), nil
	}

	if err := o.executeStage(ctx, t, next); err != nil {
		return nil, err
	}
	progress := stage.Summarize(next, s.Artifacts)

	following, ok := s.NextStage()
	if !ok {
		return o.compile(t), nil
	}
	if needsConfirmation(s.Plan, following) {
		return o.askConfirmation(t, following, progress), nil
	}

	s.CurrentStep = store.StepStageExecuting
	s.PendingStage = following
	return &Response{
		RequiresInput: true,
		Message:       progress + "\n" + continuePrompt,
	}, nil
}

// executeStage runs st unless it already completed in this plan. Handlers see
// a private copy of the artifacts; their output is merged only on success.
func (o *Orchestrator) executeStage(ctx context.Context, t *turn, st planner.Stage) error {
	s := t.session
	if s.IsCompleted(st) {
		o.logger.Debug("ORCHESTRATOR", "Stage already completed, skipping", map[string]interface{}{
			"session_id": s.ID,
			"stage":      string(st),
		})
		return nil
	}
	if s.Plan.Index(st) != len(s.CompletedStages) {
		return &TurnError{
			Kind:  ErrInvalidStateTransition,
			Stage: st,
			Err:   fmt.Errorf("stage is not next in plan %v after %v", s.Plan.Stages, s.CompletedStages),
		}
	}

	ctx, span := tracer.Start(ctx, "stage."+string(st))
	defer span.End()

	s.CurrentStep = store.StepStageExecuting
	s.PendingStage = st

	delta, err := o.handlers[st].Handle(ctx, stage.Input{
		SessionID:      s.ID,
		UserID:         s.UserID,
		Text:           t.msg.Text,
		Classification: t.classification,
		Plan:           *s.Plan,
		Artifacts:      s.Artifacts.Clone(),
		StepNumber:     s.StepNumber,
	})
	if err != nil {
		span.RecordError(err)
		o.logger.Error("STAGE", "Stage failed", map[string]interface{}{
			"session_id": s.ID,
			"stage":      string(st),
			"error":      err.Error(),
		})
		return &TurnError{Kind: ErrStageExecutionFailed, Stage: st, Err: err}
	}

	s.Artifacts.Merge(delta)
	s.CompletedStages = append(s.CompletedStages, st)
	t.executed = append(t.executed, st)
	o.logger.Debug("STAGE", "Stage completed", map[string]interface{}{
		"session_id": s.ID,
		"stage":      string(st),
	})
	return nil
}

func (o *Orchestrator) askConfirmation(t *turn, st planner.Stage, progress string) *Response {
	s := t.session
	s.CurrentStep = store.StepAwaitingConfirmation
	s.PendingStage = st

	msg := confirmationQuestion(s)
	if progress != "" {
		msg = progress + "\n" + msg
	}
	return &Response{RequiresConfirmation: true, RequiresInput: true, Message: msg}
}

func (o *Orchestrator) onConfirmation(ctx context.Context, t *turn) (*Response, error) {
	s := t.session
	answer, ok := confirmation(t.msg)
	if !ok {
		if strings.TrimSpace(t.msg.Text) == "" {
			return o.rejectInput(t), nil
		}
		if err := o.classify(ctx, t); err != nil {
			return nil, err
		}
		if t.classification.Key() == s.Plan.Key() {
			return o.rejectInput(t), nil
		}
		o.replan(t)
		return o.advance(ctx, t)
	}

	if !answer {
		s.Artifacts.Cancellation = &store.CancellationArtifact{Stage: s.PendingStage, Reason: "declined by user"}
		o.logger.Info("ORCHESTRATOR", "Plan cancelled at confirmation", map[string]interface{}{
			"session_id": s.ID,
			"stage":      string(s.PendingStage),
		})
		return o.compile(t), nil
	}

	t.confirmed = s.PendingStage
	return o.advance(ctx, t)
}

func confirmation(msg Message) (bool, bool) {
	if msg.Confirm != nil {
		return *msg.Confirm, true
	}
	text := normalize(msg.Text)
	if yesPhrases[text] {
		return true, true
	}
	if noPhrases[text] {
		return false, true
	}
	return false, false
}

// rejectInput answers input that does not fit the current step. The session
// is left untouched.
func (o *Orchestrator) rejectInput(t *turn) *Response {
	t.unchanged = true
	s := t.session
	o.logger.Debug("ORCHESTRATOR", "Rejected input for current step", map[string]interface{}{
		"session_id": s.ID,
		"step":       s.StepLabel(),
		"error":      ErrInvalidStateTransition.Error(),
	})

	q := currentQuestion(s)
	if q == "" {
		return &Response{Message: "There is nothing to confirm right now."}
	}
	return &Response{
		RequiresConfirmation: s.CurrentStep == store.StepAwaitingConfirmation,
		RequiresInput:        true,
		Message:              "Please answer the current question: " + q,
	}
}

func currentQuestion(s *store.Session) string {
	switch s.CurrentStep {
	case store.StepAwaitingConfirmation:
		return confirmationQuestion(s)
	case store.StepFeedbackRating:
		return ratingPrompt
	case store.StepFeedbackLiked:
		return likedPrompt
	case store.StepFeedbackDisliked:
		return dislikedPrompt
	case store.StepFeedbackSuggestions:
		return suggestionsPrompt
	}
	return ""
}

const continuePrompt = `Say "continue" for the next step.`

func confirmationQuestion(s *store.Session) string {
	if r := s.Artifacts.Recipes; r != nil && len(r.Recipes) > 0 {
		return fmt.Sprintf("Shall I add the ingredients for these %d recipes to your cart? (yes/no)", len(r.Recipes))
	}
	return "Shall I update your cart? (yes/no)"
}
