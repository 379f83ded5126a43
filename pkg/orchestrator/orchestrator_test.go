package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"smart-grocery-be/pkg/classifier"
	"smart-grocery-be/pkg/events"
	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/planner"
	"smart-grocery-be/pkg/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }
func intPtr(n int) *int    { return &n }

func TestMealPlanningConversation(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.send(t, "", "Plan 3 meals under $50")
	id := resp.SessionID
	s := h.stored(t, id)
	require.NotNil(t, s.Plan)
	assert.Equal(t, intent.MealPlanning, s.Plan.Category)
	if diff := cmp.Diff([]planner.Stage{
		planner.StageIntent, planner.StagePreference, planner.StageMealPlanner,
		planner.StageBasketBuilder, planner.StageStockChecker, planner.StageFeedback,
	}, s.Plan.Stages); diff != "" {
		t.Errorf("plan stages mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, intent.Complex, s.Plan.Complexity)
	assert.False(t, s.Plan.SkipConfirmation)

	// One stage per turn.
	assert.Equal(t, []planner.Stage{planner.StageIntent}, s.CompletedStages)
	assert.True(t, resp.RequiresInput)
	assert.Equal(t, "perStageExecuting(preference)", resp.Step)
	assert.Equal(t, 1, resp.StepNumber)

	resp = h.send(t, id, "continue")
	assert.Equal(t, "perStageExecuting(mealPlanner)", resp.Step)
	require.NotNil(t, resp.Data.UserProfile)

	resp = h.send(t, id, "continue")
	assert.Equal(t, string(store.StepAwaitingConfirmation), resp.Step)
	assert.True(t, resp.RequiresConfirmation)
	require.NotNil(t, resp.Data.Recipes)
	assert.True(t, resp.Data.Recipes.TotalCost.LessThanOrEqual(resp.Data.Recipes.Budget))
	assert.NotEmpty(t, resp.Data.Recipes.Recipes)
	assert.LessOrEqual(t, len(resp.Data.Recipes.Recipes), 3)
	cart, _ := h.catalog.GetCart(context.Background(), "u1")
	assert.Empty(t, cart.Items, "nothing is bought before confirmation")

	resp = h.send(t, id, "yes")
	assert.Equal(t, "perStageExecuting(stockChecker)", resp.Step)
	cart, _ = h.catalog.GetCart(context.Background(), "u1")
	assert.NotEmpty(t, cart.Items)
	assert.True(t, cart.Total().LessThanOrEqual(resp.Data.Recipes.Budget))

	resp = h.send(t, id, "continue")
	assert.Equal(t, "perStageExecuting(feedback)", resp.Step)

	resp = h.send(t, id, "continue")
	assert.Equal(t, string(store.StepFeedbackRating), resp.Step)
	assert.Contains(t, resp.Message, "Let me create a meal plan for you:")
	assert.Contains(t, resp.Message, "Shopping cart ready with")
	assert.True(t, strings.HasSuffix(resp.Message, ratingPrompt))

	resp = h.send(t, id, "seven")
	assert.Equal(t, string(store.StepFeedbackRating), resp.Step, "invalid rating keeps the question")

	h.send(t, id, "4 stars")
	h.send(t, id, "Pasta Marinara, Lentil Soup")
	h.send(t, id, "none")
	resp = h.send(t, id, "more vegan recipes please")
	assert.Equal(t, string(store.StepFeedbackComplete), resp.Step)
	assert.Equal(t, feedbackThanks, resp.Message)

	s = h.stored(t, id)
	assert.Equal(t, 4, s.Feedback.Rating)
	assert.Equal(t, []string{"Pasta Marinara", "Lentil Soup"}, s.Feedback.Liked)
	assert.Empty(t, s.Feedback.Disliked)
	assert.True(t, s.Feedback.Submitted)

	require.Len(t, h.sink.submissions, 1)
	sub := h.sink.submissions[0]
	assert.Equal(t, "more vegan recipes please", sub.Feedback.Suggestions)
	assert.NotEmpty(t, sub.CartItems)

	for st, ch := range h.handlers {
		assert.LessOrEqual(t, ch.count(), 1, "stage %s ran more than once", st)
	}
}

func TestPriceInquiryCompletesInOneTurn(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.send(t, "", "How much does milk cost?")
	s := h.stored(t, resp.SessionID)

	assert.Equal(t, intent.PriceInquiry, s.Plan.Category)
	assert.Equal(t, []planner.Stage{planner.StageGeneralQuery}, s.Plan.Stages)
	assert.True(t, s.Plan.SkipConfirmation)
	assert.Equal(t, string(store.StepTurnComplete), resp.Step)
	assert.False(t, resp.RequiresInput)
	assert.Equal(t, "Here's the pricing information you requested:\nMilk costs $3.49 per gallon.", resp.Message)
}

func TestCartAddThenView(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.send(t, "", "add bananas to cart")
	id := resp.SessionID
	assert.Equal(t, string(store.StepTurnComplete), resp.Step)
	assert.False(t, resp.RequiresConfirmation, "cart commands are their own consent")
	assert.Contains(t, resp.Message, "Great! I've added 1 Bananas to your cart.")

	resp = h.send(t, id, "view cart")
	s := h.stored(t, id)
	assert.Equal(t, intent.Key{Category: intent.CartOperation, CartAction: intent.CartView}, s.Plan.Key())
	assert.Equal(t, []planner.Stage{planner.StageStockChecker}, s.CompletedStages)
	assert.Equal(t, "Here's what's in your cart:\n- 1 x Bananas ($0.59)\nShopping cart ready with 1 items, total cost: $0.59", resp.Message)
	assert.Equal(t, 2, resp.StepNumber)

	assert.Equal(t, []string{
		events.TypeTurnCompleted, events.TypeCartUpdated,
		events.TypeTurnCompleted,
	}, h.publisher.types())
}

func TestReplanResetsProgressAndKeepsProfile(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.send(t, "", "Plan 3 meals under $50")
	id := resp.SessionID
	h.send(t, id, "continue")

	s := h.stored(t, id)
	require.Len(t, s.CompletedStages, 2)
	profile := s.Artifacts.UserProfile
	require.NotNil(t, profile)

	tr := &turn{session: s.Clone(), classification: classifier.Result{Category: intent.PriceInquiry}}
	h.o.replan(tr)
	assert.Empty(t, tr.session.CompletedStages)
	assert.Equal(t, intent.PriceInquiry, tr.session.Plan.Category)
	if diff := cmp.Diff(profile, tr.session.Artifacts.UserProfile); diff != "" {
		t.Errorf("profile changed across re-plan (-before +after):\n%s", diff)
	}
	assert.Nil(t, tr.session.Artifacts.Intent)

	resp = h.send(t, id, "How much does milk cost?")
	s = h.stored(t, id)
	assert.Equal(t, intent.PriceInquiry, s.Plan.Category)
	assert.Equal(t, []planner.Stage{planner.StageGeneralQuery}, s.CompletedStages)
	if diff := cmp.Diff(profile, s.Artifacts.UserProfile); diff != "" {
		t.Errorf("profile changed across re-plan (-before +after):\n%s", diff)
	}
	assert.Contains(t, resp.Message, "Milk costs $3.49")
}

func TestCompletedStageIsNotReplayed(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.send(t, "", "Plan 3 meals under $50")
	s := h.stored(t, resp.SessionID)
	before := s.Artifacts.Clone()

	tr := &turn{session: s, msg: Message{Text: "Plan 3 meals under $50"}}
	require.NoError(t, h.o.executeStage(context.Background(), tr, planner.StageIntent))

	assert.Equal(t, 1, h.handlers[planner.StageIntent].count())
	assert.Equal(t, []planner.Stage{planner.StageIntent}, s.CompletedStages)
	if diff := cmp.Diff(before, s.Artifacts); diff != "" {
		t.Errorf("artifacts changed on replay (-before +after):\n%s", diff)
	}

	err := h.o.executeStage(context.Background(), tr, planner.StageMealPlanner)
	assert.ErrorIs(t, err, ErrInvalidStateTransition, "stages cannot run out of plan order")
}

func TestStageFailureLeavesSessionUnchanged(t *testing.T) {
	h := newHarness(t, nil)

	resp := h.send(t, "", "Plan 3 meals under $50")
	id := resp.SessionID
	before := h.stored(t, id)

	h.handlers[planner.StagePreference].fails = 1
	_, err := h.o.AdvanceTurn(context.Background(), Message{SessionID: id, UserID: "u1", Text: "continue"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStageExecutionFailed)
	assert.ErrorIs(t, err, errBackendDown)
	var te *TurnError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, planner.StagePreference, te.Stage)

	after := h.stored(t, id)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("failed turn changed the session (-before +after):\n%s", diff)
	}

	resp = h.send(t, id, "continue")
	assert.Equal(t, "perStageExecuting(mealPlanner)", resp.Step)
	assert.Equal(t, 1, h.handlers[planner.StageIntent].count(), "earlier stages are not re-run")
	assert.Equal(t, 2, h.handlers[planner.StagePreference].count())
}

func TestRetryAfterFailedSaveDoesNotRepeatCartWrite(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	id := h.send(t, "", "add bananas to cart").SessionID
	before := h.stored(t, id)

	h.flaky.failNextPut()
	_, err := h.o.AdvanceTurn(ctx, Message{SessionID: id, UserID: "u1", Text: "add 2 apples to cart"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errStoreDown)
	if diff := cmp.Diff(before, h.stored(t, id)); diff != "" {
		t.Errorf("failed save changed the session (-before +after):\n%s", diff)
	}

	resp := h.send(t, id, "add 2 apples to cart")
	assert.Contains(t, resp.Message, "Great! I've added 2 Apples to your cart.")

	cart, err := h.catalog.GetCart(ctx, "u1")
	require.NoError(t, err)
	apples := cart.Items[cart.Find("P002")]
	assert.Equal(t, 2, apples.Quantity, "retried turn must not add the apples again")
	assert.Equal(t, 3, cart.Count())

	h.send(t, id, "add 2 apples to cart")
	cart, _ = h.catalog.GetCart(ctx, "u1")
	assert.Equal(t, 4, cart.Items[cart.Find("P002")].Quantity, "the next step is a new command")
}

func TestTimeoutLeavesPreTurnState(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.send(t, "", "Plan 3 meals under $50")
	id := resp.SessionID
	before := h.stored(t, id)

	slow, err := New(blockingClassifier{}, h.sessions, h.o.handlers, nil, WithTurnTimeout(30*time.Millisecond))
	require.NoError(t, err)

	_, err = slow.AdvanceTurn(context.Background(), Message{SessionID: id, UserID: "u1", Text: "How much does milk cost?"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTurnTimeout)

	if diff := cmp.Diff(before, h.stored(t, id)); diff != "" {
		t.Errorf("timed-out turn changed the session (-before +after):\n%s", diff)
	}
}

func TestDeclinedConfirmationCancelsPlan(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.send(t, "", "Plan 3 meals under $50")
	id := resp.SessionID
	h.send(t, id, "continue")
	resp = h.send(t, id, "continue")
	require.True(t, resp.RequiresConfirmation)

	resp, err := h.o.AdvanceTurn(context.Background(), Message{SessionID: id, UserID: "u1", Confirm: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, string(store.StepTurnComplete), resp.Step)
	assert.True(t, strings.HasSuffix(resp.Message, "Okay, I stopped before basketBuilder. Nothing else was changed."))
	require.NotNil(t, resp.Data.Cancellation)
	assert.Equal(t, 0, h.handlers[planner.StageBasketBuilder].count())

	cart, _ := h.catalog.GetCart(context.Background(), "u1")
	assert.Empty(t, cart.Items)
}

func TestAnswerOutsideWaitStateIsRejected(t *testing.T) {
	h := newHarness(t, nil)
	resp := h.send(t, "", "How much does milk cost?")
	id := resp.SessionID

	resp, err := h.o.AdvanceTurn(context.Background(), Message{SessionID: id, UserID: "u1", Confirm: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "There is nothing to confirm right now.", resp.Message)
	assert.Equal(t, 1, h.stored(t, id).StepNumber)

	resp = h.send(t, "", "Plan 3 meals under $50")
	id = resp.SessionID
	h.send(t, id, "continue")
	h.send(t, id, "continue")
	before := h.stored(t, id)

	resp, err = h.o.AdvanceTurn(context.Background(), Message{SessionID: id, UserID: "u1", Rating: intPtr(5)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.Message, "Please answer the current question: Shall I add the ingredients"))
	assert.True(t, resp.RequiresConfirmation)
	if diff := cmp.Diff(before, h.stored(t, id)); diff != "" {
		t.Errorf("rejected answer changed the session (-before +after):\n%s", diff)
	}

	resp = h.send(t, id, "plan 3 meals under $40")
	assert.True(t, strings.HasPrefix(resp.Message, "Please answer the current question:"), "same request repeats the question")

	resp = h.send(t, id, "Where can I find eggs?")
	assert.Equal(t, intent.StoreNavigation, resp.Category, "a different request re-plans")
	assert.Equal(t, "Here's the store information:\nEggs is in aisle 7.", resp.Message)
}

func TestUnknownSessionErrors(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.o.AdvanceTurn(context.Background(), Message{SessionID: "missing", UserID: "u1", Text: "hi"})
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	resp := h.send(t, "", "hi")
	_, err = h.o.AdvanceTurn(context.Background(), Message{SessionID: resp.SessionID, UserID: "someone-else", Text: "hi"})
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	_, err = h.o.AdvanceTurn(context.Background(), Message{Text: "hi"})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestOldestSessionIsReplaced(t *testing.T) {
	h := newHarness(t, nil, WithMaxSessionsPerUser(2))

	first := h.send(t, "", "hi").SessionID
	second := h.send(t, "", "hi").SessionID
	third := h.send(t, "", "hi").SessionID

	live, err := h.sessions.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, live, 2)

	_, err = h.sessions.Get(context.Background(), first)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	h.stored(t, second)
	h.stored(t, third)
}

func TestTurnsSerializePerSession(t *testing.T) {
	h := newHarness(t, nil)
	id := h.send(t, "", "add bananas to cart").SessionID

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.o.AdvanceTurn(context.Background(), Message{SessionID: id, UserID: "u1", Text: "add bananas to cart"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, n+1, h.stored(t, id).StepNumber)
	cart, _ := h.catalog.GetCart(context.Background(), "u1")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, n+1, cart.Items[0].Quantity)
	assert.Equal(t, 0, h.o.locks.size())
}

func TestInstancesShareSessionLock(t *testing.T) {
	locker := newSharedLocker()
	h := newHarness(t, nil, WithSessionLocker(locker))
	other, err := New(classifier.NewRuleBased(), h.flaky, h.registry, nil, WithSessionLocker(locker))
	require.NoError(t, err)
	id := h.send(t, "", "add bananas to cart").SessionID

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		o := h.o
		if i%2 == 1 {
			o = other
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := o.AdvanceTurn(context.Background(), Message{SessionID: id, UserID: "u1", Text: "add bananas to cart"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, n+1, h.stored(t, id).StepNumber)
	cart, _ := h.catalog.GetCart(context.Background(), "u1")
	require.Len(t, cart.Items, 1)
	assert.Equal(t, n+1, cart.Items[0].Quantity)
	held, taken := locker.counts()
	assert.Zero(t, held)
	assert.Equal(t, n+1, taken)
}

func TestSessionLockFailureLeavesSessionUntouched(t *testing.T) {
	locker := newSharedLocker()
	h := newHarness(t, nil, WithSessionLocker(locker))
	id := h.send(t, "", "add bananas to cart").SessionID
	before := h.stored(t, id)

	locker.err = errStoreDown
	_, err := h.o.AdvanceTurn(context.Background(), Message{SessionID: id, UserID: "u1", Text: "add bananas to cart"})
	require.ErrorIs(t, err, ErrSessionLock)
	require.ErrorIs(t, err, errStoreDown)

	assert.Equal(t, before.StepNumber, h.stored(t, id).StepNumber)
	cart, _ := h.catalog.GetCart(context.Background(), "u1")
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.Equal(t, 0, h.o.locks.size())
}

func TestSessionsRunInParallel(t *testing.T) {
	h := newHarness(t, nil, WithMaxSessionsPerUser(100))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := h.o.AdvanceTurn(context.Background(), Message{UserID: fmt.Sprintf("user-%d", i), Text: "How much does milk cost?"})
			if err == nil && resp.Step != string(store.StepTurnComplete) {
				err = fmt.Errorf("unexpected step %s", resp.Step)
			}
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestFeedbackSkipAndInterrupt(t *testing.T) {
	h := newHarness(t, nil)

	id := h.send(t, "", "recommend some vegan snacks").SessionID
	for i := 0; i < 3; i++ {
		h.send(t, id, "continue")
	}
	s := h.stored(t, id)
	require.Equal(t, store.StepFeedbackRating, s.CurrentStep)

	resp := h.send(t, id, "skip")
	assert.Equal(t, string(store.StepFeedbackComplete), resp.Step)
	assert.Empty(t, h.sink.submissions, "skipped feedback is not submitted")

	id = h.send(t, "", "recommend some vegan snacks").SessionID
	for i := 0; i < 3; i++ {
		h.send(t, id, "continue")
	}
	resp = h.send(t, id, "How much does milk cost?")
	assert.Equal(t, intent.PriceInquiry, resp.Category, "a new request leaves the rating question")
	assert.Equal(t, string(store.StepTurnComplete), resp.Step)
}
