package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smart-grocery-be/internal/repository/memory"
	"smart-grocery-be/internal/seed"
	"smart-grocery-be/pkg/classifier"
	"smart-grocery-be/pkg/events"
	"smart-grocery-be/pkg/planner"
	"smart-grocery-be/pkg/stage"
	"smart-grocery-be/pkg/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

var start = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

// testClock ticks one second per call so session ordering is deterministic.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// countingHandler counts calls and can fail a number of times on demand.
type countingHandler struct {
	inner stage.Handler
	mu    sync.Mutex
	calls int
	fails int
}

var errBackendDown = errors.New("backend down")

func (h *countingHandler) Handle(ctx context.Context, in stage.Input) (store.Artifacts, error) {
	h.mu.Lock()
	h.calls++
	fail := h.fails > 0
	if fail {
		h.fails--
	}
	h.mu.Unlock()
	if fail {
		return store.Artifacts{}, errBackendDown
	}
	return h.inner.Handle(ctx, in)
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type recordingSink struct {
	mu          sync.Mutex
	submissions []FeedbackSubmission
}

func (s *recordingSink) SubmitFeedback(_ context.Context, sub FeedbackSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, sub)
	return nil
}

var errStoreDown = errors.New("store down")

// flakyStore fails the next failPuts calls to Put.
type flakyStore struct {
	store.SessionStore
	mu       sync.Mutex
	failPuts int
}

func (f *flakyStore) Put(ctx context.Context, s *store.Session) error {
	f.mu.Lock()
	fail := f.failPuts > 0
	if fail {
		f.failPuts--
	}
	f.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return f.SessionStore.Put(ctx, s)
}

func (f *flakyStore) failNextPut() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPuts++
}

// sharedLocker stands in for a lock service several orchestrators share.
type sharedLocker struct {
	km    *keyedMutex
	err   error
	mu    sync.Mutex
	held  int
	taken int
}

func newSharedLocker() *sharedLocker { return &sharedLocker{km: newKeyedMutex()} }

func (l *sharedLocker) LockSession(ctx context.Context, id string) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	unlock, err := l.km.Lock(ctx, id)
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.held++
	l.taken++
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		l.held--
		l.mu.Unlock()
		unlock()
	}, nil
}

func (l *sharedLocker) counts() (held, taken int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held, l.taken
}

// blockingClassifier waits for the turn deadline.
type blockingClassifier struct{}

func (blockingClassifier) Classify(ctx context.Context, _ string) (classifier.Result, error) {
	<-ctx.Done()
	return classifier.Result{}, ctx.Err()
}

type harness struct {
	o         *Orchestrator
	catalog   *memory.Catalog
	sessions  *memory.SessionRepository
	flaky     *flakyStore
	registry  stage.Registry
	handlers  map[planner.Stage]*countingHandler
	publisher *recordingPublisher
	sink      *recordingSink
}

func newHarness(t *testing.T, c classifier.Classifier, opts ...Option) *harness {
	t.Helper()
	clock := &testClock{t: start}
	catalog := memory.NewCatalog(seed.Products(), seed.Recipes(), seed.Promotions(start))
	sessions := memory.NewSessionRepository(time.Hour)

	base := stage.NewRegistry(stage.Deps{
		Profiles:      catalog,
		Catalog:       catalog,
		Carts:         catalog,
		DefaultBudget: decimal.NewFromInt(50),
		Now:           clock.Now,
	})
	h := &harness{
		catalog:   catalog,
		sessions:  sessions,
		flaky:     &flakyStore{SessionStore: sessions},
		handlers:  make(map[planner.Stage]*countingHandler),
		publisher: &recordingPublisher{},
		sink:      &recordingSink{},
	}
	reg := stage.Registry{}
	for st, inner := range base {
		ch := &countingHandler{inner: inner}
		h.handlers[st] = ch
		reg[st] = ch
	}

	if c == nil {
		c = classifier.NewRuleBased()
	}
	all := append([]Option{
		WithClock(clock.Now),
		WithPublisher(h.publisher),
		WithFeedbackSink(h.sink),
	}, opts...)
	o, err := New(c, h.flaky, reg, nil, all...)
	require.NoError(t, err)
	h.o = o
	h.registry = reg
	return h
}

func (h *harness) send(t *testing.T, sessionID, text string) *Response {
	t.Helper()
	resp, err := h.o.AdvanceTurn(context.Background(), Message{SessionID: sessionID, UserID: "u1", Text: text})
	require.NoError(t, err, "turn %q", text)
	return resp
}

func (h *harness) stored(t *testing.T, sessionID string) *store.Session {
	t.Helper()
	s, err := h.sessions.Get(context.Background(), sessionID)
	require.NoError(t, err)
	return s
}
