package memory

import (
	"context"
	"testing"
	"time"

	"smart-grocery-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("github.com/patrickmn/go-cache.(*janitor).Run"))
}

func TestSessionRepositoryPutGet(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	ctx := context.Background()

	s := store.NewSession("s1", "u1", time.Now())
	require.NoError(t, repo.Put(ctx, s))

	s.StepNumber = 99 // the store keeps its own copy
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.StepNumber)

	got.StepNumber = 5
	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, again.StepNumber)

	_, err = repo.Get(ctx, "nope")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
}

func TestSessionRepositoryExpiry(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, store.NewSession("s1", "u1", time.Now())))

	time.Sleep(40 * time.Millisecond)
	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, store.ErrSessionExpired)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSessionRepositoryDeleteAndList(t *testing.T) {
	repo := NewSessionRepository(time.Minute)
	ctx := context.Background()
	for _, id := range []string{"a", "b"} {
		require.NoError(t, repo.Put(ctx, store.NewSession(id, "u1", time.Now())))
	}
	require.NoError(t, repo.Put(ctx, store.NewSession("c", "u2", time.Now())))

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, repo.Delete(ctx, "a"))
	assert.ErrorIs(t, repo.Delete(ctx, "a"), store.ErrSessionNotFound)
	_, err = repo.Get(ctx, "a")
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	list, err = repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)
}
