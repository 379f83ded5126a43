package service

import (
	"context"
	"testing"
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/repository/memory"
	"smart-grocery-be/internal/seed"
	"smart-grocery-be/pkg/orchestrator"
	"smart-grocery-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLearnCuisines(t *testing.T) {
	tests := []struct {
		name     string
		current  []string
		liked    []string
		disliked []string
		want     []string
	}{
		{
			name:  "liked dishes add their cuisines once",
			liked: []string{"Pasta Marinara", "Veggie Curry", "Baked Lasagna"},
			want:  []string{"italian", "indian"},
		},
		{
			name:     "disliked dishes remove cuisines",
			current:  []string{"italian", "mexican"},
			disliked: []string{"Bean Tacos"},
			want:     []string{"italian"},
		},
		{
			name:    "at most five",
			current: []string{"italian", "mexican", "indian", "asian", "american"},
			liked:   []string{"Hummus Plate"},
			want:    []string{"italian", "mexican", "indian", "asian", "american"},
		},
		{
			name:    "unknown items change nothing",
			current: []string{"italian"},
			liked:   []string{"Bananas"},
			want:    []string{"italian"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LearnCuisines(tt.current, tt.liked, tt.disliked)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("LearnCuisines() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAppendPurchasesKeepsLastTen(t *testing.T) {
	past := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	got := AppendPurchases(past, []string{"i", " ", "j", "k", "l"})
	assert.Equal(t, []string{"c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}, got)
	assert.Len(t, past, 8, "input is not modified")
}

func TestFeedbackPipelineUpdatesProfile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	catalog := memory.NewCatalog(seed.Products(), seed.Recipes(), nil)
	require.NoError(t, catalog.SaveUserProfile(ctx, &entity.UserProfile{
		UserId:            "u1",
		Diet:              "vegan",
		PreferredCuisines: []string{"mexican"},
		PastPurchases:     []string{"Rice"},
	}))

	processed := make(chan string, 1)
	consumer := NewFeedbackConsumer(pubSub, "FEEDBACK_SUBMITTED", catalog, decimal.NewFromInt(50),
		logger.NewNopLogger(), WithProcessedNotify(processed))
	require.NoError(t, consumer.Consume(ctx))

	sink := NewFeedbackPublisher(pubSub, "FEEDBACK_SUBMITTED")
	require.NoError(t, sink.SubmitFeedback(ctx, orchestrator.FeedbackSubmission{
		SessionID: "s1",
		UserID:    "u1",
		Feedback: store.Feedback{
			Rating:   5,
			Liked:    []string{"Pasta Marinara"},
			Disliked: []string{"Black Bean Tacos"},
		},
		CartItems: []string{"Pasta", "Tomatoes"},
	}))

	select {
	case id := <-processed:
		assert.Equal(t, "s1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("feedback was not processed")
	}

	profile, err := catalog.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"italian"}, profile.PreferredCuisines)
	assert.Equal(t, []string{"Rice", "Pasta", "Tomatoes"}, profile.PastPurchases)
	assert.Equal(t, "vegan", profile.Diet)
	assert.NotNil(t, profile.UpdatedAt)
}

func TestFeedbackConsumerCreatesMissingProfile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	catalog := memory.NewCatalog(nil, nil, nil)
	processed := make(chan string, 1)
	consumer := NewFeedbackConsumer(pubSub, "fb", catalog, decimal.NewFromInt(40),
		logger.NewNopLogger(), WithProcessedNotify(processed))
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, NewFeedbackPublisher(pubSub, "fb").SubmitFeedback(ctx, orchestrator.FeedbackSubmission{
		SessionID: "s2",
		UserID:    "new-user",
		Feedback:  store.Feedback{Rating: 3, Liked: []string{"Chicken Stir Fry"}},
	}))

	select {
	case <-processed:
	case <-time.After(2 * time.Second):
		t.Fatal("feedback was not processed")
	}

	profile, err := catalog.GetUserProfile(ctx, "new-user")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "vegetarian", profile.Diet)
	assert.True(t, decimal.NewFromInt(40).Equal(profile.BudgetLimit))
	assert.Equal(t, []string{"asian", "american"}, profile.PreferredCuisines)
}
