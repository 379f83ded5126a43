package service

import (
	"context"
	"testing"
	"time"

	"smart-grocery-be/internal/dto"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/repository/memory"
	"smart-grocery-be/internal/seed"
	"smart-grocery-be/pkg/classifier"
	"smart-grocery-be/pkg/orchestrator"
	"smart-grocery-be/pkg/stage"
	"smart-grocery-be/pkg/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAssistant(t *testing.T) IAssistantService {
	t.Helper()
	catalog := memory.NewCatalog(seed.Products(), seed.Recipes(), seed.Promotions(time.Now()))
	registry := stage.NewRegistry(stage.Deps{
		Profiles:      catalog,
		Catalog:       catalog,
		Carts:         catalog,
		DefaultBudget: decimal.NewFromInt(50),
	})
	orch, err := orchestrator.New(classifier.NewRuleBased(), memory.NewSessionRepository(time.Hour), registry, logger.NewNopLogger())
	require.NoError(t, err)
	return NewAssistantService(orch, catalog, catalog, nil, logger.NewNopLogger())
}

func TestAssistantRequiresUser(t *testing.T) {
	svc := newAssistant(t)
	_, err := svc.SendMessage(context.Background(), "", &dto.SendMessageRequest{Text: "hi"})
	assert.ErrorIs(t, err, orchestrator.ErrInvalidMessage)

	_, err = svc.GetCart(context.Background(), "")
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestAssistantCartIsPricedWithPromotions(t *testing.T) {
	svc := newAssistant(t)
	ctx := context.Background()

	_, err := svc.SendMessage(ctx, "u1", &dto.SendMessageRequest{Text: "add bananas to cart"})
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "u1", &dto.SendMessageRequest{Text: "add milk to cart"})
	require.NoError(t, err)

	cart, err := svc.GetCart(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, "3.38", cart.Total, "milk is 20% off")
	require.NotNil(t, cart.Items[1].DiscountedPrice)
	assert.Equal(t, "2.79", cart.Items[1].DiscountedPrice.StringFixed(2))

	empty, err := svc.GetCart(ctx, "u2")
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, "0.00", empty.Total)
}

func TestAssistantSessionsAreScopedToTheirUser(t *testing.T) {
	svc := newAssistant(t)
	ctx := context.Background()

	resp, err := svc.SendMessage(ctx, "u1", &dto.SendMessageRequest{Text: "How much does milk cost?"})
	require.NoError(t, err)

	session, err := svc.GetSession(ctx, "u1", resp.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "priceInquiry", session.Category)
	assert.Equal(t, []string{"generalQuery"}, session.CompletedStages)
	assert.Equal(t, 1, session.StepNumber)

	_, err = svc.GetSession(ctx, "intruder", resp.SessionID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)
	assert.ErrorIs(t, svc.DeleteSession(ctx, "intruder", resp.SessionID), store.ErrSessionNotFound)

	require.NoError(t, svc.DeleteSession(ctx, "u1", resp.SessionID))
	_, err = svc.GetSession(ctx, "u1", resp.SessionID)
	assert.ErrorIs(t, err, store.ErrSessionNotFound)

	history, err := svc.GetHistory(ctx, "u1", resp.SessionID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
