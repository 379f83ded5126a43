package serverutils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"smart-grocery-be/pkg/orchestrator"
	"smart-grocery-be/pkg/planner"
	"smart-grocery-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found", fmt.Errorf("get: %w", store.ErrSessionNotFound), 404},
		{"expired", store.ErrSessionExpired, 410},
		{"stage failure", &orchestrator.TurnError{Kind: orchestrator.ErrStageExecutionFailed, Stage: planner.StageMealPlanner, Err: errors.New("db down")}, 503},
		{"timeout", &orchestrator.TurnError{Kind: orchestrator.ErrTurnTimeout, Err: context.DeadlineExceeded}, 503},
		{"session lock", &orchestrator.TurnError{Kind: orchestrator.ErrSessionLock, Err: errors.New("redis down")}, 503},
		{"invalid message", fmt.Errorf("%w: user id is required", orchestrator.ErrInvalidMessage), 400},
		{"validation", &ValidationError{Fields: []string{"Text failed on max"}}, 400},
		{"fiber", fiber.ErrUnprocessableEntity, 422},
		{"unknown", errors.New("boom"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := StatusFor(tt.err)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestErrorHandlerMiddlewareEnvelope(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/missing", func(ctx *fiber.Ctx) error { return store.ErrSessionNotFound })

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	var body Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.Success)
	assert.Equal(t, 404, body.Code)
	assert.Equal(t, "Session not found", body.Message)
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Text   string `validate:"max=5"`
		Rating *int   `validate:"omitempty,min=1,max=5"`
	}
	six := 6
	assert.NoError(t, ValidateRequest(req{Text: "hi"}))

	err := ValidateRequest(req{Text: "too long", Rating: &six})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Fields, 2)
}
