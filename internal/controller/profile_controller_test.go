package controller

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smart-grocery-be/internal/dto"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/pkg/serverutils"
	"smart-grocery-be/internal/repository/memory"
	"smart-grocery-be/internal/seed"
	"smart-grocery-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileApp() *fiber.App {
	catalog := memory.NewCatalog(seed.Products(), seed.Recipes(), seed.Promotions(time.Now()))
	svc := service.NewProfileService(catalog, decimal.NewFromInt(50), logger.NewNopLogger())

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	NewProfileController(svc, "").RegisterRoutes(app.Group("/api"))
	return app
}

type profileEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    dto.ProfileResponse `json:"data"`
}

func doProfile(t *testing.T, app *fiber.App, method, target, body string) (int, profileEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env profileEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestProfileRoutes(t *testing.T) {
	app := newProfileApp()

	code, env := doProfile(t, app, "GET", "/api/profile/v1?user_id=u1", "")
	require.Equal(t, 200, code)
	assert.Equal(t, "vegetarian", env.Data.Diet)

	code, env = doProfile(t, app, "PUT", "/api/profile/v1",
		`{"user_id":"u1","diet":"vegan","meal_goal":2,"allergies":["Peanuts"]}`)
	require.Equal(t, 200, code)
	assert.Equal(t, "Success update profile", env.Message)
	assert.Equal(t, "vegan", env.Data.Diet)
	assert.Equal(t, []string{"peanuts"}, env.Data.Allergies)

	code, env = doProfile(t, app, "GET", "/api/profile/v1?user_id=u1", "")
	require.Equal(t, 200, code)
	assert.Equal(t, "vegan", env.Data.Diet)
	assert.Equal(t, 2, env.Data.MealGoal)
	assert.Equal(t, "50.00", env.Data.BudgetLimit)
}

func TestProfileRejectsInvalidUpdates(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{"unknown diet", `{"user_id":"u1","diet":"carnivore"}`, 400},
		{"negative budget", `{"user_id":"u1","budget_limit":-5}`, 400},
		{"meal goal too high", `{"user_id":"u1","meal_goal":40}`, 400},
		{"unknown skill", `{"user_id":"u1","cooking_skill":"chef"}`, 400},
		{"blank cuisine", `{"user_id":"u1","preferred_cuisines":[""]}`, 400},
		{"malformed body", `{"user_id":`, 400},
		{"missing user", `{"diet":"vegan"}`, 400},
	}
	app := newProfileApp()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := doProfile(t, app, "PUT", "/api/profile/v1", tt.body)
			assert.Equal(t, tt.code, code)
			assert.False(t, env.Success)
		})
	}
}
