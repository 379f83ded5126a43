package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"smart-grocery-be/internal/dto"
	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/repository/memory"
	"smart-grocery-be/internal/seed"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfiles(t *testing.T) (IProfileService, *memory.Catalog) {
	t.Helper()
	catalog := memory.NewCatalog(seed.Products(), seed.Recipes(), seed.Promotions(time.Now()))
	return NewProfileService(catalog, decimal.NewFromInt(50), logger.NewNopLogger()), catalog
}

func strPtr(s string) *string { return &s }

func TestProfileDefaultsWithoutSaving(t *testing.T) {
	svc, catalog := newProfiles(t)
	ctx := context.Background()

	res, err := svc.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "vegetarian", res.Diet)
	assert.Equal(t, "50.00", res.BudgetLimit)
	assert.Equal(t, 3, res.MealGoal)
	assert.Equal(t, "beginner", res.CookingSkill)
	assert.NotNil(t, res.Allergies)

	stored, err := catalog.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, stored)

	_, err = svc.GetProfile(ctx, "")
	assert.ErrorIs(t, err, ErrUserRequired)
}

func TestProfileUpdateChangesOnlyGivenFields(t *testing.T) {
	svc, catalog := newProfiles(t)
	ctx := context.Background()
	require.NoError(t, catalog.SaveUserProfile(ctx, &entity.UserProfile{
		UserId:            "u1",
		Diet:              "vegan",
		BudgetLimit:       decimal.NewFromInt(40),
		MealGoal:          4,
		CookingSkill:      "advanced",
		PreferredCuisines: []string{"italian"},
		Allergies:         []string{"peanuts"},
		PastPurchases:     []string{"P001"},
	}))

	budget, goal := 72.5, 5
	res, err := svc.UpdateProfile(ctx, "u1", &dto.UpdateProfileRequest{
		BudgetLimit:       &budget,
		MealGoal:          &goal,
		PreferredCuisines: []string{" Mexican", "mexican", "Indian"},
	})
	require.NoError(t, err)
	assert.Equal(t, "vegan", res.Diet)
	assert.Equal(t, "72.50", res.BudgetLimit)
	assert.Equal(t, 5, res.MealGoal)
	assert.Equal(t, []string{"mexican", "indian"}, res.PreferredCuisines)
	assert.Equal(t, []string{"peanuts"}, res.Allergies)
	assert.Equal(t, []string{"P001"}, res.PastPurchases)
	assert.NotNil(t, res.UpdatedAt)

	res, err = svc.UpdateProfile(ctx, "u1", &dto.UpdateProfileRequest{Diet: strPtr("keto"), Allergies: []string{}})
	require.NoError(t, err)
	assert.Equal(t, "keto", res.Diet)
	assert.Empty(t, res.Allergies)

	stored, err := catalog.GetUserProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "keto", stored.Diet)
	assert.True(t, stored.BudgetLimit.Equal(decimal.RequireFromString("72.5")))
}

func TestProfileUpdateCreatesFromDefaults(t *testing.T) {
	svc, catalog := newProfiles(t)
	ctx := context.Background()

	_, err := svc.UpdateProfile(ctx, "u2", &dto.UpdateProfileRequest{CookingSkill: strPtr("intermediate")})
	require.NoError(t, err)

	stored, err := catalog.GetUserProfile(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "intermediate", stored.CookingSkill)
	assert.Equal(t, "vegetarian", stored.Diet)
	assert.Equal(t, 3, stored.MealGoal)
}

type failingProfiles struct{ *memory.Catalog }

var errProfilesDown = errors.New("profiles down")

func (failingProfiles) SaveUserProfile(context.Context, *entity.UserProfile) error {
	return errProfilesDown
}

func TestProfileUpdateReportsSaveFailure(t *testing.T) {
	_, catalog := newProfiles(t)
	svc := NewProfileService(failingProfiles{Catalog: catalog}, decimal.NewFromInt(50), logger.NewNopLogger())

	_, err := svc.UpdateProfile(context.Background(), "u1", &dto.UpdateProfileRequest{Diet: strPtr("vegan")})
	assert.ErrorIs(t, err, errProfilesDown)
}
