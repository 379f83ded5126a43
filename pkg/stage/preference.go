package stage

import (
	"context"
	"fmt"
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/store"

	"github.com/shopspring/decimal"
)

const (
	defaultDiet         = "vegetarian"
	defaultMealGoal     = 3
	defaultCookingSkill = "beginner"
)

type preferenceHandler struct {
	deps Deps
}

// Handle loads the profile, creating a default one on first use, and overlays
// the slots of the current request. The overlay is not persisted.
func (h *preferenceHandler) Handle(ctx context.Context, in Input) (store.Artifacts, error) {
	profile, err := h.deps.Profiles.GetUserProfile(ctx, in.UserID)
	if err != nil {
		return store.Artifacts{}, fmt.Errorf("load profile: %w", err)
	}

	if profile == nil {
		profile = DefaultProfile(in.UserID, h.deps.DefaultBudget, h.deps.Now())
		if err := h.deps.Profiles.SaveUserProfile(ctx, profile); err != nil {
			return store.Artifacts{}, fmt.Errorf("create profile: %w", err)
		}
		h.deps.Logger.Info("STAGE", "Created default profile", map[string]interface{}{
			"user_id": in.UserID,
		})
	}

	view := profile.Clone()
	if it := in.Artifacts.Intent; it != nil {
		if it.Diet != "" {
			view.Diet = it.Diet
		}
		if it.Budget != nil && it.Budget.IsPositive() {
			view.BudgetLimit = *it.Budget
		}
		if it.MealCount > 0 {
			view.MealGoal = it.MealCount
		}
	}

	return store.Artifacts{UserProfile: view}, nil
}

// DefaultProfile is the profile given to users seen for the first time.
func DefaultProfile(userID string, budget decimal.Decimal, now time.Time) *entity.UserProfile {
	return &entity.UserProfile{
		UserId:       userID,
		Diet:         defaultDiet,
		BudgetLimit:  budget,
		MealGoal:     defaultMealGoal,
		CookingSkill: defaultCookingSkill,
		CreatedAt:    now,
	}
}
