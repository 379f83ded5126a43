package store

import (
	"testing"
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/planner"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func mealSession() *Session {
	plan, _ := planner.ForCategory(intent.MealPlanning)
	s := NewSession("s-1", "u-1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	s.Plan = &plan
	s.CompletedStages = []planner.Stage{planner.StageIntent, planner.StagePreference}
	s.CurrentStep = StepStageExecuting
	s.PendingStage = planner.StageMealPlanner
	s.Artifacts.UserProfile = &entity.UserProfile{UserId: "u-1", Diet: "vegan", PreferredCuisines: []string{"asian"}}
	s.Artifacts.Cart = &CartArtifact{Cart: entity.Cart{UserId: "u-1", Items: []entity.CartItem{{ItemId: "p1", Name: "Tofu", Price: decimal.NewFromInt(3), Quantity: 1}}}}
	s.Artifacts.Recipes = &RecipeArtifact{Recipes: []entity.Recipe{{Id: "r1", Title: "Stir Fry"}}}
	return s
}

func TestCloneIsDeep(t *testing.T) {
	s := mealSession()
	c := s.Clone()

	c.CompletedStages[0] = planner.StageFeedback
	c.Plan.Stages[0] = planner.StageFeedback
	c.Artifacts.UserProfile.PreferredCuisines[0] = "mexican"
	c.Artifacts.Cart.Cart.Items[0].Quantity = 9
	c.Artifacts.Recipes.Recipes[0].Title = "changed"

	assert.Equal(t, planner.StageIntent, s.CompletedStages[0])
	assert.Equal(t, planner.StageIntent, s.Plan.Stages[0])
	assert.Equal(t, "asian", s.Artifacts.UserProfile.PreferredCuisines[0])
	assert.Equal(t, 1, s.Artifacts.Cart.Cart.Items[0].Quantity)
	assert.Equal(t, "Stir Fry", s.Artifacts.Recipes.Recipes[0].Title)
}

func TestNextStageAndPrefix(t *testing.T) {
	s := mealSession()
	next, ok := s.NextStage()
	assert.True(t, ok)
	assert.Equal(t, planner.StageMealPlanner, next)
	assert.True(t, s.CompletedPrefixOK())
	assert.True(t, s.HasActivePlan())
	assert.Equal(t, "perStageExecuting(mealPlanner)", s.StepLabel())

	s.CompletedStages = []planner.Stage{planner.StageIntent, planner.StageMealPlanner}
	assert.False(t, s.CompletedPrefixOK())
}

func TestRetainedKeepsProfileAndCart(t *testing.T) {
	s := mealSession()
	kept := s.Artifacts.Retained()

	assert.Equal(t, s.Artifacts.UserProfile, kept.UserProfile)
	assert.NotNil(t, kept.Cart)
	assert.Nil(t, kept.Recipes)
	assert.Nil(t, kept.Intent)
}

func TestMergeOnlyOverwritesPresentFields(t *testing.T) {
	s := mealSession()
	s.Artifacts.Merge(Artifacts{GeneralResponse: &GeneralArtifact{Text: "hi"}})

	assert.NotNil(t, s.Artifacts.Recipes)
	assert.NotNil(t, s.Artifacts.UserProfile)
	assert.Equal(t, "hi", s.Artifacts.GeneralResponse.Text)
}
