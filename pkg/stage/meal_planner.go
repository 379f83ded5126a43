package stage

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/selector"
	"smart-grocery-be/pkg/store"
)

// compatibleDiets lists the recipe diets acceptable for a profile diet. A nil
// result means every diet is acceptable.
var compatibleDiets = map[string][]string{
	"low-carb":      {"low-carb", "keto", "low-fat"},
	"keto":          {"keto", "low-carb"},
	"paleo":         {"paleo", "high-protein", "gluten-free"},
	"mediterranean": {"mediterranean", "vegetarian", "low-fat"},
	"dairy-free":    {"dairy-free", "vegan", "gluten-free"},
	"vegan":         {"vegan"},
	"vegetarian":    {"vegetarian", "vegan"},
	"gluten-free":   {"gluten-free"},
	"omnivore":      nil,
}

func dietsFor(diet string) []string {
	diet = strings.ToLower(strings.TrimSpace(diet))
	if diet == "" {
		return nil
	}
	if d, ok := compatibleDiets[diet]; ok {
		return d
	}
	return []string{diet}
}

const maxBeginnerIngredients = 8

var complexTechniques = []string{"sous vide", "souffle", "soufflé", "confit", "flambe", "tempering", "braise", "beef wellington", "croissant"}

type mealPlannerHandler struct {
	deps Deps
}

func (h *mealPlannerHandler) Handle(ctx context.Context, in Input) (store.Artifacts, error) {
	profile := in.Artifacts.UserProfile
	if profile == nil {
		profile = &entity.UserProfile{UserId: in.UserID, Diet: defaultDiet, CookingSkill: defaultCookingSkill}
	}
	budget := budgetFor(in, h.deps)

	recipes, err := h.deps.Catalog.FindRecipes(ctx, RecipeFilter{
		Diets:   dietsFor(profile.Diet),
		MaxCost: &budget,
	})
	if err != nil {
		return store.Artifacts{}, fmt.Errorf("find recipes: %w", err)
	}

	candidates := make([]selector.Candidate[entity.Recipe], 0, len(recipes))
	for _, r := range recipes {
		if hasAllergen(r, profile.Allergies) || !suitsSkill(r, profile.CookingSkill) {
			continue
		}
		candidates = append(candidates, selector.Candidate[entity.Recipe]{
			ID:    r.Id,
			Price: r.TotalCost,
			Rank:  preferenceScore(r, profile),
			Item:  r,
		})
	}

	meals := mealGoalFor(in, profile)
	picked := selector.Select(candidates, budget, selector.WithMaxCount(meals))
	h.deps.Logger.Debug("STAGE", "Meal plan selected", map[string]interface{}{
		"candidates": len(candidates),
		"meal_goal":  meals,
		"selected":   len(picked.Selected),
		"total":      picked.TotalCost.String(),
		"budget":     budget.String(),
	})

	return store.Artifacts{
		Recipes: &store.RecipeArtifact{
			Recipes:   picked.Items(),
			TotalCost: picked.TotalCost,
			Budget:    budget,
		},
	}, nil
}

// mealGoalFor prefers the count asked for in the message over the profile's
// goal. Zero leaves the plan bounded by budget alone.
func mealGoalFor(in Input, profile *entity.UserProfile) int {
	if it := in.Artifacts.Intent; it != nil && it.MealCount > 0 {
		return it.MealCount
	}
	return max(profile.MealGoal, 0)
}

func hasAllergen(r entity.Recipe, allergies []string) bool {
	for _, a := range allergies {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		for _, ing := range r.Ingredients {
			if strings.Contains(strings.ToLower(ing), a) {
				return true
			}
		}
	}
	return false
}

func suitsSkill(r entity.Recipe, skill string) bool {
	if !strings.EqualFold(skill, "beginner") {
		return true
	}
	if len(r.Ingredients) > maxBeginnerIngredients {
		return false
	}
	text := strings.ToLower(r.Title + " " + strings.Join(r.Tags, " "))
	for _, tech := range complexTechniques {
		if strings.Contains(text, tech) {
			return false
		}
	}
	return true
}

// preferenceScore ranks preferred cuisines first, then exact diet matches.
func preferenceScore(r entity.Recipe, p *entity.UserProfile) float64 {
	var score float64
	for _, c := range p.PreferredCuisines {
		if strings.EqualFold(c, r.Cuisine) {
			score += 2
			break
		}
	}
	if p.Diet != "" && slices.Contains(r.Diets, strings.ToLower(p.Diet)) {
		score++
	}
	return score
}
