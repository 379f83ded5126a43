package stage

import (
	"fmt"
	"strings"

	"smart-grocery-be/pkg/planner"
	"smart-grocery-be/pkg/store"
)

// Summarize renders the progress line shown after a stage completes.
func Summarize(s planner.Stage, a store.Artifacts) string {
	switch s {
	case planner.StageIntent:
		if it := a.Intent; it != nil {
			parts := []string{"Got it"}
			if it.MealCount > 0 {
				parts = append(parts, fmt.Sprintf("%d meals", it.MealCount))
			}
			if it.Diet != "" {
				parts = append(parts, it.Diet)
			}
			if it.Budget != nil {
				parts = append(parts, "budget "+money(*it.Budget))
			}
			return strings.Join(parts, ", ") + "."
		}
	case planner.StagePreference:
		if p := a.UserProfile; p != nil {
			return fmt.Sprintf("Using your preferences: %s diet, budget %s.", p.Diet, money(p.BudgetLimit))
		}
	case planner.StageMealPlanner:
		if r := a.Recipes; r != nil {
			if len(r.Recipes) == 0 {
				return "I couldn't find recipes that fit your preferences and budget."
			}
			titles := make([]string, len(r.Recipes))
			for i, rc := range r.Recipes {
				titles[i] = rc.Title
			}
			return fmt.Sprintf("I picked %d recipes for %s: %s.", len(r.Recipes), money(r.TotalCost), strings.Join(titles, ", "))
		}
	case planner.StageProductRecommender:
		if r := a.Recommendations; r != nil {
			return fmt.Sprintf("Found %d products matching your criteria.", len(r.Products))
		}
	case planner.StageBasketBuilder:
		if c := a.Cart; c != nil && c.Message != "" {
			return c.Message
		}
	case planner.StageStockChecker:
		if c := a.Cart; c != nil {
			return fmt.Sprintf("Checked stock and prices: %d items, total %s.", c.Cart.Count(), money(c.Cart.Total()))
		}
		if p := a.Promotions; p != nil {
			return fmt.Sprintf("Found %d current promotions available.", len(p.Promotions))
		}
	case planner.StageGeneralQuery:
		if g := a.GeneralResponse; g != nil {
			return g.Text
		}
	case planner.StageFeedback:
		return "Thanks for shopping with me."
	}
	return fmt.Sprintf("Finished %s.", s)
}
