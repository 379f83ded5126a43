package orchestrator

import (
	"fmt"
	"strings"

	"smart-grocery-be/pkg/planner"
	"smart-grocery-be/pkg/store"
)

// compile renders the final response and closes the turn. Plans with a
// feedback stage continue into the rating question.
func (o *Orchestrator) compile(t *turn) *Response {
	s := t.session
	s.CurrentStep = store.StepResponseCompiling
	s.PendingStage = ""

	msg := compileMessage(s.Plan, s.Artifacts)
	s.CurrentStep = store.StepTurnComplete

	if s.Plan != nil && s.Plan.Contains(planner.StageFeedback) && s.Artifacts.Cancellation == nil {
		s.CurrentStep = store.StepFeedbackRating
		s.Feedback = store.Feedback{Context: s.Artifacts.FeedbackContext}
		return &Response{RequiresInput: true, Message: msg + "\n\n" + ratingPrompt}
	}
	return &Response{Message: msg}
}

// compileMessage joins, in a fixed order, the sections whose artifact is
// present: template, general answer, meal plan, recommendations, cart,
// promotions and finally the cancellation notice.
func compileMessage(plan *planner.ExecutionPlan, a store.Artifacts) string {
	var sections []string
	if plan != nil && plan.Template != "" {
		sections = append(sections, plan.Template)
	}
	if g := a.GeneralResponse; g != nil && g.Text != "" {
		sections = append(sections, g.Text)
	}
	if r := a.Recipes; r != nil && len(r.Recipes) > 0 {
		lines := make([]string, 0, len(r.Recipes)+1)
		for _, rc := range r.Recipes {
			lines = append(lines, fmt.Sprintf("- %s ($%s)", rc.Title, rc.TotalCost.StringFixed(2)))
		}
		lines = append(lines, fmt.Sprintf("Meal plan total: $%s of your $%s budget.", r.TotalCost.StringFixed(2), r.Budget.StringFixed(2)))
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if r := a.Recommendations; r != nil {
		lines := []string{fmt.Sprintf("Found %d products matching your criteria.", len(r.Products))}
		for _, p := range r.Products {
			lines = append(lines, fmt.Sprintf("- %s ($%s)", p.Name, p.Price.StringFixed(2)))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if c := a.Cart; c != nil {
		var lines []string
		if c.Message != "" {
			lines = append(lines, c.Message)
		}
		for _, it := range c.Cart.Items {
			line := fmt.Sprintf("- %d x %s ($%s)", it.Quantity, it.Name, it.LineTotal().StringFixed(2))
			if !it.InStock {
				line += " out of stock"
				if it.Replacement != "" {
					line += ", try " + it.Replacement
				}
			}
			lines = append(lines, line)
		}
		lines = append(lines, fmt.Sprintf("Shopping cart ready with %d items, total cost: $%s", c.Cart.Count(), c.Cart.Total().StringFixed(2)))
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if p := a.Promotions; p != nil {
		sections = append(sections, fmt.Sprintf("Found %d current promotions available.", len(p.Promotions)))
	}
	if c := a.Cancellation; c != nil {
		sections = append(sections, "Okay, I stopped before "+string(c.Stage)+". Nothing else was changed.")
	}
	return strings.Join(sections, "\n")
}
