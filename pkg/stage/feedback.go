package stage

import (
	"context"

	"smart-grocery-be/pkg/store"
)

// handleFeedback records what the user is about to rate.
func handleFeedback(_ context.Context, in Input) (store.Artifacts, error) {
	var items []string
	a := in.Artifacts
	if a.Recipes != nil {
		for _, r := range a.Recipes.Recipes {
			items = append(items, r.Title)
		}
	}
	if a.Recommendations != nil {
		for _, p := range a.Recommendations.Products {
			items = append(items, p.Name)
		}
	}
	return store.Artifacts{
		FeedbackContext: &store.FeedbackContext{Category: in.Plan.Category, Items: items},
	}, nil
}
