package stage

import (
	"context"

	"smart-grocery-be/pkg/store"
)

func handleIntent(_ context.Context, in Input) (store.Artifacts, error) {
	c := in.Classification
	return store.Artifacts{
		Intent: &store.IntentArtifact{
			Category:   c.Category,
			CartAction: c.CartAction,
			Budget:     c.ExtractedBudget,
			Product:    c.ExtractedProduct,
			Diet:       c.ExtractedDiet,
			MealCount:  c.MealCount,
			Quantity:   c.Quantity,
			Confidence: c.Confidence,
		},
	}, nil
}
