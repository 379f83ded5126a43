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

type recommenderHandler struct {
	deps Deps
}

func (h *recommenderHandler) Handle(ctx context.Context, in Input) (store.Artifacts, error) {
	diet := ""
	if in.Artifacts.Intent != nil {
		diet = in.Artifacts.Intent.Diet
	}
	profile := in.Artifacts.UserProfile
	if diet == "" && profile != nil {
		diet = profile.Diet
	}
	budget := budgetFor(in, h.deps)

	products, err := h.deps.Catalog.FindProducts(ctx, ProductFilter{
		Diet:        diet,
		MaxPrice:    &budget,
		InStockOnly: true,
	})
	if err != nil {
		return store.Artifacts{}, fmt.Errorf("find products: %w", err)
	}

	candidates := make([]selector.Candidate[entity.Product], len(products))
	for i, p := range products {
		candidates[i] = selector.Candidate[entity.Product]{
			ID:    p.ItemId,
			Price: p.Price,
			Rank:  matchCount(p, diet, profile),
			Item:  p,
		}
	}

	picked := selector.Select(candidates, budget, selector.WithMaxCount(h.deps.RecommendationLimit))
	return store.Artifacts{
		Recommendations: &store.RecommendationArtifact{
			Products:          picked.Items(),
			TotalCost:         picked.TotalCost,
			DietaryPreference: diet,
		},
	}, nil
}

// matchCount counts how many of the user's signals a product satisfies.
func matchCount(p entity.Product, diet string, profile *entity.UserProfile) float64 {
	var n float64
	if diet != "" && p.MatchesDiet(diet) {
		n++
	}
	if profile == nil {
		return n
	}
	if profile.Diet != "" && !strings.EqualFold(profile.Diet, diet) && p.MatchesDiet(profile.Diet) {
		n++
	}
	if slices.ContainsFunc(profile.PastPurchases, func(s string) bool { return strings.EqualFold(s, p.Name) }) {
		n++
	}
	return n
}
