package planner

import (
	"errors"
	"testing"

	"smart-grocery-be/pkg/intent"

	"github.com/google/go-cmp/cmp"
)

func TestForCategory(t *testing.T) {
	tests := []struct {
		name           string
		key            intent.Key
		wantStages     []Stage
		wantSkip       bool
		wantComplexity intent.Complexity
	}{
		{
			name:           "meal planning",
			key:            intent.Key{Category: intent.MealPlanning},
			wantStages:     []Stage{StageIntent, StagePreference, StageMealPlanner, StageBasketBuilder, StageStockChecker, StageFeedback},
			wantSkip:       false,
			wantComplexity: intent.Complex,
		},
		{
			name:           "price inquiry",
			key:            intent.Key{Category: intent.PriceInquiry},
			wantStages:     []Stage{StageGeneralQuery},
			wantSkip:       true,
			wantComplexity: intent.Simple,
		},
		{
			name:           "dietary filter",
			key:            intent.Key{Category: intent.DietaryFilter},
			wantStages:     []Stage{StageIntent, StagePreference, StageProductRecommender, StageFeedback},
			wantSkip:       false,
			wantComplexity: intent.Medium,
		},
		{
			name:           "promotion inquiry",
			key:            intent.Key{Category: intent.PromotionInquiry},
			wantStages:     []Stage{StageStockChecker, StageGeneralQuery},
			wantSkip:       true,
			wantComplexity: intent.Simple,
		},
		{
			name:           "cart view",
			key:            intent.Key{Category: intent.CartOperation, CartAction: intent.CartView},
			wantStages:     []Stage{StageStockChecker},
			wantSkip:       true,
			wantComplexity: intent.Simple,
		},
		{
			name:           "cart add mutates",
			key:            intent.Key{Category: intent.CartOperation, CartAction: intent.CartAdd},
			wantStages:     []Stage{StageBasketBuilder},
			wantSkip:       false,
			wantComplexity: intent.Simple,
		},
		{
			name:           "cart action ignored outside cart operations",
			key:            intent.Key{Category: intent.PriceInquiry, CartAction: intent.CartAdd},
			wantStages:     []Stage{StageGeneralQuery},
			wantSkip:       true,
			wantComplexity: intent.Simple,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := For(tt.key)
			if err != nil {
				t.Fatalf("For(%s) error = %v", tt.key, err)
			}
			if diff := cmp.Diff(tt.wantStages, got.Stages); diff != "" {
				t.Errorf("stages mismatch (-want +got):\n%s", diff)
			}
			if got.SkipConfirmation != tt.wantSkip {
				t.Errorf("SkipConfirmation = %v, want %v", got.SkipConfirmation, tt.wantSkip)
			}
			if got.Complexity != tt.wantComplexity {
				t.Errorf("Complexity = %s, want %s", got.Complexity, tt.wantComplexity)
			}
		})
	}
}

func TestEveryCategoryHasAPlan(t *testing.T) {
	for _, c := range intent.Categories {
		key := intent.Key{Category: c}
		if c == intent.CartOperation {
			for _, a := range []intent.CartAction{intent.CartAdd, intent.CartDelete, intent.CartView, intent.CartClear} {
				if _, err := For(intent.Key{Category: c, CartAction: a}); err != nil {
					t.Errorf("For(%s(%s)) error = %v", c, a, err)
				}
			}
			continue
		}
		if _, err := For(key); err != nil {
			t.Errorf("For(%s) error = %v", c, err)
		}
	}
}

func TestForIsReferentiallyTransparent(t *testing.T) {
	for _, c := range intent.Categories {
		a, _ := ForCategory(c)
		b, _ := ForCategory(c)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("%s plans differ:\n%s", c, diff)
		}
		if len(a.Stages) > 0 {
			a.Stages[0] = StageFeedback
			c2, _ := ForCategory(c)
			if diff := cmp.Diff(b, c2); diff != "" {
				t.Errorf("%s plan shares state with callers:\n%s", c, diff)
			}
		}
	}
}

func TestUnknownKeyFallsBackToGeneralQuery(t *testing.T) {
	got, err := For(intent.Key{Category: intent.CartOperation})
	if !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
	if got.Category != intent.GeneralQuery || !got.SkipConfirmation {
		t.Errorf("fallback plan = %+v", got)
	}
	if diff := cmp.Diff([]Stage{StageGeneralQuery}, got.Stages); diff != "" {
		t.Errorf("fallback stages (-want +got):\n%s", diff)
	}
}

func TestMutatingPlansNeverSkipConfirmation(t *testing.T) {
	for key := range table {
		p, _ := For(key)
		for _, s := range p.Stages {
			if s.Mutates() && p.SkipConfirmation {
				t.Errorf("%s mutates but skips confirmation", key)
			}
		}
		if len(p.Stages) >= 4 && p.SkipConfirmation {
			t.Errorf("%s spans %d stages but skips confirmation", key, len(p.Stages))
		}
	}
}
