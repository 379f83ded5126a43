// Package planner maps a request category to the ordered stages that serve it.
package planner

import (
	"errors"
	"fmt"
	"slices"

	"smart-grocery-be/pkg/intent"
)

var ErrPlanNotFound = errors.New("plan not found")

// Stage is one unit of pipeline work.
type Stage string

const (
	StageIntent             Stage = "intent"
	StagePreference         Stage = "preference"
	StageMealPlanner        Stage = "mealPlanner"
	StageProductRecommender Stage = "productRecommender"
	StageBasketBuilder      Stage = "basketBuilder"
	StageStockChecker       Stage = "stockChecker"
	StageGeneralQuery       Stage = "generalQuery"
	StageFeedback           Stage = "feedback"
)

// Stages lists every stage.
var Stages = []Stage{
	StageIntent,
	StagePreference,
	StageMealPlanner,
	StageProductRecommender,
	StageBasketBuilder,
	StageStockChecker,
	StageGeneralQuery,
	StageFeedback,
}

// Mutates reports whether the stage writes persisted user state.
func (s Stage) Mutates() bool {
	return s == StageBasketBuilder
}

// ExecutionPlan is derived solely from the request kind.
type ExecutionPlan struct {
	Category         intent.Category   `json:"category"`
	CartAction       intent.CartAction `json:"cart_action,omitempty"`
	Stages           []Stage           `json:"stages"`
	SkipConfirmation bool              `json:"skip_confirmation"`
	// ExplicitConsent marks plans whose request is itself the instruction to
	// mutate (cart commands), so the mutating stage needs no separate prompt.
	ExplicitConsent  bool              `json:"explicit_consent"`
	Complexity       intent.Complexity `json:"complexity"`
	Template         string            `json:"template"`
}

// Key returns the request kind the plan was built for.
func (p ExecutionPlan) Key() intent.Key {
	return intent.Key{Category: p.Category, CartAction: p.CartAction}
}

// Index returns the position of stage in the plan, or -1.
func (p ExecutionPlan) Index(stage Stage) int {
	return slices.Index(p.Stages, stage)
}

// Contains reports whether stage is part of the plan.
func (p ExecutionPlan) Contains(stage Stage) bool {
	return p.Index(stage) >= 0
}

type entry struct {
	stages           []Stage
	skipConfirmation bool
	explicitConsent  bool
	template         string
}

const defaultTemplate = "Here's what I found:"

var table = map[intent.Key]entry{
	{Category: intent.PriceInquiry}: {
		stages:           []Stage{StageGeneralQuery},
		skipConfirmation: true,
		template:         "Here's the pricing information you requested:",
	},
	{Category: intent.AvailabilityCheck}: {
		stages:           []Stage{StageGeneralQuery},
		skipConfirmation: true,
		template:         "Here's the availability status:",
	},
	{Category: intent.StoreNavigation}: {
		stages:           []Stage{StageGeneralQuery},
		skipConfirmation: true,
		template:         "Here's the store information:",
	},
	{Category: intent.PromotionInquiry}: {
		stages:           []Stage{StageStockChecker, StageGeneralQuery},
		skipConfirmation: true,
		template:         "Here are the available promotions:",
	},
	{Category: intent.SubstitutionRequest}: {
		stages:   []Stage{StageGeneralQuery, StageStockChecker},
		template: "Here are some substitute options:",
	},
	{Category: intent.DietaryFilter}: {
		stages:   []Stage{StageIntent, StagePreference, StageProductRecommender, StageFeedback},
		template: "Here are products matching your dietary preferences:",
	},
	{Category: intent.RecommendationRequest}: {
		stages:   []Stage{StageIntent, StagePreference, StageProductRecommender, StageFeedback},
		template: "Here are my product recommendations:",
	},
	{Category: intent.MealPlanning}: {
		stages:   []Stage{StageIntent, StagePreference, StageMealPlanner, StageBasketBuilder, StageStockChecker, StageFeedback},
		template: "Let me create a meal plan for you:",
	},
	{Category: intent.BasketBuilder}: {
		stages:   []Stage{StageIntent, StageBasketBuilder, StageStockChecker},
		template: "Here are the ingredients for your recipe:",
	},
	{Category: intent.CartOperation, CartAction: intent.CartAdd}: {
		stages:          []Stage{StageBasketBuilder},
		explicitConsent: true,
		template:        "Here's your updated cart:",
	},
	{Category: intent.CartOperation, CartAction: intent.CartDelete}: {
		stages:          []Stage{StageBasketBuilder},
		explicitConsent: true,
		template:        "Here's your updated cart:",
	},
	{Category: intent.CartOperation, CartAction: intent.CartClear}: {
		stages:          []Stage{StageBasketBuilder},
		explicitConsent: true,
		template:        "Your cart has been cleared.",
	},
	{Category: intent.CartOperation, CartAction: intent.CartView}: {
		stages:           []Stage{StageStockChecker},
		skipConfirmation: true,
		template:         "Here's what's in your cart:",
	},
	{Category: intent.GeneralQuery}: {
		stages:           []Stage{StageGeneralQuery},
		skipConfirmation: true,
		template:         "Here's the information you requested:",
	},
}

// For returns the plan for a request kind. A missing table entry yields the
// generalQuery plan together with an error wrapping ErrPlanNotFound; the plan
// is always usable.
func For(key intent.Key) (ExecutionPlan, error) {
	if key.Category != intent.CartOperation {
		key.CartAction = intent.CartNone
	}

	e, ok := table[key]
	if !ok {
		fallback := build(intent.Key{Category: intent.GeneralQuery}, table[intent.Key{Category: intent.GeneralQuery}])
		return fallback, fmt.Errorf("%w: %s", ErrPlanNotFound, key)
	}
	return build(key, e), nil
}

// ForCategory is For without a cart action.
func ForCategory(category intent.Category) (ExecutionPlan, error) {
	return For(intent.Key{Category: category})
}

func build(key intent.Key, e entry) ExecutionPlan {
	template := e.template
	if template == "" {
		template = defaultTemplate
	}
	return ExecutionPlan{
		Category:         key.Category,
		CartAction:       key.CartAction,
		Stages:           slices.Clone(e.stages),
		SkipConfirmation: e.skipConfirmation,
		ExplicitConsent:  e.explicitConsent,
		Complexity:       ComplexityOf(e.stages),
		Template:         template,
	}
}

// ComplexityOf tiers a stage list: complex for six or more stages or when meal
// planning feeds basket building, medium for four or five, simple otherwise.
func ComplexityOf(stages []Stage) intent.Complexity {
	if len(stages) >= 6 || (slices.Contains(stages, StageMealPlanner) && slices.Contains(stages, StageBasketBuilder)) {
		return intent.Complex
	}
	if len(stages) >= 4 {
		return intent.Medium
	}
	return intent.Simple
}
