package store

import (
	"slices"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/planner"

	"github.com/shopspring/decimal"
)

type IntentArtifact struct {
	Category   intent.Category   `json:"category"`
	CartAction intent.CartAction `json:"cart_action,omitempty"`
	Budget     *decimal.Decimal  `json:"budget,omitempty"`
	Product    string            `json:"product,omitempty"`
	Diet       string            `json:"diet,omitempty"`
	MealCount  int               `json:"meal_count,omitempty"`
	Quantity   int               `json:"quantity,omitempty"`
	Confidence float64           `json:"confidence"`
}

type RecipeArtifact struct {
	Recipes   []entity.Recipe `json:"recipes"`
	TotalCost decimal.Decimal `json:"total_cost"`
	Budget    decimal.Decimal `json:"budget"`
}

type RecommendationArtifact struct {
	Products          []entity.Product `json:"products"`
	TotalCost         decimal.Decimal  `json:"total_cost"`
	DietaryPreference string           `json:"dietary_preference,omitempty"`
}

type CartArtifact struct {
	Cart    entity.Cart `json:"cart"`
	Message string      `json:"message,omitempty"`
	Missing []string    `json:"missing,omitempty"`
}

type GeneralArtifact struct {
	Text     string           `json:"text"`
	Products []entity.Product `json:"products,omitempty"`
}

type PromotionArtifact struct {
	Promotions []entity.Promotion `json:"promotions"`
}

type FeedbackContext struct {
	Category intent.Category `json:"category"`
	Items    []string        `json:"items,omitempty"`
}

type CancellationArtifact struct {
	Stage  planner.Stage `json:"stage"`
	Reason string        `json:"reason"`
}

// Artifacts maps each stage to what it produced. A nil field means the stage
// has not produced anything in the current plan.
type Artifacts struct {
	Intent          *IntentArtifact         `json:"intent,omitempty"`
	UserProfile     *entity.UserProfile     `json:"user_profile,omitempty"`
	Recipes         *RecipeArtifact         `json:"recipes,omitempty"`
	Recommendations *RecommendationArtifact `json:"recommendations,omitempty"`
	Cart            *CartArtifact           `json:"cart,omitempty"`
	GeneralResponse *GeneralArtifact        `json:"general_response,omitempty"`
	Promotions      *PromotionArtifact      `json:"promotions,omitempty"`
	FeedbackContext *FeedbackContext        `json:"feedback_context,omitempty"`
	Cancellation    *CancellationArtifact   `json:"cancellation,omitempty"`
}

// Merge copies every non-nil field of delta into a.
func (a *Artifacts) Merge(delta Artifacts) {
	if delta.Intent != nil {
		a.Intent = delta.Intent
	}
	if delta.UserProfile != nil {
		a.UserProfile = delta.UserProfile
	}
	if delta.Recipes != nil {
		a.Recipes = delta.Recipes
	}
	if delta.Recommendations != nil {
		a.Recommendations = delta.Recommendations
	}
	if delta.Cart != nil {
		a.Cart = delta.Cart
	}
	if delta.GeneralResponse != nil {
		a.GeneralResponse = delta.GeneralResponse
	}
	if delta.Promotions != nil {
		a.Promotions = delta.Promotions
	}
	if delta.FeedbackContext != nil {
		a.FeedbackContext = delta.FeedbackContext
	}
	if delta.Cancellation != nil {
		a.Cancellation = delta.Cancellation
	}
}

// Retained keeps what survives a re-plan: the user profile and the cart.
func (a Artifacts) Retained() Artifacts {
	return Artifacts{
		UserProfile: a.UserProfile,
		Cart:        a.Cart,
	}.Clone()
}

func (a Artifacts) Clone() Artifacts {
	out := Artifacts{UserProfile: a.UserProfile.Clone()}
	if a.Intent != nil {
		v := *a.Intent
		out.Intent = &v
	}
	if a.Recipes != nil {
		v := *a.Recipes
		v.Recipes = slices.Clone(a.Recipes.Recipes)
		out.Recipes = &v
	}
	if a.Recommendations != nil {
		v := *a.Recommendations
		v.Products = slices.Clone(a.Recommendations.Products)
		out.Recommendations = &v
	}
	if a.Cart != nil {
		v := *a.Cart
		v.Cart = a.Cart.Cart.Clone()
		v.Missing = slices.Clone(a.Cart.Missing)
		out.Cart = &v
	}
	if a.GeneralResponse != nil {
		v := *a.GeneralResponse
		v.Products = slices.Clone(a.GeneralResponse.Products)
		out.GeneralResponse = &v
	}
	if a.Promotions != nil {
		v := *a.Promotions
		v.Promotions = slices.Clone(a.Promotions.Promotions)
		out.Promotions = &v
	}
	if a.FeedbackContext != nil {
		v := *a.FeedbackContext
		v.Items = slices.Clone(a.FeedbackContext.Items)
		out.FeedbackContext = &v
	}
	if a.Cancellation != nil {
		v := *a.Cancellation
		out.Cancellation = &v
	}
	return out
}

// Feedback accumulates the answers of the feedback sub-machine.
type Feedback struct {
	Rating      int              `json:"rating,omitempty"`
	Liked       []string         `json:"liked,omitempty"`
	Disliked    []string         `json:"disliked,omitempty"`
	Suggestions string           `json:"suggestions,omitempty"`
	Context     *FeedbackContext `json:"context,omitempty"`
	Submitted   bool             `json:"submitted"`
}

func (f Feedback) Clone() Feedback {
	out := f
	out.Liked = slices.Clone(f.Liked)
	out.Disliked = slices.Clone(f.Disliked)
	if f.Context != nil {
		v := *f.Context
		v.Items = slices.Clone(f.Context.Items)
		out.Context = &v
	}
	return out
}
