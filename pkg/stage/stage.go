// Package stage implements the unit of work behind every planner.Stage.
// Handlers read the session artifacts and return only the artifacts they
// produce; the orchestrator merges and commits them.
package stage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/pkg/classifier"
	"smart-grocery-be/pkg/planner"
	"smart-grocery-be/pkg/store"

	"github.com/shopspring/decimal"
)

// Input is what a handler sees. Artifacts is a private copy.
type Input struct {
	SessionID      string
	UserID         string
	Text           string
	Classification classifier.Result
	Plan           planner.ExecutionPlan
	Artifacts      store.Artifacts

	// StepNumber is the session step this turn started from. A retried turn
	// sees the same value.
	StepNumber int
}

type Handler interface {
	Handle(ctx context.Context, in Input) (store.Artifacts, error)
}

type HandlerFunc func(ctx context.Context, in Input) (store.Artifacts, error)

func (f HandlerFunc) Handle(ctx context.Context, in Input) (store.Artifacts, error) {
	return f(ctx, in)
}

// ProfileRepository loads and stores user profiles. GetUserProfile returns
// nil, nil when the user has no profile yet.
type ProfileRepository interface {
	GetUserProfile(ctx context.Context, userID string) (*entity.UserProfile, error)
	SaveUserProfile(ctx context.Context, profile *entity.UserProfile) error
}

type RecipeFilter struct {
	Diets   []string // empty means any diet
	MaxCost *decimal.Decimal
}

type ProductFilter struct {
	Diet        string
	Category    string
	Names       []string
	MaxPrice    *decimal.Decimal
	InStockOnly bool
}

// Catalog is the read side of the product, recipe and promotion data.
// Find*ByName return nil, nil when nothing matches.
type Catalog interface {
	FindRecipes(ctx context.Context, filter RecipeFilter) ([]entity.Recipe, error)
	FindRecipeByTitle(ctx context.Context, title string) (*entity.Recipe, error)
	FindProducts(ctx context.Context, filter ProductFilter) ([]entity.Product, error)
	FindProductByName(ctx context.Context, name string) (*entity.Product, error)
	// FindPromotions returns active promotions for itemIDs, or all active
	// promotions when itemIDs is empty.
	FindPromotions(ctx context.Context, itemIDs []string) ([]entity.Promotion, error)
}

// ErrCartOperationApplied is returned by ApplyCartOperation when the
// operation token was stored before; nothing is written.
var ErrCartOperationApplied = errors.New("cart operation already applied")

// CartRepository persists carts. GetCart returns an empty cart for new users.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (entity.Cart, error)
	SaveCart(ctx context.Context, cart entity.Cart) error
	// ApplyCartOperation stores cart and records op atomically, at most once
	// per (op.UserId, op.Token).
	ApplyCartOperation(ctx context.Context, cart entity.Cart, op entity.CartOperation) error
	// FindCartOperation returns nil, nil for unknown tokens.
	FindCartOperation(ctx context.Context, userID, token string) (*entity.CartOperation, error)
}

// Responder answers open questions, usually through an LLM.
type Responder interface {
	Answer(ctx context.Context, question string) (string, error)
}

type Deps struct {
	Profiles            ProfileRepository
	Catalog             Catalog
	Carts               CartRepository
	Responder           Responder // optional
	Logger              logger.ILogger
	DefaultBudget       decimal.Decimal
	RecommendationLimit int
	Now                 func() time.Time
}

// Registry holds one handler per stage.
type Registry map[planner.Stage]Handler

// NewRegistry builds the production handlers.
func NewRegistry(deps Deps) Registry {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	if !deps.DefaultBudget.IsPositive() {
		deps.DefaultBudget = decimal.NewFromInt(50)
	}
	if deps.RecommendationLimit <= 0 {
		deps.RecommendationLimit = 8
	}

	return Registry{
		planner.StageIntent:             HandlerFunc(handleIntent),
		planner.StagePreference:         &preferenceHandler{deps: deps},
		planner.StageMealPlanner:        &mealPlannerHandler{deps: deps},
		planner.StageProductRecommender: &recommenderHandler{deps: deps},
		planner.StageBasketBuilder:      &basketHandler{deps: deps},
		planner.StageStockChecker:       &stockHandler{deps: deps},
		planner.StageGeneralQuery:       &generalHandler{deps: deps},
		planner.StageFeedback:           HandlerFunc(handleFeedback),
	}
}

// Validate fails when a stage has no handler.
func (r Registry) Validate() error {
	for _, s := range planner.Stages {
		if r[s] == nil {
			return fmt.Errorf("no handler registered for stage %s", s)
		}
	}
	return nil
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// budgetFor picks the message budget, then the profile budget, then the default.
func budgetFor(in Input, deps Deps) decimal.Decimal {
	if in.Artifacts.Intent != nil && in.Artifacts.Intent.Budget != nil {
		return *in.Artifacts.Intent.Budget
	}
	if in.Classification.ExtractedBudget != nil {
		return *in.Classification.ExtractedBudget
	}
	if p := in.Artifacts.UserProfile; p != nil && p.BudgetLimit.IsPositive() {
		return p.BudgetLimit
	}
	return deps.DefaultBudget
}
