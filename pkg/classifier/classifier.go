// Package classifier turns raw shopping text into a category, a confidence
// score and extracted slots.
package classifier

import (
	"context"
	"errors"

	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/planner"

	"github.com/shopspring/decimal"
)

var (
	// ErrClassificationAmbiguous means neither path produced a usable answer.
	// It is recovered locally by defaulting to generalQuery.
	ErrClassificationAmbiguous = errors.New("classification ambiguous")
	ErrOracleRejected          = errors.New("oracle answer rejected")
)

// Method records which path produced a result.
type Method string

const (
	MethodRuleBased Method = "ruleBased"
	MethodOracle    Method = "oracle"
	MethodFallback  Method = "fallback"
)

// FallbackConfidence is reported when no rule or oracle answer applies.
const FallbackConfidence = 0.5

// Result is produced fresh for every turn and never mutated afterwards.
type Result struct {
	Category         intent.Category   `json:"category"`
	CartAction       intent.CartAction `json:"cart_action,omitempty"`
	Complexity       intent.Complexity `json:"complexity"`
	Confidence       float64           `json:"confidence"`
	ExtractedBudget  *decimal.Decimal  `json:"extracted_budget,omitempty"`
	ExtractedProduct string            `json:"extracted_product,omitempty"`
	ExtractedDiet    string            `json:"extracted_diet,omitempty"`
	MealCount        int               `json:"meal_count,omitempty"`
	Quantity         int               `json:"quantity,omitempty"`
	Method           Method            `json:"method"`
	Reasoning        string            `json:"reasoning,omitempty"`
}

// Key returns the request kind used for planning.
func (r Result) Key() intent.Key {
	return intent.Key{Category: r.Category, CartAction: r.CartAction}
}

// Classifier is implemented by RuleBased, OracleBacked and Fallback.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

func complexityFor(key intent.Key) intent.Complexity {
	p, _ := planner.For(key)
	return p.Complexity
}

// Default is the generalQuery answer used when nothing better applies.
func Default() Result {
	return Result{
		Category:   intent.GeneralQuery,
		Complexity: complexityFor(intent.Key{Category: intent.GeneralQuery}),
		Confidence: FallbackConfidence,
		Method:     MethodFallback,
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 || c != c {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
