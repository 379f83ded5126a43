package classifier

import (
	"context"
	"regexp"
	"slices"
	"strings"

	"smart-grocery-be/pkg/intent"
)

// RuleBased scores every category with keywords (1.0 each) and patterns
// (2.0 each) against the lower-cased text. It is stateless and safe for
// concurrent use.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (c *RuleBased) Classify(_ context.Context, text string) (Result, error) {
	return c.classify(text), nil
}

func (c *RuleBased) classify(text string) Result {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return Default()
	}

	scores := Score(lower)
	best, bestScore := intent.GeneralQuery, 0.0
	for _, cat := range tieOrder(lower) {
		if s := scores[cat]; s > bestScore {
			best, bestScore = cat, s
		}
	}

	var r Result
	if bestScore == 0 {
		r = Default()
	} else {
		r = Result{
			Category:   best,
			Confidence: clampConfidence(bestScore / 10),
			Method:     MethodRuleBased,
		}
	}

	applyOverrides(lower, &r)
	ExtractSlots(lower, &r)
	r.Complexity = complexityFor(r.Key())
	return r
}

// Score returns the raw score of every category with at least one match.
// text must already be lower-cased.
func Score(text string) map[intent.Category]float64 {
	scores := make(map[intent.Category]float64)
	for _, rl := range rules {
		var s float64
		for _, kw := range rl.keywords {
			if strings.Contains(text, kw) {
				s += keywordWeight
			}
		}
		for _, p := range rl.patterns {
			if p.MatchString(text) {
				s += patternWeight
			}
		}
		if s > 0 {
			scores[rl.category] = s
		}
	}
	return scores
}

// applyOverrides runs the two rules that win regardless of score.
func applyOverrides(lower string, r *Result) {
	if slices.ContainsFunc(mealOverridePatterns, func(p *regexp.Regexp) bool { return p.MatchString(lower) }) {
		r.Category = intent.MealPlanning
		r.CartAction = intent.CartNone
		return
	}
	if r.Category == intent.RecommendationRequest && extractDiet(lower) != "" && recommendationVerbs.MatchString(lower) {
		r.Category = intent.DietaryFilter
	}
}
