package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"smart-grocery-be/pkg/intent"

	"github.com/shopspring/decimal"
)

var budgetPatterns = compileAll(
	`(?:under|less than|within|budget of|around|about)\s*\$\s*(\d+(?:\.\d{1,2})?)`,
	`\$\s*(\d+(?:\.\d{1,2})?)\s*budget`,
)

// extractBudget returns the amount of the earliest budget phrase in text.
func extractBudget(text string) *decimal.Decimal {
	start := -1
	var amount string
	for _, p := range budgetPatterns {
		for _, loc := range p.FindAllStringSubmatchIndex(text, -1) {
			if start == -1 || loc[0] < start {
				start = loc[0]
				amount = text[loc[2]:loc[3]]
			}
		}
	}
	if start == -1 {
		return nil
	}
	d, err := decimal.NewFromString(amount)
	if err != nil || d.IsNegative() {
		return nil
	}
	return &d
}

var mealCountPattern = regexp.MustCompile(`\b(\d+)\s*(?:meals?|dinners?|recipes?|lunches|breakfasts?)\b`)

func extractMealCount(text string) int {
	m := mealCountPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

var quantityPattern = regexp.MustCompile(`\b(?:add|put)\s+(\d+)\s+`)

func extractQuantity(text string) int {
	m := quantityPattern.FindStringSubmatch(text)
	if m == nil {
		return 1
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// extractDiet returns the canonical dietary term appearing first in text.
func extractDiet(text string) string {
	best, bestAt := "", -1
	for _, term := range dietTerms {
		if loc := term.pattern.FindStringIndex(text); loc != nil && (bestAt == -1 || loc[0] < bestAt) {
			best, bestAt = term.canonical, loc[0]
		}
	}
	return best
}

var (
	cartClearPattern  = regexp.MustCompile(`\b(?:clear|empty)\b.{0,10}\b(?:cart|basket)\b`)
	cartViewPattern   = regexp.MustCompile(`\b(?:view|show|see|display|check)\b.{0,10}\b(?:cart|basket)\b|what.?s in my (?:cart|basket)|cart contents|^\s*(?:my\s+)?cart\s*[?.!]*\s*$`)
	cartDeletePattern = regexp.MustCompile(`\b(?:delete|remove)\b|take out|take away`)
)

func detectCartAction(text string) intent.CartAction {
	switch {
	case cartClearPattern.MatchString(text):
		return intent.CartClear
	case cartViewPattern.MatchString(text):
		return intent.CartView
	case cartDeletePattern.MatchString(text):
		return intent.CartDelete
	default:
		return intent.CartAdd
	}
}

var (
	cartNoise = regexp.MustCompile(`\b(?:please|could you|can you|add|put|place|remove|delete|take out|take away|to|into|in|from|my|the|a|an|shopping|cart|basket|some)\b|\d+`)
	spaces    = regexp.MustCompile(`\s+`)

	recipeNamePattern = regexp.MustCompile(`(?:ingredients|contents|components)\s+(?:of|for)\s+(?:the\s+|a\s+|an\s+|my\s+)?(.+?)(?:\s+(?:to|into|in)\s+(?:my\s+|the\s+)?(?:cart|basket))?\s*[.?!]*$`)
	needForPattern    = regexp.MustCompile(`everything (?:i|we) need for\s+(?:the\s+|a\s+|an\s+)?(.+?)\s*[.?!]*$`)

	productPatterns = compileAll(
		`(?:price|cost) (?:of|for) (?:a |an |the )?([a-z][a-z\s'-]*?)(?:\s+(?:in|at|per)\b.*)?\s*[?.!]*$`,
		`how much (?:is|are|does|do) (?:a |an |the )?([a-z][a-z\s'-]*?)(?:\s+costs?)?\s*[?.!]*$`,
		`(?:do you have|do you carry|do you sell|is there|are there) (?:any |some )?([a-z][a-z\s'-]*?)(?:\s+in stock)?\s*[?.!]*$`,
		`is (?:the |a |an )?([a-z][a-z\s'-]*?) (?:in stock|available)`,
		`where (?:is|are|can i find) (?:the |some )?([a-z][a-z\s'-]*?)\s*[?.!]*$`,
		`(?:substitute|alternative|replacement)s? (?:for|to) (?:a |an |the )?([a-z][a-z\s'-]*?)\s*[?.!]*$`,
		`instead of (?:a |an |the )?([a-z][a-z\s'-]*?)\s*[?.!]*$`,
		`(?:out of|can't find|cannot find) (?:the )?([a-z][a-z\s'-]*?)\s*[?.!,]`,
	)
)

// extractProduct pulls a product or recipe name out of lower-cased text.
func extractProduct(text string, category intent.Category, action intent.CartAction) string {
	switch category {
	case intent.CartOperation:
		if action == intent.CartView || action == intent.CartClear {
			return ""
		}
		name := cartNoise.ReplaceAllString(text, " ")
		return cleanName(name)
	case intent.BasketBuilder:
		if m := recipeNamePattern.FindStringSubmatch(text); m != nil {
			return cleanName(m[1])
		}
		if m := needForPattern.FindStringSubmatch(text); m != nil {
			return cleanName(m[1])
		}
		return ""
	}

	for _, p := range productPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			if name := cleanName(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

func cleanName(s string) string {
	s = spaces.ReplaceAllString(s, " ")
	return strings.Trim(s, " ?!.,'\"")
}

// ExtractSlots fills the slot fields of r from text.
func ExtractSlots(text string, r *Result) {
	lower := strings.ToLower(text)
	if r.ExtractedBudget == nil {
		r.ExtractedBudget = extractBudget(lower)
	}
	if r.ExtractedDiet == "" {
		r.ExtractedDiet = extractDiet(lower)
	}
	if r.MealCount == 0 {
		r.MealCount = extractMealCount(lower)
	}
	if r.Category == intent.CartOperation {
		if r.CartAction == intent.CartNone {
			r.CartAction = detectCartAction(lower)
		}
		if r.Quantity == 0 {
			r.Quantity = extractQuantity(lower)
		}
	}
	if r.ExtractedProduct == "" {
		r.ExtractedProduct = extractProduct(lower, r.Category, r.CartAction)
	}
}
