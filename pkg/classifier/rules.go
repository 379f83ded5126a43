package classifier

import (
	"regexp"
	"slices"

	"smart-grocery-be/pkg/intent"
)

const (
	keywordWeight = 1.0
	patternWeight = 2.0
)

type rule struct {
	category intent.Category
	keywords []string
	patterns []*regexp.Regexp
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// priority breaks score ties; earlier wins. MealPlanning holds first place
// only for text containing a digit, see tieOrder.
var priority = []intent.Category{
	intent.MealPlanning,
	intent.BasketBuilder,
	intent.CartOperation,
	intent.DietaryFilter,
	intent.SubstitutionRequest,
	intent.AvailabilityCheck,
	intent.RecommendationRequest,
	intent.PriceInquiry,
	intent.PromotionInquiry,
	intent.StoreNavigation,
	intent.GeneralQuery,
}

// mealPlanCue is any digit: a budget, a meal count or a head count.
var mealPlanCue = regexp.MustCompile(`\d`)

// casualMealOrder ranks MealPlanning just above GeneralQuery, so "dinner
// ideas" is a recommendation rather than a meal plan.
var casualMealOrder = append(slices.Clone(priority[1:len(priority)-1]), intent.MealPlanning, intent.GeneralQuery)

func tieOrder(lower string) []intent.Category {
	if mealPlanCue.MatchString(lower) {
		return priority
	}
	return casualMealOrder
}

var rules = []rule{
	{
		category: intent.PriceInquiry,
		keywords: []string{"price", "cost", "how much", "expensive", "cheap", "affordable"},
		patterns: compileAll(
			`(?:what.?s|how much).{0,20}(?:price|cost)`,
			`(?:price|cost)\s+(?:of|for)`,
			`how much (?:is|are|does|do)\b`,
		),
	},
	{
		category: intent.AvailabilityCheck,
		keywords: []string{"in stock", "available", "availability", "do you have", "do you carry", "carry", "sold out"},
		patterns: compileAll(
			`(?:do|does) (?:you|the store|this store) (?:have|carry|sell)`,
			`\b(?:is|are) there\b.{0,30}\b(?:any|in stock)\b`,
			`\b(?:in stock|available|out of stock)\b`,
		),
	},
	{
		category: intent.StoreNavigation,
		keywords: []string{"aisle", "section", "department", "where is", "where are", "where can i find", "located"},
		patterns: compileAll(
			`where.{0,20}(?:aisle|section|find|located)`,
			`(?:which|what) (?:aisle|section|department)`,
			`where (?:is|are|can i find)\b`,
		),
	},
	{
		category: intent.PromotionInquiry,
		keywords: []string{"sale", "discount", "promotion", "deal", "offer", "coupon", "special", "savings"},
		patterns: compileAll(
			`(?:on sale|sale items|discounts?)`,
			`(?:promotions?|deals?|offers?|specials)`,
			`(?:coupons?|savings|reduced price)`,
		),
	},
	{
		category: intent.SubstitutionRequest,
		keywords: []string{"substitute", "alternative", "replacement", "instead of", "replace", "swap"},
		patterns: compileAll(
			`(?:substitute|alternative|replacement)s?.{0,20}(?:for|to)`,
			`(?:instead of|replace|swap)`,
			`(?:can.t find|out of|don.t have).{0,20}(?:alternative|substitute)`,
		),
	},
	{
		category: intent.DietaryFilter,
		keywords: []string{"low-carb", "gluten-free", "vegan", "vegetarian", "keto", "organic", "sugar-free", "dairy-free", "paleo"},
		patterns: compileAll(
			`(?:low.?carb|keto|ketogenic)`,
			`(?:gluten.?free|celiac)`,
			`(?:vegan|plant.?based)`,
			`(?:vegetarian|veggie)`,
			`(?:organic|natural|sugar.?free|dairy.?free)`,
		),
	},
	{
		category: intent.RecommendationRequest,
		keywords: []string{"recommend", "suggest", "what should", "best", "popular", "ideas"},
		patterns: compileAll(
			`(?:recommend|suggest|what should)`,
			`what.?s.{0,10}(?:best|good|popular)`,
			`(?:any suggestions|ideas for)`,
		),
	},
	{
		category: intent.MealPlanning,
		keywords: []string{"meal", "plan", "recipe", "dinner", "lunch", "breakfast", "menu"},
		patterns: compileAll(
			`(?:plan|create).{0,20}(?:meals?|menu)`,
			`\d+.{0,10}(?:meals?|recipes?|dinners?)`,
			`(?:meal plan|weekly plan|menu)`,
		),
	},
	{
		category: intent.BasketBuilder,
		keywords: []string{"ingredients", "ingredients for", "ingredients of", "everything i need", "contents of"},
		patterns: compileAll(
			`(?:ingredients|contents|components)\s+(?:of|for)`,
			`add\s+(?:the\s+|all\s+)?(?:ingredients|contents|components)`,
			`everything (?:i|we) need for`,
		),
	},
	{
		category: intent.CartOperation,
		keywords: []string{"cart", "basket", "add", "remove", "delete", "take out"},
		patterns: compileAll(
			`\b(?:add|put|place)\b.{0,40}\b(?:to|in|into)\b.{0,15}\b(?:cart|basket)\b`,
			`\b(?:remove|delete|take out|take away)\b.{0,40}\bfrom\b.{0,15}\b(?:cart|basket)\b`,
			`\b(?:view|show|see|display)\b.{0,10}\b(?:cart|basket)\b|what.?s in my (?:cart|basket)|cart contents`,
			`\b(?:clear|empty)\b.{0,10}\b(?:cart|basket)\b`,
		),
	},
}

// Override (a): an explicit meal count or a "plan ... meals" phrase.
var mealOverridePatterns = compileAll(
	`\b\d+\s*(?:meals?|dinners?|lunches|breakfasts?|recipes?)\b`,
	`\bplan\b.{0,20}\b(?:meals?|menu|dinners?|lunch(?:es)?)\b`,
	`\b(?:weekly|daily)\s+(?:meal\s+)?(?:plan|menu)\b`,
)

// Override (b): a dietary term together with a recommendation verb.
var recommendationVerbs = regexp.MustCompile(`\b(?:recommend|suggest|what should|best|ideas|good)\b`)

type dietTerm struct {
	canonical string
	pattern   *regexp.Regexp
}

var dietTerms = []dietTerm{
	{"low-carb", regexp.MustCompile(`\blow.?carb\b`)},
	{"keto", regexp.MustCompile(`\bketo(?:genic)?\b`)},
	{"gluten-free", regexp.MustCompile(`\bgluten.?free\b`)},
	{"dairy-free", regexp.MustCompile(`\bdairy.?free\b`)},
	{"sugar-free", regexp.MustCompile(`\bsugar.?free\b`)},
	{"vegan", regexp.MustCompile(`\b(?:vegan|plant.?based)\b`)},
	{"vegetarian", regexp.MustCompile(`\b(?:vegetarian|veggie)\b`)},
	{"paleo", regexp.MustCompile(`\bpaleo\b`)},
	{"high-protein", regexp.MustCompile(`\bhigh.?protein\b`)},
	{"low-fat", regexp.MustCompile(`\blow.?fat\b`)},
	{"organic", regexp.MustCompile(`\borganic\b`)},
}
