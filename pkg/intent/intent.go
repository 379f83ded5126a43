// Package intent holds the closed enumerations shared by classification and planning.
package intent

import "strings"

// Category is the closed classification label for an inbound request.
type Category string

const (
	PriceInquiry          Category = "priceInquiry"
	AvailabilityCheck     Category = "availabilityCheck"
	StoreNavigation       Category = "storeNavigation"
	PromotionInquiry      Category = "promotionInquiry"
	SubstitutionRequest   Category = "substitutionRequest"
	DietaryFilter         Category = "dietaryFilter"
	RecommendationRequest Category = "recommendationRequest"
	MealPlanning          Category = "mealPlanning"
	BasketBuilder         Category = "basketBuilder"
	CartOperation         Category = "cartOperation"
	GeneralQuery          Category = "generalQuery"
)

// Categories lists every category. Extend only by appending.
var Categories = []Category{
	PriceInquiry,
	AvailabilityCheck,
	StoreNavigation,
	PromotionInquiry,
	SubstitutionRequest,
	DietaryFilter,
	RecommendationRequest,
	MealPlanning,
	BasketBuilder,
	CartOperation,
	GeneralQuery,
}

// Valid reports whether c is a member of the closed enumeration.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory accepts the canonical camelCase name as well as the snake_case
// and lower-case spellings that language models tend to produce.
func ParseCategory(raw string) (Category, bool) {
	norm := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.TrimSpace(raw)))
	for _, c := range Categories {
		if strings.ToLower(string(c)) == norm {
			return c, true
		}
	}
	return "", false
}

// CartAction qualifies CartOperation.
type CartAction string

const (
	CartNone   CartAction = ""
	CartAdd    CartAction = "add"
	CartDelete CartAction = "delete"
	CartView   CartAction = "view"
	CartClear  CartAction = "clear"
)

// ParseCartAction maps free-form verbs to a CartAction.
func ParseCartAction(raw string) CartAction {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "add", "put", "insert":
		return CartAdd
	case "delete", "remove":
		return CartDelete
	case "view", "show", "list":
		return CartView
	case "clear", "empty":
		return CartClear
	default:
		return CartNone
	}
}

// Key identifies a request kind for re-planning decisions. Cart operations with
// different actions are different kinds.
type Key struct {
	Category   Category
	CartAction CartAction
}

func (k Key) String() string {
	if k.Category == CartOperation && k.CartAction != CartNone {
		return string(k.Category) + "(" + string(k.CartAction) + ")"
	}
	return string(k.Category)
}

// Complexity tier of a plan.
type Complexity string

const (
	Simple  Complexity = "simple"
	Medium  Complexity = "medium"
	Complex Complexity = "complex"
)
