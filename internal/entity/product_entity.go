package entity

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ItemId        string          `json:"item_id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Price         decimal.Decimal `json:"price"`
	Unit          string          `json:"unit,omitempty"`
	Diets         []string        `json:"diets,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
	Aisle         string          `json:"aisle,omitempty"`
}

func (p Product) InStock() bool {
	return p.StockQuantity > 0
}

// MatchesDiet reports whether any of the product's diets or tags equals diet.
func (p Product) MatchesDiet(diet string) bool {
	diet = strings.ToLower(diet)
	return slices.Contains(p.Diets, diet) || slices.Contains(p.Tags, diet)
}

type Recipe struct {
	Id          string          `json:"id"`
	Title       string          `json:"title"`
	Diets       []string        `json:"diets,omitempty"`
	Cuisine     string          `json:"cuisine,omitempty"`
	Ingredients []string        `json:"ingredients"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	Servings    int             `json:"servings,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

type Promotion struct {
	ItemId                string          `json:"item_id"`
	ItemName              string          `json:"item_name,omitempty"`
	DiscountPercent       decimal.Decimal `json:"discount_percent"`
	InStock               bool            `json:"in_stock"`
	ReplacementSuggestion string          `json:"replacement_suggestion,omitempty"`
	ValidUntil            *time.Time      `json:"valid_until,omitempty"`
}

// Active reports whether the promotion is still valid at now.
func (p Promotion) Active(now time.Time) bool {
	return p.ValidUntil == nil || now.Before(*p.ValidUntil)
}
