package specification

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductNameIn matches product names case-insensitively. Names must be lower case.
type ProductNameIn struct {
	Names []string
}

func (s ProductNameIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(name) IN ?", s.Names)
}

// ProductNameLike matches a name prefix, used for singular and plural lookups.
type ProductNameLike struct {
	Prefix string
}

func (s ProductNameLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(name) LIKE ?", strings.ToLower(s.Prefix)+"%")
}

// ProductHasDiet matches products whose diets or tags contain diet.
type ProductHasDiet struct {
	Diet string
}

func (s ProductHasDiet) Apply(db *gorm.DB) *gorm.DB {
	doc := jsonArray(strings.ToLower(s.Diet))
	return db.Where("(diets @> ?::jsonb OR tags @> ?::jsonb)", doc, doc)
}

type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(category) = ?", strings.ToLower(s.Category))
}

type PriceAtMost struct {
	Max decimal.Decimal
}

func (s PriceAtMost) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("price <= ?", s.Max)
}

type InStock struct{}

func (s InStock) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stock_quantity > 0")
}

// RecipeAnyDiet matches recipes carrying at least one of diets.
type RecipeAnyDiet struct {
	Diets []string
}

func (s RecipeAnyDiet) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Diets) == 0 {
		return db
	}
	group := db.Session(&gorm.Session{NewDB: true})
	for i, d := range s.Diets {
		if i == 0 {
			group = group.Where("diets @> ?::jsonb", jsonArray(d))
			continue
		}
		group = group.Or("diets @> ?::jsonb", jsonArray(d))
	}
	return db.Where(group)
}

type RecipeCostAtMost struct {
	Max decimal.Decimal
}

func (s RecipeCostAtMost) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("total_cost <= ?", s.Max)
}

// RecipeTitleLike matches a title substring case-insensitively.
type RecipeTitleLike struct {
	Title string
}

func (s RecipeTitleLike) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s.Title)+"%")
}

type PromotionItemIn struct {
	ItemIDs []string
}

func (s PromotionItemIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("item_id IN ?", s.ItemIDs)
}

// PromotionActiveAt keeps promotions without an end date or ending after At.
type PromotionActiveAt struct {
	At time.Time
}

func (s PromotionActiveAt) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("(valid_until IS NULL OR valid_until > ?)", s.At)
}

type ByUser struct {
	UserID string
}

func (s ByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type BySession struct {
	SessionID string
}

func (s BySession) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

func jsonArray(v string) string {
	b, _ := json.Marshal([]string{v})
	return string(b)
}
