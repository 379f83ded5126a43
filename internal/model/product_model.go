package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Product struct {
	ItemId        string                      `gorm:"type:varchar(32);primaryKey"`
	Name          string                      `gorm:"type:varchar(255);not null;index"`
	Category      string                      `gorm:"type:varchar(64);index"`
	Price         decimal.Decimal             `gorm:"type:numeric(10,2);not null"`
	Unit          string                      `gorm:"type:varchar(32)"`
	Diets         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Tags          datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	StockQuantity int                         `gorm:"not null;default:0"`
	Aisle         string                      `gorm:"type:varchar(16)"`
	CreatedAt     time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt     time.Time                   `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}

type Recipe struct {
	Id          string                      `gorm:"type:varchar(32);primaryKey"`
	Title       string                      `gorm:"type:varchar(255);not null;index"`
	Cuisine     string                      `gorm:"type:varchar(64)"`
	Diets       datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Ingredients datatypes.JSONSlice[string] `gorm:"type:jsonb;not null"`
	Tags        datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	TotalCost   decimal.Decimal             `gorm:"type:numeric(10,2);not null;index"`
	Servings    int
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Recipe) TableName() string {
	return "recipes"
}

type Promotion struct {
	ItemId                string          `gorm:"type:varchar(32);primaryKey"`
	ItemName              string          `gorm:"type:varchar(255)"`
	DiscountPercent       decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	InStock               bool            `gorm:"not null;default:true"`
	ReplacementSuggestion string          `gorm:"type:varchar(255)"`
	ValidUntil            *time.Time      `gorm:"index"`
	CreatedAt             time.Time       `gorm:"autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime"`
}

func (Promotion) TableName() string {
	return "promotions"
}
