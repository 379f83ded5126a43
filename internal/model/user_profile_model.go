package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type UserProfile struct {
	UserId            string                      `gorm:"type:varchar(64);primaryKey"`
	Diet              string                      `gorm:"type:varchar(32)"`
	BudgetLimit       decimal.Decimal             `gorm:"type:numeric(10,2);not null;default:0"`
	MealGoal          int                         `gorm:"not null;default:3"`
	PreferredCuisines datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CookingSkill      string                      `gorm:"type:varchar(32)"`
	Allergies         datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	PastPurchases     datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	CreatedAt         time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt         time.Time                   `gorm:"autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
