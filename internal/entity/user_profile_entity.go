package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type UserProfile struct {
	UserId            string          `json:"user_id"`
	Diet              string          `json:"diet"`
	BudgetLimit       decimal.Decimal `json:"budget_limit"`
	MealGoal          int             `json:"meal_goal"`
	PreferredCuisines []string        `json:"preferred_cuisines,omitempty"`
	CookingSkill      string          `json:"cooking_skill"`
	Allergies         []string        `json:"allergies,omitempty"`
	PastPurchases     []string        `json:"past_purchases,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
}

// Clone returns a copy that shares no slices with p.
func (p *UserProfile) Clone() *UserProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.PreferredCuisines = append([]string(nil), p.PreferredCuisines...)
	c.Allergies = append([]string(nil), p.Allergies...)
	c.PastPurchases = append([]string(nil), p.PastPurchases...)
	return &c
}
