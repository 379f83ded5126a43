package dto

import "time"

// UpdateProfileRequest changes only the fields that are present. An empty
// list clears it; an absent list keeps it.
type UpdateProfileRequest struct {
	UserId            string   `json:"user_id,omitempty" validate:"omitempty,max=64"`
	Diet              *string  `json:"diet,omitempty" validate:"omitempty,oneof=omnivore vegetarian vegan keto low-carb gluten-free paleo mediterranean dairy-free high-protein low-fat"`
	BudgetLimit       *float64 `json:"budget_limit,omitempty" validate:"omitempty,gt=0,lte=10000"`
	MealGoal          *int     `json:"meal_goal,omitempty" validate:"omitempty,min=1,max=21"`
	PreferredCuisines []string `json:"preferred_cuisines,omitempty" validate:"omitempty,max=10,dive,min=2,max=40"`
	CookingSkill      *string  `json:"cooking_skill,omitempty" validate:"omitempty,oneof=beginner intermediate advanced"`
	Allergies         []string `json:"allergies,omitempty" validate:"omitempty,max=20,dive,min=2,max=40"`
}

type ProfileResponse struct {
	UserId            string     `json:"user_id"`
	Diet              string     `json:"diet"`
	BudgetLimit       string     `json:"budget_limit"`
	MealGoal          int        `json:"meal_goal"`
	PreferredCuisines []string   `json:"preferred_cuisines"`
	CookingSkill      string     `json:"cooking_skill"`
	Allergies         []string   `json:"allergies"`
	PastPurchases     []string   `json:"past_purchases"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
}
