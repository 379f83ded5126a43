package mapper

import (
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/model"

	"gorm.io/datatypes"
)

type UserProfileMapper struct{}

func NewUserProfileMapper() *UserProfileMapper {
	return &UserProfileMapper{}
}

func (m *UserProfileMapper) ToEntity(p *model.UserProfile) *entity.UserProfile {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.UserProfile{
		UserId:            p.UserId,
		Diet:              p.Diet,
		BudgetLimit:       p.BudgetLimit,
		MealGoal:          p.MealGoal,
		PreferredCuisines: []string(p.PreferredCuisines),
		CookingSkill:      p.CookingSkill,
		Allergies:         []string(p.Allergies),
		PastPurchases:     []string(p.PastPurchases),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}

func (m *UserProfileMapper) ToModel(p *entity.UserProfile) *model.UserProfile {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.UserProfile{
		UserId:            p.UserId,
		Diet:              p.Diet,
		BudgetLimit:       p.BudgetLimit,
		MealGoal:          p.MealGoal,
		PreferredCuisines: datatypes.JSONSlice[string](nonNil(p.PreferredCuisines)),
		CookingSkill:      p.CookingSkill,
		Allergies:         datatypes.JSONSlice[string](nonNil(p.Allergies)),
		PastPurchases:     datatypes.JSONSlice[string](nonNil(p.PastPurchases)),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         updatedAt,
	}
}
