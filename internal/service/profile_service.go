package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart-grocery-be/internal/dto"
	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/pkg/stage"

	"github.com/shopspring/decimal"
)

type IProfileService interface {
	GetProfile(ctx context.Context, userId string) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userId string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
}

type profileService struct {
	profiles      stage.ProfileRepository
	defaultBudget decimal.Decimal
	logger        logger.ILogger
	now           func() time.Time
}

func NewProfileService(profiles stage.ProfileRepository, defaultBudget decimal.Decimal, log logger.ILogger) IProfileService {
	return &profileService{
		profiles:      profiles,
		defaultBudget: defaultBudget,
		logger:        log,
		now:           time.Now,
	}
}

// GetProfile returns the stored profile, or the one a first conversation
// would create. Reading never stores anything.
func (s *profileService) GetProfile(ctx context.Context, userId string) (*dto.ProfileResponse, error) {
	profile, err := s.load(ctx, userId)
	if err != nil {
		return nil, err
	}
	return toProfileResponse(profile), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userId string, req *dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	profile, err := s.load(ctx, userId)
	if err != nil {
		return nil, err
	}

	if req.Diet != nil {
		profile.Diet = *req.Diet
	}
	if req.BudgetLimit != nil {
		profile.BudgetLimit = decimal.NewFromFloat(*req.BudgetLimit).Round(2)
	}
	if req.MealGoal != nil {
		profile.MealGoal = *req.MealGoal
	}
	if req.CookingSkill != nil {
		profile.CookingSkill = *req.CookingSkill
	}
	if req.PreferredCuisines != nil {
		profile.PreferredCuisines = normalizeList(req.PreferredCuisines)
	}
	if req.Allergies != nil {
		profile.Allergies = normalizeList(req.Allergies)
	}
	now := s.now()
	profile.UpdatedAt = &now

	if err := s.profiles.SaveUserProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("PROFILE", "Profile updated", map[string]interface{}{
		"user_id":   userId,
		"diet":      profile.Diet,
		"meal_goal": profile.MealGoal,
	})
	return toProfileResponse(profile), nil
}

func (s *profileService) load(ctx context.Context, userId string) (*entity.UserProfile, error) {
	if userId == "" {
		return nil, ErrUserRequired
	}
	profile, err := s.profiles.GetUserProfile(ctx, userId)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = stage.DefaultProfile(userId, s.defaultBudget, s.now())
	}
	return profile, nil
}

// normalizeList lower-cases, trims and de-duplicates, keeping first-seen order.
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func toProfileResponse(p *entity.UserProfile) *dto.ProfileResponse {
	orEmpty := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return &dto.ProfileResponse{
		UserId:            p.UserId,
		Diet:              p.Diet,
		BudgetLimit:       p.BudgetLimit.StringFixed(2),
		MealGoal:          p.MealGoal,
		PreferredCuisines: orEmpty(p.PreferredCuisines),
		CookingSkill:      p.CookingSkill,
		Allergies:         orEmpty(p.Allergies),
		PastPurchases:     orEmpty(p.PastPurchases),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}
