package contract

import (
	"context"

	"smart-grocery-be/internal/entity"
)

type UserProfileRepository interface {
	// FindByUserId returns nil, nil when the user has no profile.
	FindByUserId(ctx context.Context, userId string) (*entity.UserProfile, error)
	Save(ctx context.Context, profile *entity.UserProfile) error
}
