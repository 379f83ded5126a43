package unitofwork

import (
	"context"

	"smart-grocery-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProductRepository() contract.ProductRepository
	RecipeRepository() contract.RecipeRepository
	PromotionRepository() contract.PromotionRepository
	UserProfileRepository() contract.UserProfileRepository
	CartRepository() contract.CartRepository
	CartOperationRepository() contract.CartOperationRepository
	ChatTurnRepository() contract.ChatTurnRepository
}
