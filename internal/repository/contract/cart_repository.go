package contract

import (
	"context"

	"smart-grocery-be/internal/entity"
)

type CartRepository interface {
	FindByUserId(ctx context.Context, userId string) (entity.Cart, error)
	// Replace swaps every stored line of the cart for cart.Items.
	Replace(ctx context.Context, cart entity.Cart) error
}

type CartOperationRepository interface {
	FindByToken(ctx context.Context, userId, token string) (*entity.CartOperation, error)
	// Record inserts op and reports false when its token was already recorded.
	Record(ctx context.Context, op entity.CartOperation) (bool, error)
	// Prune keeps only the newest keep operations of the user.
	Prune(ctx context.Context, userId string, keep int) error
}
