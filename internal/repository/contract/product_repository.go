package contract

import (
	"context"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/repository/specification"
)

type ProductRepository interface {
	Upsert(ctx context.Context, products []entity.Product) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Product, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Product, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type RecipeRepository interface {
	Upsert(ctx context.Context, recipes []entity.Recipe) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Recipe, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Recipe, error)
}

type PromotionRepository interface {
	Upsert(ctx context.Context, promotions []entity.Promotion) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Promotion, error)
}
