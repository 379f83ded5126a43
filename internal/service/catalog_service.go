package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/pkg/logger"
	"smart-grocery-be/internal/repository/specification"
	"smart-grocery-be/internal/repository/unitofwork"
	"smart-grocery-be/pkg/stage"
)

// keepCartOperations bounds the idempotency tokens kept per user.
const keepCartOperations = 50

// CatalogService serves the stage handlers from Postgres.
type CatalogService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	now        func() time.Time
}

var (
	_ stage.Catalog           = (*CatalogService)(nil)
	_ stage.ProfileRepository = (*CatalogService)(nil)
	_ stage.CartRepository    = (*CatalogService)(nil)
)

func NewCatalogService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *CatalogService {
	return &CatalogService{
		uowFactory: uowFactory,
		logger:     log,
		now:        time.Now,
	}
}

func (s *CatalogService) FindRecipes(ctx context.Context, filter stage.RecipeFilter) ([]entity.Recipe, error) {
	specs := []specification.Specification{
		specification.RecipeAnyDiet{Diets: filter.Diets},
		specification.OrderBy{Field: "id"},
	}
	if filter.MaxCost != nil {
		specs = append(specs, specification.RecipeCostAtMost{Max: *filter.MaxCost})
	}
	recipes, err := s.uowFactory.NewUnitOfWork(ctx).RecipeRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("find recipes: %w", err)
	}
	return recipes, nil
}

// FindRecipeByTitle prefers an exact title over a partial match.
func (s *CatalogService) FindRecipeByTitle(ctx context.Context, title string) (*entity.Recipe, error) {
	title = strings.ToLower(strings.TrimSpace(title))
	if title == "" {
		return nil, nil
	}
	repo := s.uowFactory.NewUnitOfWork(ctx).RecipeRepository()
	recipe, err := repo.FindOne(ctx, specification.Filter("LOWER(title)", title))
	if err != nil || recipe != nil {
		return recipe, err
	}
	return repo.FindOne(ctx, specification.RecipeTitleLike{Title: title}, specification.OrderBy{Field: "id"})
}

func (s *CatalogService) FindProducts(ctx context.Context, filter stage.ProductFilter) ([]entity.Product, error) {
	specs := []specification.Specification{specification.OrderBy{Field: "item_id"}}
	if len(filter.Names) > 0 {
		specs = append(specs, specification.ProductNameIn{Names: filter.Names})
	}
	if filter.Diet != "" {
		specs = append(specs, specification.ProductHasDiet{Diet: filter.Diet})
	}
	if filter.Category != "" {
		specs = append(specs, specification.ByCategory{Category: filter.Category})
	}
	if filter.MaxPrice != nil {
		specs = append(specs, specification.PriceAtMost{Max: *filter.MaxPrice})
	}
	if filter.InStockOnly {
		specs = append(specs, specification.InStock{})
	}
	products, err := s.uowFactory.NewUnitOfWork(ctx).ProductRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("find products: %w", err)
	}
	return products, nil
}

// FindProductByName tries the exact name, then singular and plural forms.
func (s *CatalogService) FindProductByName(ctx context.Context, name string) (*entity.Product, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}
	repo := s.uowFactory.NewUnitOfWork(ctx).ProductRepository()
	product, err := repo.FindOne(ctx, specification.ProductNameIn{Names: []string{name}})
	if err != nil || product != nil {
		return product, err
	}
	stem := strings.TrimSuffix(name, "s")
	return repo.FindOne(ctx,
		specification.ProductNameIn{Names: []string{stem, stem + "s"}},
		specification.OrderBy{Field: "item_id"},
	)
}

func (s *CatalogService) FindPromotions(ctx context.Context, itemIDs []string) ([]entity.Promotion, error) {
	specs := []specification.Specification{
		specification.PromotionActiveAt{At: s.now()},
		specification.OrderBy{Field: "item_id"},
	}
	if len(itemIDs) > 0 {
		specs = append(specs, specification.PromotionItemIn{ItemIDs: itemIDs})
	}
	promos, err := s.uowFactory.NewUnitOfWork(ctx).PromotionRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("find promotions: %w", err)
	}
	return promos, nil
}

func (s *CatalogService) GetUserProfile(ctx context.Context, userID string) (*entity.UserProfile, error) {
	return s.uowFactory.NewUnitOfWork(ctx).UserProfileRepository().FindByUserId(ctx, userID)
}

func (s *CatalogService) SaveUserProfile(ctx context.Context, profile *entity.UserProfile) error {
	p := profile.Clone()
	if err := s.uowFactory.NewUnitOfWork(ctx).UserProfileRepository().Save(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (s *CatalogService) GetCart(ctx context.Context, userID string) (entity.Cart, error) {
	return s.uowFactory.NewUnitOfWork(ctx).CartRepository().FindByUserId(ctx, userID)
}

// SaveCart replaces the stored cart in one transaction.
func (s *CatalogService) SaveCart(ctx context.Context, cart entity.Cart) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CartRepository().Replace(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Debug("CATALOG", "Cart saved", map[string]interface{}{
		"user_id": cart.UserId,
		"items":   len(cart.Items),
	})
	return nil
}

// ApplyCartOperation records the token before touching the cart so that a
// concurrent replay of the same token loses on the primary key and rolls back.
func (s *CatalogService) ApplyCartOperation(ctx context.Context, cart entity.Cart, op entity.CartOperation) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	recorded, err := uow.CartOperationRepository().Record(ctx, op)
	if err != nil {
		return fmt.Errorf("record cart operation: %w", err)
	}
	if !recorded {
		return stage.ErrCartOperationApplied
	}
	if err := uow.CartRepository().Replace(ctx, cart); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	if err := uow.CartOperationRepository().Prune(ctx, op.UserId, keepCartOperations); err != nil {
		return fmt.Errorf("prune cart operations: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Debug("CATALOG", "Cart operation applied", map[string]interface{}{
		"user_id": cart.UserId,
		"token":   op.Token,
		"items":   len(cart.Items),
	})
	return nil
}

func (s *CatalogService) FindCartOperation(ctx context.Context, userID, token string) (*entity.CartOperation, error) {
	return s.uowFactory.NewUnitOfWork(ctx).CartOperationRepository().FindByToken(ctx, userID, token)
}
