package implementation

import (
	"context"
	"errors"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/mapper"
	"smart-grocery-be/internal/model"
	"smart-grocery-be/internal/repository/contract"
	"smart-grocery-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecipeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RecipeMapper
}

func NewRecipeRepository(db *gorm.DB) contract.RecipeRepository {
	return &RecipeRepositoryImpl{
		db:     db,
		mapper: mapper.NewRecipeMapper(),
	}
}

func (r *RecipeRepositoryImpl) Upsert(ctx context.Context, recipes []entity.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	models := make([]*model.Recipe, len(recipes))
	for i := range recipes {
		models[i] = r.mapper.ToModel(&recipes[i])
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&models).Error
}

func (r *RecipeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Recipe, error) {
	var m model.Recipe
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *RecipeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Recipe, error) {
	var models []*model.Recipe
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

type PromotionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PromotionMapper
}

func NewPromotionRepository(db *gorm.DB) contract.PromotionRepository {
	return &PromotionRepositoryImpl{
		db:     db,
		mapper: mapper.NewPromotionMapper(),
	}
}

func (r *PromotionRepositoryImpl) Upsert(ctx context.Context, promotions []entity.Promotion) error {
	if len(promotions) == 0 {
		return nil
	}
	models := make([]*model.Promotion, len(promotions))
	for i := range promotions {
		models[i] = r.mapper.ToModel(&promotions[i])
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&models).Error
}

func (r *PromotionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]entity.Promotion, error) {
	var models []*model.Promotion
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
