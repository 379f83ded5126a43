package implementation

import (
	"context"
	"errors"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/mapper"
	"smart-grocery-be/internal/model"
	"smart-grocery-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CartMapper
}

func NewCartRepository(db *gorm.DB) contract.CartRepository {
	return &CartRepositoryImpl{
		db:     db,
		mapper: mapper.NewCartMapper(),
	}
}

func (r *CartRepositoryImpl) FindByUserId(ctx context.Context, userId string) (entity.Cart, error) {
	var models []*model.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userId).
		Order("position ASC").
		Find(&models).Error
	if err != nil {
		return entity.Cart{}, err
	}
	return r.mapper.ToEntity(userId, models), nil
}

// Replace must run inside a transaction to be atomic.
func (r *CartRepositoryImpl) Replace(ctx context.Context, cart entity.Cart) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("user_id = ?", cart.UserId).Delete(&model.CartItem{}).Error; err != nil {
		return err
	}
	models := r.mapper.ToModels(cart)
	if len(models) == 0 {
		return nil
	}
	return db.Create(&models).Error
}

type CartOperationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CartMapper
}

func NewCartOperationRepository(db *gorm.DB) contract.CartOperationRepository {
	return &CartOperationRepositoryImpl{
		db:     db,
		mapper: mapper.NewCartMapper(),
	}
}

func (r *CartOperationRepositoryImpl) FindByToken(ctx context.Context, userId, token string) (*entity.CartOperation, error) {
	var op model.CartOperation
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userId, token).
		First(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r.mapper.OperationToEntity(&op), nil
}

// Record relies on the (user_id, token) key, so two racing writers of the
// same token see exactly one insert.
func (r *CartOperationRepositoryImpl) Record(ctx context.Context, op entity.CartOperation) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(r.mapper.OperationToModel(op))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *CartOperationRepositoryImpl) Prune(ctx context.Context, userId string, keep int) error {
	db := r.db.WithContext(ctx)
	newest := db.Model(&model.CartOperation{}).
		Select("token").
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Limit(keep)
	return db.Where("user_id = ? AND token NOT IN (?)", userId, newest).
		Delete(&model.CartOperation{}).Error
}
