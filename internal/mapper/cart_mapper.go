package mapper

import (
	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/model"

	"gorm.io/datatypes"
)

type CartMapper struct{}

func NewCartMapper() *CartMapper {
	return &CartMapper{}
}

// ToEntity assembles a cart from its rows, which must be ordered by position.
// Pricing fields are left empty; they are computed per turn.
func (m *CartMapper) ToEntity(userId string, items []*model.CartItem) entity.Cart {
	cart := entity.Cart{UserId: userId}
	for _, it := range items {
		cart.Items = append(cart.Items, entity.CartItem{
			ItemId:   it.ItemId,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			InStock:  true,
		})
		if it.UpdatedAt.After(cart.UpdatedAt) {
			cart.UpdatedAt = it.UpdatedAt
		}
	}
	return cart
}

func (m *CartMapper) ToModels(cart entity.Cart) []*model.CartItem {
	models := make([]*model.CartItem, 0, len(cart.Items))
	for i, it := range cart.Items {
		if it.Quantity <= 0 {
			continue
		}
		models = append(models, &model.CartItem{
			UserId:   cart.UserId,
			ItemId:   it.ItemId,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Position: i,
		})
	}
	return models
}

func (m *CartMapper) OperationToEntity(op *model.CartOperation) *entity.CartOperation {
	if op == nil {
		return nil
	}
	return &entity.CartOperation{
		UserId:    op.UserId,
		Token:     op.Token,
		Message:   op.Message,
		Missing:   []string(op.Missing),
		CreatedAt: op.CreatedAt,
	}
}

func (m *CartMapper) OperationToModel(op entity.CartOperation) *model.CartOperation {
	return &model.CartOperation{
		UserId:    op.UserId,
		Token:     op.Token,
		Message:   op.Message,
		Missing:   datatypes.JSONSlice[string](nonNil(op.Missing)),
		CreatedAt: op.CreatedAt,
	}
}
