package mapper

import (
	"smart-grocery-be/internal/entity"
	"smart-grocery-be/internal/model"

	"gorm.io/datatypes"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}
	return &entity.Product{
		ItemId:        p.ItemId,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		Unit:          p.Unit,
		Diets:         []string(p.Diets),
		Tags:          []string(p.Tags),
		StockQuantity: p.StockQuantity,
		Aisle:         p.Aisle,
	}
}

func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}
	return &model.Product{
		ItemId:        p.ItemId,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		Unit:          p.Unit,
		Diets:         datatypes.JSONSlice[string](nonNil(p.Diets)),
		Tags:          datatypes.JSONSlice[string](nonNil(p.Tags)),
		StockQuantity: p.StockQuantity,
		Aisle:         p.Aisle,
	}
}

func (m *ProductMapper) ToEntities(products []*model.Product) []entity.Product {
	entities := make([]entity.Product, len(products))
	for i, p := range products {
		entities[i] = *m.ToEntity(p)
	}
	return entities
}

type RecipeMapper struct{}

func NewRecipeMapper() *RecipeMapper {
	return &RecipeMapper{}
}

func (m *RecipeMapper) ToEntity(r *model.Recipe) *entity.Recipe {
	if r == nil {
		return nil
	}
	return &entity.Recipe{
		Id:          r.Id,
		Title:       r.Title,
		Diets:       []string(r.Diets),
		Cuisine:     r.Cuisine,
		Ingredients: []string(r.Ingredients),
		TotalCost:   r.TotalCost,
		Servings:    r.Servings,
		Tags:        []string(r.Tags),
	}
}

func (m *RecipeMapper) ToModel(r *entity.Recipe) *model.Recipe {
	if r == nil {
		return nil
	}
	return &model.Recipe{
		Id:          r.Id,
		Title:       r.Title,
		Cuisine:     r.Cuisine,
		Diets:       datatypes.JSONSlice[string](nonNil(r.Diets)),
		Ingredients: datatypes.JSONSlice[string](nonNil(r.Ingredients)),
		Tags:        datatypes.JSONSlice[string](nonNil(r.Tags)),
		TotalCost:   r.TotalCost,
		Servings:    r.Servings,
	}
}

func (m *RecipeMapper) ToEntities(recipes []*model.Recipe) []entity.Recipe {
	entities := make([]entity.Recipe, len(recipes))
	for i, r := range recipes {
		entities[i] = *m.ToEntity(r)
	}
	return entities
}

type PromotionMapper struct{}

func NewPromotionMapper() *PromotionMapper {
	return &PromotionMapper{}
}

func (m *PromotionMapper) ToEntity(p *model.Promotion) *entity.Promotion {
	if p == nil {
		return nil
	}
	return &entity.Promotion{
		ItemId:                p.ItemId,
		ItemName:              p.ItemName,
		DiscountPercent:       p.DiscountPercent,
		InStock:               p.InStock,
		ReplacementSuggestion: p.ReplacementSuggestion,
		ValidUntil:            p.ValidUntil,
	}
}

func (m *PromotionMapper) ToModel(p *entity.Promotion) *model.Promotion {
	if p == nil {
		return nil
	}
	return &model.Promotion{
		ItemId:                p.ItemId,
		ItemName:              p.ItemName,
		DiscountPercent:       p.DiscountPercent,
		InStock:               p.InStock,
		ReplacementSuggestion: p.ReplacementSuggestion,
		ValidUntil:            p.ValidUntil,
	}
}

func (m *PromotionMapper) ToEntities(promotions []*model.Promotion) []entity.Promotion {
	entities := make([]entity.Promotion, len(promotions))
	for i, p := range promotions {
		entities[i] = *m.ToEntity(p)
	}
	return entities
}

// nonNil keeps jsonb columns as [] instead of null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
