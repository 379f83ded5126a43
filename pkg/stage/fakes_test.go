package stage

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"smart-grocery-be/internal/entity"

	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeCatalog struct {
	products   []entity.Product
	recipes    []entity.Recipe
	promotions []entity.Promotion
	err        error
}

func (c *fakeCatalog) FindRecipes(_ context.Context, f RecipeFilter) ([]entity.Recipe, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []entity.Recipe
	for _, r := range c.recipes {
		if f.MaxCost != nil && r.TotalCost.GreaterThan(*f.MaxCost) {
			continue
		}
		if len(f.Diets) > 0 && !slices.ContainsFunc(r.Diets, func(d string) bool { return slices.Contains(f.Diets, d) }) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (c *fakeCatalog) FindRecipeByTitle(_ context.Context, title string) (*entity.Recipe, error) {
	for _, r := range c.recipes {
		if strings.EqualFold(r.Title, title) {
			r := r
			return &r, nil
		}
	}
	return nil, c.err
}

func (c *fakeCatalog) FindProducts(_ context.Context, f ProductFilter) ([]entity.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []entity.Product
	for _, p := range c.products {
		if len(f.Names) > 0 && !slices.Contains(f.Names, strings.ToLower(p.Name)) {
			continue
		}
		if f.Diet != "" && !p.MatchesDiet(f.Diet) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.InStockOnly && !p.InStock() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *fakeCatalog) FindProductByName(_ context.Context, name string) (*entity.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	name = strings.ToLower(name)
	for _, p := range c.products {
		lower := strings.ToLower(p.Name)
		if lower == name || strings.TrimSuffix(lower, "s") == strings.TrimSuffix(name, "s") {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (c *fakeCatalog) FindPromotions(_ context.Context, ids []string) ([]entity.Promotion, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []entity.Promotion
	for _, p := range c.promotions {
		if len(ids) == 0 || slices.Contains(ids, p.ItemId) {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[string]*entity.UserProfile
	saves    int
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{profiles: map[string]*entity.UserProfile{}}
}

func (r *fakeProfiles) GetUserProfile(_ context.Context, userID string) (*entity.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.profiles[userID].Clone(), nil
}

func (r *fakeProfiles) SaveUserProfile(_ context.Context, p *entity.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	r.profiles[p.UserId] = p.Clone()
	return nil
}

type fakeCarts struct {
	mu      sync.Mutex
	carts   map[string]entity.Cart
	ops     map[string]entity.CartOperation
	saveErr error
	applies int
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: map[string]entity.Cart{}, ops: map[string]entity.CartOperation{}}
}

func (r *fakeCarts) GetCart(_ context.Context, userID string) (entity.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.carts[userID].Clone(), nil
}

func (r *fakeCarts) SaveCart(_ context.Context, cart entity.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[cart.UserId] = cart.Clone()
	return nil
}

func (r *fakeCarts) ApplyCartOperation(_ context.Context, cart entity.Cart, op entity.CartOperation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	key := op.UserId + "|" + op.Token
	if _, ok := r.ops[key]; ok {
		return ErrCartOperationApplied
	}
	r.applies++
	r.ops[key] = op
	r.carts[cart.UserId] = cart.Clone()
	return nil
}

func (r *fakeCarts) FindCartOperation(_ context.Context, userID, token string) (*entity.CartOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	op, ok := r.ops[userID+"|"+token]
	if !ok {
		return nil, nil
	}
	return &op, nil
}

type fakeResponder struct {
	answer string
	err    error
}

func (r fakeResponder) Answer(context.Context, string) (string, error) {
	return r.answer, r.err
}

var errCatalogDown = errors.New("catalog down")

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: []entity.Product{
			{ItemId: "p1", Name: "Bananas", Category: "produce", Price: price("0.50"), Unit: "each", Diets: []string{"vegan", "vegetarian"}, StockQuantity: 120, Aisle: "1"},
			{ItemId: "p2", Name: "Milk", Category: "dairy", Price: price("3.49"), Unit: "gallon", Diets: []string{"vegetarian"}, StockQuantity: 30, Aisle: "7"},
			{ItemId: "p3", Name: "Tofu", Category: "protein", Price: price("2.50"), Diets: []string{"vegan", "vegetarian"}, StockQuantity: 15, Aisle: "5"},
			{ItemId: "p4", Name: "Quinoa", Category: "grains", Price: price("4.00"), Diets: []string{"vegan", "gluten-free"}, StockQuantity: 0, Aisle: "3"},
			{ItemId: "p5", Name: "Oat Milk", Category: "dairy", Price: price("3.99"), Diets: []string{"vegan"}, StockQuantity: 12, Aisle: "7"},
			{ItemId: "p6", Name: "Pasta", Category: "grains", Price: price("1.50"), Diets: []string{"vegetarian", "vegan"}, StockQuantity: 40},
			{ItemId: "p7", Name: "Tomato Sauce", Category: "pantry", Price: price("2.00"), Diets: []string{"vegan"}, StockQuantity: 25},
		},
		recipes: []entity.Recipe{
			{Id: "r1", Title: "Tofu Stir Fry", Diets: []string{"vegan"}, Cuisine: "asian", Ingredients: []string{"Tofu", "Rice"}, TotalCost: price("12.00")},
			{Id: "r2", Title: "Pasta Marinara", Diets: []string{"vegetarian"}, Cuisine: "italian", Ingredients: []string{"Pasta", "Tomato Sauce"}, TotalCost: price("8.00")},
			{Id: "r3", Title: "Veggie Curry", Diets: []string{"vegan"}, Cuisine: "indian", Ingredients: []string{"Tofu", "Coconut Milk"}, TotalCost: price("15.00")},
			{Id: "r4", Title: "Steak Dinner", Diets: []string{"omnivore"}, Ingredients: []string{"Beef"}, TotalCost: price("25.00")},
		},
		promotions: []entity.Promotion{
			{ItemId: "p2", ItemName: "Milk", DiscountPercent: price("20"), InStock: true},
			{ItemId: "p4", ItemName: "Quinoa", DiscountPercent: price("0"), InStock: false, ReplacementSuggestion: "Brown Rice"},
		},
	}
}

func testDeps(cat *fakeCatalog) (Deps, *fakeProfiles, *fakeCarts) {
	profiles := newFakeProfiles()
	carts := newFakeCarts()
	return Deps{
		Profiles:            profiles,
		Catalog:             cat,
		Carts:               carts,
		DefaultBudget:       price("50"),
		RecommendationLimit: 8,
		Now:                 func() time.Time { return fixedNow },
	}, profiles, carts
}
