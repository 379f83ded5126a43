package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/stage"
)

// Catalog is an in-memory product, recipe, promotion, profile and cart
// store. It backs the simulator and tests.
type Catalog struct {
	mu         sync.RWMutex
	products   []entity.Product
	recipes    []entity.Recipe
	promotions []entity.Promotion
	profiles   map[string]*entity.UserProfile
	carts      map[string]entity.Cart
	operations map[string][]entity.CartOperation // per user, oldest first
}

// KeepCartOperations bounds the idempotency tokens kept per user.
const KeepCartOperations = 50

var (
	_ stage.Catalog           = (*Catalog)(nil)
	_ stage.ProfileRepository = (*Catalog)(nil)
	_ stage.CartRepository    = (*Catalog)(nil)
)

func NewCatalog(products []entity.Product, recipes []entity.Recipe, promotions []entity.Promotion) *Catalog {
	return &Catalog{
		products:   slices.Clone(products),
		recipes:    slices.Clone(recipes),
		promotions: slices.Clone(promotions),
		profiles:   make(map[string]*entity.UserProfile),
		carts:      make(map[string]entity.Cart),
		operations: make(map[string][]entity.CartOperation),
	}
}

func (c *Catalog) FindRecipes(_ context.Context, f stage.RecipeFilter) ([]entity.Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

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

func (c *Catalog) FindRecipeByTitle(_ context.Context, title string) (*entity.Recipe, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	title = strings.ToLower(strings.TrimSpace(title))
	for _, r := range c.recipes {
		if strings.ToLower(r.Title) == title {
			r := r
			return &r, nil
		}
	}
	for _, r := range c.recipes {
		if title != "" && strings.Contains(strings.ToLower(r.Title), title) {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (c *Catalog) FindProducts(_ context.Context, f stage.ProductFilter) ([]entity.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []entity.Product
	for _, p := range c.products {
		if len(f.Names) > 0 && !slices.Contains(f.Names, strings.ToLower(p.Name)) {
			continue
		}
		if f.Diet != "" && !p.MatchesDiet(f.Diet) {
			continue
		}
		if f.Category != "" && !strings.EqualFold(p.Category, f.Category) {
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

// FindProductByName matches exact names first, then singular and plural forms.
func (c *Catalog) FindProductByName(_ context.Context, name string) (*entity.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, nil
	}
	for _, p := range c.products {
		if strings.ToLower(p.Name) == name {
			p := p
			return &p, nil
		}
	}
	stem := strings.TrimSuffix(name, "s")
	for _, p := range c.products {
		if strings.TrimSuffix(strings.ToLower(p.Name), "s") == stem {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func (c *Catalog) FindPromotions(_ context.Context, itemIDs []string) ([]entity.Promotion, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []entity.Promotion
	for _, p := range c.promotions {
		if len(itemIDs) == 0 || slices.Contains(itemIDs, p.ItemId) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (c *Catalog) GetUserProfile(_ context.Context, userID string) (*entity.UserProfile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profiles[userID].Clone(), nil
}

func (c *Catalog) SaveUserProfile(_ context.Context, profile *entity.UserProfile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.profiles[profile.UserId] = profile.Clone()
	return nil
}

func (c *Catalog) GetCart(_ context.Context, userID string) (entity.Cart, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cart, ok := c.carts[userID]
	if !ok {
		return entity.Cart{UserId: userID}, nil
	}
	return cart.Clone(), nil
}

func (c *Catalog) SaveCart(_ context.Context, cart entity.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[cart.UserId] = cart.Clone()
	return nil
}

func (c *Catalog) ApplyCartOperation(_ context.Context, cart entity.Cart, op entity.CartOperation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.findOperation(op.UserId, op.Token) != nil {
		return stage.ErrCartOperationApplied
	}
	c.carts[cart.UserId] = cart.Clone()

	op.Missing = slices.Clone(op.Missing)
	ops := append(c.operations[op.UserId], op)
	if len(ops) > KeepCartOperations {
		ops = slices.Clone(ops[len(ops)-KeepCartOperations:])
	}
	c.operations[op.UserId] = ops
	return nil
}

func (c *Catalog) FindCartOperation(_ context.Context, userID, token string) (*entity.CartOperation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findOperation(userID, token), nil
}

func (c *Catalog) findOperation(userID, token string) *entity.CartOperation {
	for _, op := range c.operations[userID] {
		if op.Token == token {
			out := op
			out.Missing = slices.Clone(op.Missing)
			return &out
		}
	}
	return nil
}
