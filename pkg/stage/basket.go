package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/selector"
	"smart-grocery-be/pkg/store"
)

type basketHandler struct {
	deps Deps
}

// Handle is the only stage that writes the persisted cart. Every write is
// keyed by the session step, so a turn retried after a failed commit replays
// the recorded result instead of changing the cart twice.
func (h *basketHandler) Handle(ctx context.Context, in Input) (store.Artifacts, error) {
	if res, ok, err := h.replay(ctx, in.UserID, operationToken(in)); err != nil || ok {
		return res, err
	}

	switch in.Plan.Category {
	case intent.CartOperation:
		return h.cartCommand(ctx, in)
	case intent.BasketBuilder:
		return h.recipeBasket(ctx, in)
	default:
		return h.mealBasket(ctx, in)
	}
}

func (h *basketHandler) loadCart(ctx context.Context, userID string) (entity.Cart, error) {
	cart, err := h.deps.Carts.GetCart(ctx, userID)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("load cart: %w", err)
	}
	cart.UserId = userID
	return cart, nil
}

func operationToken(in Input) string {
	return fmt.Sprintf("%s#%d/%s", in.SessionID, in.StepNumber, in.Plan.Category)
}

func (h *basketHandler) replay(ctx context.Context, userID, token string) (store.Artifacts, bool, error) {
	op, err := h.deps.Carts.FindCartOperation(ctx, userID, token)
	if err != nil {
		return store.Artifacts{}, false, fmt.Errorf("find cart operation: %w", err)
	}
	if op == nil {
		return store.Artifacts{}, false, nil
	}
	cart, err := h.loadCart(ctx, userID)
	if err != nil {
		return store.Artifacts{}, false, err
	}
	h.deps.Logger.Info("STAGE", "Cart operation already applied, replaying result", map[string]interface{}{
		"user_id": userID,
		"token":   token,
	})
	return cartResult(cart, op.Message, op.Missing), true, nil
}

// commit stores cart with the reply it produced.
func (h *basketHandler) commit(ctx context.Context, in Input, cart entity.Cart, message string, missing []string) (store.Artifacts, error) {
	now := h.deps.Now()
	cart.UpdatedAt = now
	op := entity.CartOperation{
		UserId:    in.UserID,
		Token:     operationToken(in),
		Message:   message,
		Missing:   missing,
		CreatedAt: now,
	}
	err := h.deps.Carts.ApplyCartOperation(ctx, cart, op)
	if errors.Is(err, ErrCartOperationApplied) {
		res, _, err := h.replay(ctx, in.UserID, op.Token)
		return res, err
	}
	if err != nil {
		return store.Artifacts{}, fmt.Errorf("save cart: %w", err)
	}
	return cartResult(cart, message, missing), nil
}

func cartResult(cart entity.Cart, message string, missing []string) store.Artifacts {
	return store.Artifacts{Cart: &store.CartArtifact{Cart: cart, Message: message, Missing: missing}}
}

func (h *basketHandler) cartCommand(ctx context.Context, in Input) (store.Artifacts, error) {
	cart, err := h.loadCart(ctx, in.UserID)
	if err != nil {
		return store.Artifacts{}, err
	}
	name := in.Classification.ExtractedProduct

	switch in.Plan.CartAction {
	case intent.CartClear:
		cart.Items = nil
		return h.commit(ctx, in, cart, "Your cart is now empty.", nil)

	case intent.CartDelete:
		if len(cart.Items) == 0 {
			return cartResult(cart, "Your cart is empty.", nil), nil
		}
		idx := findByName(cart, name)
		if name == "" || idx < 0 {
			return cartResult(cart, fmt.Sprintf("%s is not in your cart.", displayName(name)), []string{name}), nil
		}
		removed := cart.Items[idx]
		cart.Items = append(cart.Items[:idx:idx], cart.Items[idx+1:]...)
		msg := fmt.Sprintf("I've removed %s from your cart. Your cart now has %d items with a total of %s.",
			removed.Name, cart.Count(), money(cart.Total()))
		return h.commit(ctx, in, cart, msg, nil)

	default:
		if name == "" {
			return cartResult(cart, "Which product would you like to add?", nil), nil
		}
		product, err := h.deps.Catalog.FindProductByName(ctx, name)
		if err != nil {
			return store.Artifacts{}, fmt.Errorf("find product: %w", err)
		}
		if product == nil {
			return cartResult(cart, fmt.Sprintf("Sorry, I couldn't find %s in our catalog.", name), []string{name}), nil
		}
		qty := in.Classification.Quantity
		if qty <= 0 {
			qty = 1
		}
		addToCart(&cart, *product, qty)
		msg := fmt.Sprintf("Great! I've added %d %s to your cart. Your cart now has %d items with a total of %s.",
			qty, product.Name, cart.Count(), money(cart.Total()))
		return h.commit(ctx, in, cart, msg, nil)
	}
}

func (h *basketHandler) recipeBasket(ctx context.Context, in Input) (store.Artifacts, error) {
	title := in.Classification.ExtractedProduct
	if in.Artifacts.Intent != nil && in.Artifacts.Intent.Product != "" {
		title = in.Artifacts.Intent.Product
	}
	cart, err := h.loadCart(ctx, in.UserID)
	if err != nil {
		return store.Artifacts{}, err
	}
	if title == "" {
		return cartResult(cart, "Which recipe should I shop for?", nil), nil
	}

	recipe, err := h.deps.Catalog.FindRecipeByTitle(ctx, title)
	if err != nil {
		return store.Artifacts{}, fmt.Errorf("find recipe: %w", err)
	}
	if recipe == nil {
		return cartResult(cart, fmt.Sprintf("I couldn't find a recipe called %s.", title), []string{title}), nil
	}
	return h.fillFromIngredients(ctx, in, cart, recipe.Ingredients)
}

func (h *basketHandler) mealBasket(ctx context.Context, in Input) (store.Artifacts, error) {
	cart, err := h.loadCart(ctx, in.UserID)
	if err != nil {
		return store.Artifacts{}, err
	}
	if in.Artifacts.Recipes == nil || len(in.Artifacts.Recipes.Recipes) == 0 {
		return cartResult(cart, "There were no recipes to shop for.", nil), nil
	}

	var ingredients []string
	for _, r := range in.Artifacts.Recipes.Recipes {
		ingredients = append(ingredients, r.Ingredients...)
	}
	return h.fillFromIngredients(ctx, in, cart, ingredients)
}

// fillFromIngredients buys the cheapest matching products for each unique
// ingredient that fits the budget.
func (h *basketHandler) fillFromIngredients(ctx context.Context, in Input, cart entity.Cart, ingredients []string) (store.Artifacts, error) {
	names := uniqueLower(ingredients)
	products, err := h.deps.Catalog.FindProducts(ctx, ProductFilter{Names: names})
	if err != nil {
		return store.Artifacts{}, fmt.Errorf("find ingredient products: %w", err)
	}

	found := make(map[string]bool, len(products))
	candidates := make([]selector.Candidate[entity.Product], 0, len(products))
	for _, p := range products {
		key := strings.ToLower(p.Name)
		if found[key] {
			continue
		}
		found[key] = true
		candidates = append(candidates, selector.Candidate[entity.Product]{ID: p.ItemId, Price: p.Price, Item: p})
	}

	var missing []string
	for _, n := range names {
		if !found[n] {
			missing = append(missing, n)
		}
	}

	picked := selector.Select(candidates, budgetFor(in, h.deps))
	for _, p := range picked.Items() {
		addToCart(&cart, p, 1)
	}

	msg := fmt.Sprintf("Added %d ingredients (%s) to your cart.", len(picked.Selected), money(picked.TotalCost))
	if skipped := len(candidates) - len(picked.Selected); skipped > 0 {
		msg += fmt.Sprintf(" %d items did not fit your budget.", skipped)
	}
	if len(picked.Selected) == 0 {
		return cartResult(cart, msg, missing), nil
	}
	return h.commit(ctx, in, cart, msg, missing)
}

func addToCart(cart *entity.Cart, p entity.Product, qty int) {
	if i := cart.Find(p.ItemId); i >= 0 {
		cart.Items[i].Quantity += qty
		return
	}
	cart.Items = append(cart.Items, entity.CartItem{
		ItemId:   p.ItemId,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: qty,
		InStock:  p.InStock(),
	})
}

// findByName matches exact names first, then singular/plural and substrings.
func findByName(cart entity.Cart, name string) int {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return -1
	}
	for i, it := range cart.Items {
		if strings.EqualFold(it.Name, name) {
			return i
		}
	}
	singular := strings.TrimSuffix(name, "s")
	for i, it := range cart.Items {
		lower := strings.ToLower(it.Name)
		if strings.Contains(lower, singular) || strings.Contains(singular, lower) {
			return i
		}
	}
	return -1
}

func uniqueLower(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := strings.ToLower(strings.TrimSpace(it))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

func displayName(name string) string {
	if name == "" {
		return "That item"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
