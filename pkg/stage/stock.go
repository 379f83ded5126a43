package stage

import (
	"context"
	"fmt"
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/store"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type stockHandler struct {
	deps Deps
}

func (h *stockHandler) Handle(ctx context.Context, in Input) (store.Artifacts, error) {
	switch in.Plan.Category {
	case intent.PromotionInquiry:
		promos, err := h.deps.Catalog.FindPromotions(ctx, nil)
		if err != nil {
			return store.Artifacts{}, fmt.Errorf("find promotions: %w", err)
		}
		return store.Artifacts{Promotions: &store.PromotionArtifact{Promotions: h.active(promos)}}, nil

	case intent.SubstitutionRequest:
		var ids []string
		if g := in.Artifacts.GeneralResponse; g != nil {
			for _, p := range g.Products {
				ids = append(ids, p.ItemId)
			}
		}
		if len(ids) == 0 {
			return store.Artifacts{Promotions: &store.PromotionArtifact{}}, nil
		}
		promos, err := h.deps.Catalog.FindPromotions(ctx, ids)
		if err != nil {
			return store.Artifacts{}, fmt.Errorf("find promotions: %w", err)
		}
		return store.Artifacts{Promotions: &store.PromotionArtifact{Promotions: h.active(promos)}}, nil
	}

	var cart entity.Cart
	var message string
	if a := in.Artifacts.Cart; a != nil && in.Plan.Category != intent.CartOperation {
		cart = a.Cart.Clone()
		message = a.Message
	} else {
		loaded, err := h.deps.Carts.GetCart(ctx, in.UserID)
		if err != nil {
			return store.Artifacts{}, fmt.Errorf("load cart: %w", err)
		}
		cart = loaded
		cart.UserId = in.UserID
	}

	priced, err := h.price(ctx, cart)
	if err != nil {
		return store.Artifacts{}, err
	}
	if in.Plan.Category == intent.CartOperation && len(priced.Items) == 0 {
		message = "Your cart is empty."
	}
	return store.Artifacts{Cart: &store.CartArtifact{Cart: priced, Message: message}}, nil
}

func (h *stockHandler) price(ctx context.Context, cart entity.Cart) (entity.Cart, error) {
	return PriceCart(ctx, h.deps.Catalog, cart, h.deps.Now())
}

func (h *stockHandler) active(promos []entity.Promotion) []entity.Promotion {
	return activeAt(promos, h.deps.Now())
}

// PriceCart applies the promotions active at now and stock status to a copy
// of cart.
func PriceCart(ctx context.Context, catalog Catalog, cart entity.Cart, now time.Time) (entity.Cart, error) {
	if len(cart.Items) == 0 {
		return cart, nil
	}
	ids := make([]string, len(cart.Items))
	for i, it := range cart.Items {
		ids[i] = it.ItemId
	}
	promos, err := catalog.FindPromotions(ctx, ids)
	if err != nil {
		return entity.Cart{}, fmt.Errorf("find promotions: %w", err)
	}
	byItem := make(map[string]entity.Promotion, len(promos))
	for _, p := range activeAt(promos, now) {
		byItem[p.ItemId] = p
	}

	out := cart.Clone()
	for i := range out.Items {
		it := &out.Items[i]
		it.DiscountedPrice = nil
		it.InStock = true
		it.Replacement = ""
		promo, ok := byItem[it.ItemId]
		if !ok {
			continue
		}
		if !promo.InStock {
			it.InStock = false
			it.Replacement = promo.ReplacementSuggestion
		}
		if promo.DiscountPercent.IsPositive() {
			d := Discounted(it.Price, promo.DiscountPercent)
			it.DiscountedPrice = &d
		}
	}
	return out, nil
}

func activeAt(promos []entity.Promotion, now time.Time) []entity.Promotion {
	out := make([]entity.Promotion, 0, len(promos))
	for _, p := range promos {
		if p.Active(now) {
			out = append(out, p)
		}
	}
	return out
}

// Discounted returns price reduced by pct percent, rounded to cents.
func Discounted(price, pct decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(1).Sub(pct.Div(hundred))).Round(2)
}
