package stage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smart-grocery-be/internal/entity"
	"smart-grocery-be/pkg/intent"
	"smart-grocery-be/pkg/store"
)

const helpText = "I can check prices and stock, tell you which aisle to visit, suggest substitutes, " +
	"recommend products for your diet, plan meals on a budget and manage your cart."

const responderTimeout = 5 * time.Second

var substitutions = map[string][]string{
	"butter":     {"margarine", "coconut oil", "olive oil"},
	"milk":       {"almond milk", "oat milk", "soy milk"},
	"eggs":       {"flaxseed", "applesauce", "banana"},
	"egg":        {"flaxseed", "applesauce", "banana"},
	"sugar":      {"honey", "maple syrup", "stevia"},
	"flour":      {"almond flour", "oat flour", "coconut flour"},
	"sour cream": {"greek yogurt"},
	"cream":      {"coconut cream", "greek yogurt"},
	"beef":       {"ground turkey", "lentils", "mushrooms"},
	"rice":       {"quinoa", "cauliflower rice"},
	"pasta":      {"zucchini noodles", "whole wheat pasta"},
	"cheese":     {"nutritional yeast", "vegan cheese"},
}

type generalHandler struct {
	deps Deps
}

func (h *generalHandler) Handle(ctx context.Context, in Input) (store.Artifacts, error) {
	name := in.Classification.ExtractedProduct

	switch in.Plan.Category {
	case intent.PriceInquiry, intent.AvailabilityCheck, intent.StoreNavigation:
		if name == "" {
			return general("Which product are you asking about?", nil), nil
		}
		p, err := h.deps.Catalog.FindProductByName(ctx, name)
		if err != nil {
			return store.Artifacts{}, fmt.Errorf("find product: %w", err)
		}
		if p == nil {
			return general(fmt.Sprintf("Sorry, we don't carry %s.", name), nil), nil
		}
		return general(describe(in.Plan.Category, *p), []entity.Product{*p}), nil

	case intent.PromotionInquiry:
		return general(describePromotions(in.Artifacts.Promotions), nil), nil

	case intent.SubstitutionRequest:
		return h.substitutes(ctx, name)
	}

	return general(h.answer(ctx, in.Text), nil), nil
}

func general(text string, products []entity.Product) store.Artifacts {
	return store.Artifacts{GeneralResponse: &store.GeneralArtifact{Text: text, Products: products}}
}

func describe(category intent.Category, p entity.Product) string {
	switch category {
	case intent.AvailabilityCheck:
		if p.InStock() {
			return fmt.Sprintf("Yes, %s is in stock (%d available).", p.Name, p.StockQuantity)
		}
		return fmt.Sprintf("%s is currently out of stock.", p.Name)
	case intent.StoreNavigation:
		if p.Aisle != "" {
			return fmt.Sprintf("%s is in aisle %s.", p.Name, p.Aisle)
		}
		return fmt.Sprintf("You'll find %s in the %s section.", p.Name, p.Category)
	default:
		unit := ""
		if p.Unit != "" {
			unit = " per " + p.Unit
		}
		return fmt.Sprintf("%s costs %s%s.", p.Name, money(p.Price), unit)
	}
}

func describePromotions(a *store.PromotionArtifact) string {
	if a == nil || len(a.Promotions) == 0 {
		return "There are no promotions running right now."
	}
	lines := make([]string, 0, len(a.Promotions))
	for _, p := range a.Promotions {
		name := p.ItemName
		if name == "" {
			name = p.ItemId
		}
		lines = append(lines, fmt.Sprintf("- %s: %s%% off", name, p.DiscountPercent.String()))
	}
	return strings.Join(lines, "\n")
}

func (h *generalHandler) substitutes(ctx context.Context, name string) (store.Artifacts, error) {
	if name == "" {
		return general("What would you like a substitute for?", nil), nil
	}
	options, ok := substitutions[name]
	if !ok {
		options, ok = substitutions[strings.TrimSuffix(name, "s")]
	}
	if !ok {
		return general(fmt.Sprintf("I don't have a substitute suggestion for %s yet.", name), nil), nil
	}

	products, err := h.deps.Catalog.FindProducts(ctx, ProductFilter{Names: options, InStockOnly: true})
	if err != nil {
		return store.Artifacts{}, fmt.Errorf("find substitutes: %w", err)
	}
	priced := make(map[string]entity.Product, len(products))
	for _, p := range products {
		priced[strings.ToLower(p.Name)] = p
	}

	parts := make([]string, len(options))
	for i, o := range options {
		if p, ok := priced[o]; ok {
			parts[i] = fmt.Sprintf("%s (%s)", p.Name, money(p.Price))
		} else {
			parts[i] = o
		}
	}
	return general(fmt.Sprintf("Instead of %s you could try: %s.", name, strings.Join(parts, ", ")), products), nil
}

// answer asks the responder and falls back to the help text.
func (h *generalHandler) answer(ctx context.Context, question string) string {
	if h.deps.Responder == nil || strings.TrimSpace(question) == "" {
		return helpText
	}
	ctx, cancel := context.WithTimeout(ctx, responderTimeout)
	defer cancel()

	text, err := h.deps.Responder.Answer(ctx, question)
	if err != nil || strings.TrimSpace(text) == "" {
		h.deps.Logger.Warn("STAGE", "Responder unavailable, using help text", map[string]interface{}{
			"error": fmt.Sprint(err),
		})
		return helpText
	}
	return strings.TrimSpace(text)
}
