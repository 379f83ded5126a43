// Package seed holds the demo catalog loaded by cmd/seed and cmd/simulate.
package seed

import (
	"time"

	"smart-grocery-be/internal/entity"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func product(id, name, category, price, unit string, stock int, aisle string, diets ...string) entity.Product {
	return entity.Product{
		ItemId:        id,
		Name:          name,
		Category:      category,
		Price:         d(price),
		Unit:          unit,
		Diets:         diets,
		StockQuantity: stock,
		Aisle:         aisle,
	}
}

func Products() []entity.Product {
	return []entity.Product{
		product("P001", "Bananas", "produce", "0.59", "lb", 200, "1", "vegan", "vegetarian", "gluten-free", "paleo"),
		product("P002", "Apples", "produce", "1.29", "lb", 150, "1", "vegan", "vegetarian", "gluten-free", "paleo"),
		product("P003", "Spinach", "produce", "2.49", "bag", 60, "1", "vegan", "vegetarian", "gluten-free", "keto", "low-carb"),
		product("P004", "Tomatoes", "produce", "1.99", "lb", 80, "1", "vegan", "vegetarian", "gluten-free", "keto"),
		product("P005", "Onions", "produce", "0.99", "lb", 120, "1", "vegan", "vegetarian", "gluten-free"),
		product("P006", "Garlic", "produce", "0.50", "bulb", 90, "1", "vegan", "vegetarian", "gluten-free", "keto"),
		product("P007", "Bell Peppers", "produce", "1.49", "each", 70, "1", "vegan", "vegetarian", "gluten-free", "keto", "low-carb"),
		product("P008", "Avocados", "produce", "1.75", "each", 0, "1", "vegan", "vegetarian", "keto", "paleo", "low-carb"),
		product("P009", "Milk", "dairy", "3.49", "gallon", 40, "7", "vegetarian"),
		product("P010", "Oat Milk", "dairy", "3.99", "half gallon", 25, "7", "vegan", "dairy-free"),
		product("P011", "Almond Milk", "dairy", "3.79", "half gallon", 30, "7", "vegan", "dairy-free", "keto"),
		product("P012", "Greek Yogurt", "dairy", "4.99", "tub", 35, "7", "vegetarian", "high-protein"),
		product("P013", "Cheddar Cheese", "dairy", "4.49", "block", 45, "7", "vegetarian", "keto"),
		product("P014", "Butter", "dairy", "4.29", "lb", 50, "7", "vegetarian", "keto"),
		product("P015", "Eggs", "dairy", "3.29", "dozen", 60, "7", "vegetarian", "keto", "paleo", "high-protein"),
		product("P016", "Tofu", "protein", "2.49", "block", 40, "5", "vegan", "vegetarian", "high-protein"),
		product("P017", "Chicken Breast", "protein", "6.99", "lb", 30, "6", "keto", "paleo", "high-protein", "gluten-free"),
		product("P018", "Ground Beef", "protein", "5.99", "lb", 25, "6", "keto", "paleo", "high-protein"),
		product("P019", "Salmon", "protein", "9.99", "lb", 15, "6", "keto", "paleo", "mediterranean", "high-protein"),
		product("P020", "Black Beans", "pantry", "1.09", "can", 100, "4", "vegan", "vegetarian", "gluten-free", "high-protein"),
		product("P021", "Chickpeas", "pantry", "1.19", "can", 90, "4", "vegan", "vegetarian", "gluten-free", "mediterranean"),
		product("P022", "Lentils", "pantry", "1.79", "bag", 70, "4", "vegan", "vegetarian", "gluten-free", "high-protein"),
		product("P023", "Rice", "grains", "2.29", "bag", 80, "3", "vegan", "vegetarian", "gluten-free"),
		product("P024", "Quinoa", "grains", "4.49", "bag", 20, "3", "vegan", "vegetarian", "gluten-free"),
		product("P025", "Pasta", "grains", "1.49", "box", 110, "3", "vegan", "vegetarian"),
		product("P026", "Whole Wheat Bread", "bakery", "2.99", "loaf", 40, "2", "vegan", "vegetarian"),
		product("P027", "Tomato Sauce", "pantry", "1.89", "jar", 75, "4", "vegan", "vegetarian", "gluten-free"),
		product("P028", "Olive Oil", "pantry", "7.99", "bottle", 35, "4", "vegan", "vegetarian", "keto", "mediterranean", "paleo"),
		product("P029", "Coconut Milk", "pantry", "2.19", "can", 50, "4", "vegan", "dairy-free", "keto", "paleo"),
		product("P030", "Curry Paste", "pantry", "3.49", "jar", 30, "4", "vegan", "vegetarian"),
		product("P031", "Soy Sauce", "pantry", "2.79", "bottle", 45, "4", "vegan", "vegetarian"),
		product("P032", "Tortillas", "bakery", "2.59", "pack", 55, "2", "vegan", "vegetarian"),
		product("P033", "Feta Cheese", "dairy", "3.99", "tub", 20, "7", "vegetarian", "mediterranean"),
		product("P034", "Cucumber", "produce", "0.79", "each", 65, "1", "vegan", "vegetarian", "gluten-free", "keto", "mediterranean"),
		product("P035", "Honey", "pantry", "5.49", "jar", 25, "4", "vegetarian", "paleo"),
	}
}

func recipe(id, title, cuisine, cost string, servings int, diets, ingredients []string, tags ...string) entity.Recipe {
	return entity.Recipe{
		Id:          id,
		Title:       title,
		Cuisine:     cuisine,
		TotalCost:   d(cost),
		Servings:    servings,
		Diets:       diets,
		Ingredients: ingredients,
		Tags:        tags,
	}
}

func Recipes() []entity.Recipe {
	return []entity.Recipe{
		recipe("R001", "Vegetable Stir Fry", "asian", "12.50", 4,
			[]string{"vegan", "vegetarian"},
			[]string{"Tofu", "Bell Peppers", "Garlic", "Soy Sauce", "Rice"}, "quick"),
		recipe("R002", "Pasta Marinara", "italian", "9.00", 4,
			[]string{"vegan", "vegetarian"},
			[]string{"Pasta", "Tomato Sauce", "Garlic", "Olive Oil"}, "quick"),
		recipe("R003", "Chickpea Curry", "indian", "14.00", 4,
			[]string{"vegan", "vegetarian", "gluten-free"},
			[]string{"Chickpeas", "Coconut Milk", "Curry Paste", "Onions", "Rice"}),
		recipe("R004", "Black Bean Tacos", "mexican", "11.00", 4,
			[]string{"vegan", "vegetarian"},
			[]string{"Black Beans", "Tortillas", "Tomatoes", "Onions", "Avocados"}, "quick"),
		recipe("R005", "Greek Salad", "mediterranean", "13.00", 2,
			[]string{"vegetarian", "mediterranean", "gluten-free"},
			[]string{"Cucumber", "Tomatoes", "Feta Cheese", "Olive Oil", "Onions"}),
		recipe("R006", "Lentil Soup", "mediterranean", "8.50", 6,
			[]string{"vegan", "vegetarian", "gluten-free"},
			[]string{"Lentils", "Onions", "Garlic", "Tomatoes"}),
		recipe("R007", "Spinach Omelette", "american", "7.00", 2,
			[]string{"vegetarian", "keto", "low-carb", "gluten-free"},
			[]string{"Eggs", "Spinach", "Cheddar Cheese", "Butter"}, "breakfast"),
		recipe("R008", "Grilled Chicken Bowl", "american", "18.00", 2,
			[]string{"paleo", "high-protein", "gluten-free"},
			[]string{"Chicken Breast", "Quinoa", "Spinach", "Olive Oil"}),
		recipe("R009", "Baked Salmon", "mediterranean", "22.00", 2,
			[]string{"keto", "paleo", "mediterranean", "low-carb"},
			[]string{"Salmon", "Olive Oil", "Garlic", "Spinach"}),
		recipe("R010", "Beef Wellington", "british", "45.00", 6,
			[]string{"omnivore"},
			[]string{"Ground Beef", "Butter", "Eggs", "Onions", "Garlic", "Spinach", "Whole Wheat Bread", "Olive Oil", "Cheddar Cheese"}, "advanced"),
		recipe("R011", "Quinoa Power Bowl", "american", "15.50", 2,
			[]string{"vegan", "vegetarian", "gluten-free", "high-protein"},
			[]string{"Quinoa", "Black Beans", "Spinach", "Avocados"}),
		recipe("R012", "Tofu Coconut Curry", "thai", "16.00", 4,
			[]string{"vegan", "vegetarian", "dairy-free"},
			[]string{"Tofu", "Coconut Milk", "Curry Paste", "Bell Peppers", "Rice"}),
	}
}

func promo(itemID, name, pct string, inStock bool, replacement string, validUntil *time.Time) entity.Promotion {
	return entity.Promotion{
		ItemId:                itemID,
		ItemName:              name,
		DiscountPercent:       d(pct),
		InStock:               inStock,
		ReplacementSuggestion: replacement,
		ValidUntil:            validUntil,
	}
}

// Promotions returns the demo promotions, valid for thirty days from now.
func Promotions(now time.Time) []entity.Promotion {
	until := now.Add(30 * 24 * time.Hour)
	return []entity.Promotion{
		promo("P009", "Milk", "20", true, "", &until),
		promo("P016", "Tofu", "15", true, "", &until),
		promo("P019", "Salmon", "10", true, "", &until),
		promo("P025", "Pasta", "25", true, "", &until),
		promo("P008", "Avocados", "0", false, "Cucumber", nil),
		promo("P028", "Olive Oil", "30", true, "", &until),
	}
}
