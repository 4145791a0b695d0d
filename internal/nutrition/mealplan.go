package nutrition

import (
	"fmt"

	"fitplan/internal/models"
)

const planDays = 7

// Macro split as (share of calories, kcal per gram).
const (
	proteinShare = 0.25
	carbsShare   = 0.45
	fatShare     = 0.30

	proteinKcalPerGram = 4
	carbsKcalPerGram   = 4
	fatKcalPerGram     = 9
)

type Macros struct {
	ProteinG int `json:"protein_g"`
	CarbsG   int `json:"carbs_g"`
	FatG     int `json:"fat_g"`
}

type Meals struct {
	Breakfast string `json:"breakfast"`
	Lunch     string `json:"lunch"`
	Snack     string `json:"snack"`
	Dinner    string `json:"dinner"`
}

type Day struct {
	Day            string `json:"day"`
	CaloriesTarget int    `json:"calories_target"`
	Macros         Macros `json:"macros"`
	Meals          Meals  `json:"meals"`
}

// MealPlan is recomputed on every request and never stored.
type MealPlan struct {
	Days              []Day    `json:"days"`
	ShoppingList      []string `json:"shopping_list"`
	DailyCalories     int      `json:"daily_calories"`
	DietaryPreference string   `json:"dietary_preference"`
}

// BaseMeals is used as is for unrecognised dietary preferences.
var BaseMeals = Meals{
	Breakfast: "Oats with milk/soy + fruit",
	Lunch:     "Rice/Chapati + Protein + Salad",
	Snack:     "Yogurt/Buttermilk + Nuts",
	Dinner:    "Light protein + Vegetables + Small carbs",
}

var shoppingList = []string{
	"Rice / Wheat flour (chapati)",
	"Vegetables (seasonal)",
	"Fruits (bananas, apples)",
	"Legumes (lentils, chickpeas)",
	"Dairy / milk / yogurt",
	"Eggs / Chicken / Fish or Paneer",
	"Nuts (almonds, peanuts)",
	"Cooking oil (olive/groundnut)",
}

// MacrosFor splits calories into gram targets. Each macro is truncated on its
// own, so the three need not add back up to calories.
func MacrosFor(calories int) Macros {
	c := float64(calories)
	return Macros{
		ProteinG: int(c * proteinShare / proteinKcalPerGram),
		CarbsG:   int(c * carbsShare / carbsKcalPerGram),
		FatG:     int(c * fatShare / fatKcalPerGram),
	}
}

// MealsFor applies the override for a lower-cased dietary preference.
func MealsFor(pref string) Meals {
	meals := BaseMeals
	switch pref {
	case "vegetarian":
		meals.Lunch = "Rice/Chapati + Paneer/Legumes + Salad"
		meals.Dinner = "Lentil soup + Veg stir fry"
	case "non-veg", "mixed", "non-vegetarian":
		meals.Lunch = "Rice/Chapati + Chicken/Fish + Salad"
		meals.Dinner = "Grilled chicken/fish + Vegetables"
	case "vegan":
		meals.Breakfast = "Oats with soy milk + fruit"
		meals.Lunch = "Rice/Chapati + Legumes + Salad"
		meals.Snack = "Nuts + Fruit"
		meals.Dinner = "Tofu stir fry + Vegetables"
	}
	return meals
}

// ShoppingList returns a copy of the fixed shopping list.
func ShoppingList() []string {
	return append([]string(nil), shoppingList...)
}

// GeneratePlan builds the seven-day plan for p. Every day carries the same
// target, macros and meals; only the label changes.
func GeneratePlan(p *models.Profile) MealPlan {
	calories := EstimateCalories(p)
	pref := p.Metrics().DietaryPref
	macros := MacrosFor(calories)
	meals := MealsFor(pref)

	days := make([]Day, 0, planDays)
	for d := 1; d <= planDays; d++ {
		days = append(days, Day{
			Day:            fmt.Sprintf("Day %d", d),
			CaloriesTarget: calories,
			Macros:         macros,
			Meals:          meals,
		})
	}

	return MealPlan{
		Days:              days,
		ShoppingList:      ShoppingList(),
		DailyCalories:     calories,
		DietaryPreference: pref,
	}
}
