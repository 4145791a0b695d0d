package bot

import (
	"fmt"
	"strconv"
	"strings"

	"fitplan/internal/ai"
	"fitplan/internal/models"
	"fitplan/internal/nutrition"
)

// formatMealPlan renders the plan for a chat message. Every day of the plan has
// the same menu, so it is printed once.
func formatMealPlan(plan nutrition.MealPlan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🥗 Your %d-day meal plan (%s)\n", len(plan.Days), plan.DietaryPreference)
	fmt.Fprintf(&b, "Daily target: %d kcal\n", plan.DailyCalories)

	if len(plan.Days) > 0 {
		day := plan.Days[0]
		fmt.Fprintf(&b, "Macros: protein %d g, carbs %d g, fat %d g\n\n",
			day.Macros.ProteinG, day.Macros.CarbsG, day.Macros.FatG)
		fmt.Fprintf(&b, "Every day, %s to %s:\n", day.Day, plan.Days[len(plan.Days)-1].Day)
		fmt.Fprintf(&b, "• Breakfast: %s\n", day.Meals.Breakfast)
		fmt.Fprintf(&b, "• Lunch: %s\n", day.Meals.Lunch)
		fmt.Fprintf(&b, "• Snack: %s\n", day.Meals.Snack)
		fmt.Fprintf(&b, "• Dinner: %s\n", day.Meals.Dinner)
	}

	b.WriteString("\n🛒 Shopping list:\n")
	for _, item := range plan.ShoppingList {
		fmt.Fprintf(&b, "• %s\n", item)
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatProfile lists the fields that are set.
func formatProfile(p *models.Profile) string {
	if p.IsEmpty() {
		return "Your profile is empty."
	}

	var lines []string
	add := func(label, value string) {
		lines = append(lines, label+": "+value)
	}
	if p.Name != nil {
		add("Name", *p.Name)
	}
	if p.Gender != nil {
		add("Gender", *p.Gender)
	}
	if p.Age != nil {
		add("Age", strconv.Itoa(*p.Age))
	}
	if p.HeightCM != nil {
		add("Height", formatNumber(*p.HeightCM)+" cm")
	}
	if p.WeightKG != nil {
		add("Weight", formatNumber(*p.WeightKG)+" kg")
	}
	if p.ActivityLevel != nil {
		add("Activity", *p.ActivityLevel)
	}
	if p.DietaryPref != nil {
		add("Diet", *p.DietaryPref)
	}
	if p.Allergies != nil {
		add("Allergies", *p.Allergies)
	}
	if p.Goals != nil {
		add("Goals", *p.Goals)
	}
	return strings.Join(lines, "\n")
}

// formatAnalysis prefers the structured estimate and falls back to the
// provider's free text.
func formatAnalysis(a *ai.Analysis) string {
	var b strings.Builder

	b.WriteString("🍽 Photo analysis\n")
	for _, item := range a.ItemsDetected {
		fmt.Fprintf(&b, "• %s ~%s g\n", item.Name, formatNumber(item.EstimatedGrams))
	}
	if n := a.NutritionEstimate; n != nil {
		fmt.Fprintf(&b, "\nEstimate: %s kcal, protein %s g, carbs %s g, fat %s g\n",
			formatNumber(n.Calories), formatNumber(n.ProteinG), formatNumber(n.CarbsG), formatNumber(n.FatG))
	}
	if len(a.ItemsDetected) == 0 && a.NutritionEstimate == nil && a.AIAnalysis != "" {
		b.WriteString(a.AIAnalysis)
		b.WriteString("\n")
	}
	if a.Note != "" {
		fmt.Fprintf(&b, "\nℹ️ %s\n", a.Note)
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
