// Package nutrition derives a daily calorie target and a weekly meal template
// from a profile. Everything here is pure and safe for concurrent use.
package nutrition

import (
	"math"

	"fitplan/internal/models"
)

// DefaultCalories is returned for an empty or missing profile.
const DefaultCalories = 2000

// activityMultipliers maps activity level strings to their TDEE multiplier.
var activityMultipliers = map[string]float64{
	"sedentary":   1.2,
	"light":       1.375,
	"moderate":    1.55,
	"active":      1.725,
	"very_active": 1.9,
}

// ActivityMultiplier returns the multiplier for level, falling back to
// the moderate one for unknown values.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[models.DefaultActivityLevel]
}

// BMR computes the Mifflin-St Jeor basal metabolic rate.
func BMR(m models.BodyMetrics) float64 {
	bmr := 10*m.WeightKG + 6.25*m.HeightCM - 5*float64(m.Age)
	if m.Gender == "male" {
		return bmr + 5
	}
	return bmr - 161
}

// EstimateCalories returns the activity-scaled daily calorie target for p.
// Absurd inputs that would yield a negative target give 0.
func EstimateCalories(p *models.Profile) int {
	if p.IsEmpty() {
		return DefaultCalories
	}
	m := p.Metrics()
	calories := math.Floor(BMR(m) * ActivityMultiplier(m.ActivityLevel))
	if calories < 0 {
		return 0
	}
	return int(calories)
}
