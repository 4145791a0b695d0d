package ai

import (
	"context"

	"fitplan/internal/models"
)

const (
	FallbackSource = "fallback"

	// FallbackReply is the canned chat answer when no provider is configured.
	FallbackReply = "💬 I can help with meal planning, calorie estimates, and workouts. Configure AI_API_KEY in .env for full AI features."

	mockNote = "⚠️ Mock estimate only. Configure AI_API_KEY in .env for real AI analysis."
)

// MockAnalysis is the fixed estimate returned when no provider is configured,
// and alongside provider errors.
func MockAnalysis(width, height int) *Analysis {
	return &Analysis{
		Width:  width,
		Height: height,
		ItemsDetected: []DetectedItem{
			{Name: "rice", EstimatedGrams: 150},
			{Name: "chicken", EstimatedGrams: 100},
			{Name: "vegetables", EstimatedGrams: 80},
		},
		NutritionEstimate: &NutritionEstimate{
			Calories: 550,
			ProteinG: 35,
			CarbsG:   65,
			FatG:     12,
		},
		Note: mockNote,
	}
}

// UnavailableReply is the chat answer sent when the provider call fails.
func UnavailableReply(err error) string {
	return "⚠️ AI service unavailable. Error: " + err.Error()
}

// Mock answers deterministically without any network access.
type Mock struct{}

func NewMock() *Mock { return &Mock{} }

func (m *Mock) Configured() bool { return false }

func (m *Mock) Source() string { return FallbackSource }

func (m *Mock) AnalyzeImage(context.Context, []byte, string) (*Analysis, error) {
	return MockAnalysis(0, 0), nil
}

func (m *Mock) Chat(context.Context, string, *models.Profile) (string, error) {
	return FallbackReply, nil
}
