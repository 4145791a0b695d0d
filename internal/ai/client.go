// Package ai proxies food-photo analysis and chat to a generative-AI provider
// and normalizes the replies.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"fitplan/config"
	"fitplan/internal/models"
)

// ErrEmptyResponse is returned when the provider answers without any text.
var ErrEmptyResponse = errors.New("no response from ai provider")

// Client talks to one provider. Implementations must be safe for concurrent use.
type Client interface {
	// Configured is false for the mock client.
	Configured() bool
	// Source labels chat replies, e.g. "gemini-ai" or "fallback".
	Source() string
	AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*Analysis, error)
	Chat(ctx context.Context, message string, profile *models.Profile) (string, error)
}

type DetectedItem struct {
	Name           string  `json:"name"`
	EstimatedGrams float64 `json:"estimated_grams"`
}

type NutritionEstimate struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Analysis is the normalized result of a food-photo request. Width and Height
// are filled by the caller from the uploaded image.
type Analysis struct {
	Width             int                `json:"width"`
	Height            int                `json:"height"`
	ItemsDetected     []DetectedItem     `json:"items_detected,omitempty"`
	NutritionEstimate *NutritionEstimate `json:"nutrition_estimate,omitempty"`
	AIAnalysis        string             `json:"ai_analysis,omitempty"`
	RawResponse       json.RawMessage    `json:"raw_response,omitempty"`
	Source            string             `json:"source,omitempty"`
	Note              string             `json:"note,omitempty"`
}

const (
	systemPrompt = "You are a nutrition and fitness assistant."

	imagePrompt = `Analyze this food image and return JSON of food items with nutritional info.
Use exactly this shape and no other text:
{"items_detected":[{"name":"rice","estimated_grams":150}],"nutrition_estimate":{"calories":550,"protein_g":35,"carbs_g":65,"fat_g":12}}`
)

// New returns the client for cfg.AI.Provider, or the mock when live AI is not
// configured.
func New(cfg *config.Config) (Client, error) {
	if !cfg.AIConfigured() {
		return NewMock(), nil
	}
	httpClient := &http.Client{Timeout: cfg.AI.Timeout}

	switch cfg.AI.Provider {
	case config.ProviderGemini, "":
		return NewGemini(cfg.AI.APIKey, cfg.AI.APIURL, httpClient), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.AI.APIKey, cfg.AI.APIURL, cfg.AI.Model, httpClient), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AI.Provider)
	}
}

// profileContext renders the optional profile line appended to chat prompts.
func profileContext(p *models.Profile) string {
	if p.IsEmpty() {
		return ""
	}
	return fmt.Sprintf("\nUser Profile: %s yrs, %s, %skg, Activity: %s",
		intOrUnknown(p.Age), stringOrUnknown(p.Gender), floatOrUnknown(p.WeightKG), stringOrUnknown(p.ActivityLevel))
}

func chatPrompt(message string, p *models.Profile) string {
	return systemPrompt + profileContext(p) + "\n\nUser: " + message
}

func stringOrUnknown(s *string) string {
	if s == nil || *s == "" {
		return "unknown"
	}
	return *s
}

func intOrUnknown(i *int) string {
	if i == nil {
		return "unknown"
	}
	return fmt.Sprintf("%d", *i)
}

func floatOrUnknown(f *float64) string {
	if f == nil {
		return "unknown"
	}
	return fmt.Sprintf("%g", *f)
}

// parseAnalysis fills the normalized fields from the provider's text when it
// holds the requested JSON. Text that doesn't parse is kept verbatim only.
func parseAnalysis(text string) *Analysis {
	a := &Analysis{AIAnalysis: text}

	var parsed struct {
		ItemsDetected     []DetectedItem     `json:"items_detected"`
		NutritionEstimate *NutritionEstimate `json:"nutrition_estimate"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &parsed); err == nil {
		a.ItemsDetected = parsed.ItemsDetected
		a.NutritionEstimate = parsed.NutritionEstimate
	}
	return a
}

// stripCodeFence removes a surrounding markdown ``` block, which models add
// even when asked not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
