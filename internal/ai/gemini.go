package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"fitplan/internal/models"
)

const GeminiSource = "gemini-ai"

// Gemini calls a generateContent endpoint directly.
type Gemini struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGemini builds a client for the generateContent URL baseURL.
func NewGemini(apiKey, baseURL string, client *http.Client) *Gemini {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gemini{apiKey: apiKey, baseURL: baseURL, client: client}
}

func (g *Gemini) Configured() bool { return true }

func (g *Gemini) Source() string { return GeminiSource }

func (g *Gemini) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*Analysis, error) {
	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{
				{Text: imagePrompt},
				{InlineData: &geminiInlineData{
					MimeType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	text, raw, err := g.generate(ctx, req)
	if err != nil {
		return nil, err
	}
	a := parseAnalysis(text)
	a.RawResponse = raw
	a.Source = GeminiSource
	return a, nil
}

func (g *Gemini) Chat(ctx context.Context, message string, profile *models.Profile) (string, error) {
	req := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: chatPrompt(message, profile)}},
		}},
	}
	text, _, err := g.generate(ctx, req)
	return text, err
}

// generate posts body and returns the first candidate's text along with the
// raw response.
func (g *Gemini) generate(ctx context.Context, body geminiRequest) (string, json.RawMessage, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", nil, fmt.Errorf("error marshaling request: %w", err)
	}

	endpoint, err := url.Parse(g.baseURL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid api url: %w", err)
	}
	q := endpoint.Query()
	q.Set("key", g.apiKey)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(jsonData))
	if err != nil {
		return "", nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(respBody), 512))
	}

	var response geminiResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", nil, fmt.Errorf("error unmarshaling response: %w", err)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", nil, ErrEmptyResponse
	}

	return response.Candidates[0].Content.Parts[0].Text, json.RawMessage(respBody), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
