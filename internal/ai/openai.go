package ai

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"fitplan/internal/models"
)

const OpenAISource = "openai"

type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI builds a chat-completions client. baseURL may be empty to use the
// SDK default.
func NewOpenAI(apiKey, baseURL, model string, httpClient *http.Client) *OpenAI {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *OpenAI) Configured() bool { return true }

func (c *OpenAI) Source() string { return OpenAISource }

func (c *OpenAI) AnalyzeImage(ctx context.Context, image []byte, mimeType string) (*Analysis, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: imagePrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
		MaxTokens:   800,
		Temperature: 0,
	}

	text, err := c.complete(ctx, req)
	if err != nil {
		return nil, err
	}
	a := parseAnalysis(text)
	a.Source = OpenAISource
	return a, nil
}

func (c *OpenAI) Chat(ctx context.Context, message string, profile *models.Profile) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt + profileContext(profile),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: message,
			},
		},
		MaxTokens:   1000,
		Temperature: 0.7,
	}
	return c.complete(ctx, req)
}

func (c *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
