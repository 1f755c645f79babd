package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "models/gemini-1.5-pro"

type GeminiClient struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	jsonModel *genai.GenerativeModel
}

func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: API key is required")
	}
	if modelName == "" {
		modelName = defaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(1000)

	jsonModel := client.GenerativeModel(modelName)
	jsonModel.SetTemperature(0)
	jsonModel.ResponseMIMEType = "application/json"

	return &GeminiClient{client: client, model: model, jsonModel: jsonModel}, nil
}

// GenerateContent returns the model's free-text answer to prompt.
func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	return generate(ctx, g.model, prompt)
}

// GenerateJSON asks for a JSON-only reply.
func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	return generate(ctx, g.jsonModel, prompt)
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
