package llm

import (
	"context"
	"fmt"

	"github.com/solarsentinel/sentinel-api/internal/domain"
	"google.golang.org/genai"
)

type GeminiClient struct {
	client    *genai.Client
	modelName string
}

// NewGeminiClient creates an LLMClient backed by the Gemini API. The key is
// provisioned configuration; the adapter never reads the environment.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: modelName,
	}, nil
}

// GenerateReply implements domain.LLMClient. The visible history is mapped
// role-for-role; the last entry is the new user turn.
func (g *GeminiClient) GenerateReply(
	ctx context.Context,
	history []*domain.ConversationMessage,
) (string, error) {
	var contents []*genai.Content
	for _, m := range history {
		var role genai.Role
		switch m.Author {
		case domain.RoleUser:
			role = genai.RoleUser
		case domain.RoleAssistant:
			role = genai.RoleModel
		default:
			role = genai.RoleUser
		}

		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	temp := float32(0.7)
	topP := float32(0.9)
	outputTokens := int32(2048)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   outputTokens,
	}

	res, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", &domain.GenerativeBackendError{Cause: err}
	}

	text := res.Text()
	if text == "" {
		return "", &domain.GenerativeBackendError{Cause: fmt.Errorf("model returned empty text")}
	}

	return text, nil
}
