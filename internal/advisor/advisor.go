package advisor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	apperrors "agrolens/internal/errors"
	"agrolens/pkg/models"
)

// Advisor talks to the external conversational model. It is stateless across
// calls; chat context must be supplied by the caller as history.
type Advisor interface {
	// DiseaseInfo asks for structured treatment information for a disease
	// name, in the requested language.
	DiseaseInfo(ctx context.Context, disease, language string) (*models.DiseaseInfo, error)

	// Chat forwards a conversation turn and returns the reply text.
	Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error)
}

// Client implements Advisor against an OpenAI-compatible chat endpoint.
type Client struct {
	client *openai.Client
	model  string
	schema *jsonschema.Definition
}

// New builds an advisory client. baseURL points the OpenAI client at the
// configured provider (the Gemini OpenAI-compatible endpoint by default).
func New(apiKey, baseURL, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing advisory API key")
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	schema, err := jsonschema.GenerateSchemaForType(models.DiseaseInfo{})
	if err != nil {
		return nil, fmt.Errorf("failed to build disease info schema: %w", err)
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		schema: schema,
	}, nil
}

func (c *Client) DiseaseInfo(ctx context.Context, disease, language string) (*models.DiseaseInfo, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: diseaseSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: disease + " in " + language},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "disease_info",
				Schema: c.schema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return nil, apperrors.NewAdvisoryError("treatment lookup failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.NewAdvisoryError("treatment lookup returned no choices", nil)
	}

	var info models.DiseaseInfo
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &info); err != nil {
		return nil, apperrors.NewAdvisoryError("treatment response is not valid JSON", err)
	}
	if err := validateDiseaseInfo(&info); err != nil {
		return nil, apperrors.NewAdvisoryError("treatment response is incomplete", err)
	}
	return &info, nil
}

func (c *Client) Chat(ctx context.Context, message string, history []models.ChatMessage) (string, error) {
	// System instruction first, then the caller-supplied history in order,
	// then the new user message.
	chatMessages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: chatSystemPrompt,
	})
	for _, msg := range history {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	chatMessages = append(chatMessages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: chatMessages,
	})
	if err != nil {
		return "", apperrors.NewAdvisoryError("chat completion failed", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", apperrors.NewAdvisoryError("chat completion returned an empty reply", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// validateDiseaseInfo enforces the response schema: every field is required.
func validateDiseaseInfo(info *models.DiseaseInfo) error {
	if info.Medicines == nil {
		return fmt.Errorf("missing medicines")
	}
	if info.Precautions == nil {
		return fmt.Errorf("missing precautions")
	}
	if info.Causes == nil {
		return fmt.Errorf("missing causes")
	}
	if info.Summary == "" {
		return fmt.Errorf("missing summary")
	}
	if info.Disclaimer == "" {
		return fmt.Errorf("missing disclaimer")
	}
	return nil
}
