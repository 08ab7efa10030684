package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiChatModel adapts the Gemini API to eino's chat model interface.
type GeminiChatModel struct {
	client *genai.Client
	model  string
}

var _ model.BaseChatModel = (*GeminiChatModel)(nil)

func NewGeminiChatModel(ctx context.Context, apiKey, modelName string) (*GeminiChatModel, error) {
	if apiKey == "" {
		return nil, errors.New("gemini chat model: api key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiChatModel{client: client, model: modelName}, nil
}

func (g *GeminiChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := model.GetCommonOptions(&model.Options{Model: &g.model}, opts...)
	contents, config := toGenai(input, options)

	res, err := g.client.Models.GenerateContent(ctx, *options.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	text, err := responseText(res)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(text, nil), nil
}

// Stream returns the whole response as a single chunk.
func (g *GeminiChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := g.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// toGenai splits eino messages into Gemini contents plus a system instruction.
func toGenai(input []*schema.Message, options *model.Options) ([]*genai.Content, *genai.GenerateContentConfig) {
	config := &genai.GenerateContentConfig{}
	var system []string
	contents := make([]*genai.Content, 0, len(input))
	for _, m := range input {
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
	}
	if options != nil {
		config.Temperature = options.Temperature
		config.TopP = options.TopP
		config.StopSequences = options.Stop
		if options.MaxTokens != nil {
			config.MaxOutputTokens = int32(*options.MaxTokens)
		}
	}
	return contents, config
}

func responseText(res *genai.GenerateContentResponse) (string, error) {
	// A blocked prompt comes back without candidates.
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}
	var b strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		if p != nil {
			b.WriteString(p.Text)
		}
	}
	return b.String(), nil
}
