// Package llm builds the chat model used for emotion classification and
// replies. Every provider is exposed through eino's model.BaseChatModel.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Options selects and configures a chat model provider.
type Options struct {
	Provider string // gemini | openai | ollama | deepseek | ark
	Model    string
	BaseURL  string
	APIKey   string
}

var defaultModels = map[string]string{
	"gemini":   DefaultGeminiModel,
	"openai":   "gpt-4o-mini",
	"ollama":   "llama3",
	"deepseek": "deepseek-chat",
}

// NewChatModel creates the configured provider's chat model.
func NewChatModel(ctx context.Context, opts Options) (model.BaseChatModel, error) {
	provider := strings.ToLower(opts.Provider)
	if provider == "" {
		provider = "gemini"
	}
	if _, ok := defaultModels[provider]; !ok && provider != "ark" {
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
	name := opts.Model
	if name == "" {
		name = defaultModels[provider]
	}
	if RequiresAPIKey(provider) && opts.APIKey == "" {
		return nil, fmt.Errorf("%s chat model: api key is required", provider)
	}

	switch provider {
	case "gemini":
		return built(NewGeminiChatModel(ctx, opts.APIKey, name))
	case "openai":
		return built(openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Model:   name,
		}))
	case "ollama":
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return built(ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   name,
		}))
	case "deepseek":
		return built(deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Model:   name,
		}))
	case "ark":
		if name == "" {
			return nil, fmt.Errorf("ark chat model: model (endpoint id) is required")
		}
		return built(ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:  opts.APIKey,
			BaseURL: opts.BaseURL,
			Model:   name,
		}))
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}

// built drops the typed nil a failed constructor returns.
func built(m model.BaseChatModel, err error) (model.BaseChatModel, error) {
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return m, nil
}

// RequiresAPIKey reports whether provider is a hosted service.
func RequiresAPIKey(provider string) bool {
	return strings.ToLower(provider) != "ollama"
}

// Complete sends a single user message and returns the trimmed reply text.
func Complete(ctx context.Context, m model.BaseChatModel, prompt string) (string, error) {
	return Chat(ctx, m, []*schema.Message{schema.UserMessage(prompt)})
}

// Chat sends msgs and returns the trimmed reply text.
func Chat(ctx context.Context, m model.BaseChatModel, msgs []*schema.Message) (string, error) {
	out, err := m.Generate(ctx, msgs)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", fmt.Errorf("empty response")
	}
	return strings.TrimSpace(out.Content), nil
}
