package embedding

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the hosted embedding model used when none is configured.
const DefaultGeminiModel = "text-embedding-004"

// GeminiEmbedder uses the Gemini embeddings API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dims   int
}

// NewGeminiEmbedder creates a hosted embedder. text-embedding-004 yields 768 dims.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, errors.New("gemini embedder: api key is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model, dims: 768}, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, text string, task Task) (Vector, error) {
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		TaskType: geminiTaskType(task),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(res.Embeddings) == 0 || res.Embeddings[0] == nil {
		return nil, fmt.Errorf("no embedding returned")
	}
	v := res.Embeddings[0].Values
	if err := checkDims(e.model, v, e.dims); err != nil {
		return nil, err
	}
	return v, nil
}

func (e *GeminiEmbedder) Dims() int     { return e.dims }
func (e *GeminiEmbedder) Model() string { return e.model }

func geminiTaskType(task Task) string {
	if task == TaskQuery {
		return "RETRIEVAL_QUERY"
	}
	return "RETRIEVAL_DOCUMENT"
}
