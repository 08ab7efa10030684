package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultOllamaModel is the local embedding model used when none is configured.
const DefaultOllamaModel = "all-minilm"

// OllamaEmbedder uses a local Ollama instance for embeddings.
type OllamaEmbedder struct {
	client *api.Client
	model  string
	dims   int
}

// NewOllamaEmbedder creates an embedder using Ollama's API.
// Default model: all-minilm (384 dims); nomic-embed-text gives 768.
func NewOllamaEmbedder(baseURL, model string) (*OllamaEmbedder, error) {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url: %w", err)
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	dims := 384
	if model == "nomic-embed-text" {
		dims = 768
	}
	return &OllamaEmbedder{
		client: api.NewClient(u, &http.Client{Timeout: 30 * time.Second}),
		model:  model,
		dims:   dims,
	}, nil
}

// Embed ignores the task; local models have a single embedding mode.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string, _ Task) (Vector, error) {
	res, err := e.client.Embed(ctx, &api.EmbedRequest{Model: e.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	if len(res.Embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	v := res.Embeddings[0]
	if err := checkDims(e.model, v, e.dims); err != nil {
		return nil, err
	}
	return v, nil
}

func (e *OllamaEmbedder) Dims() int     { return e.dims }
func (e *OllamaEmbedder) Model() string { return e.model }
