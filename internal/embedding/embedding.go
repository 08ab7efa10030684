// Package embedding provides a pluggable interface for text embedding providers.
package embedding

import (
	"context"
	"fmt"
	"math"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// Task tells a provider how the text will be used. Providers that do not
// distinguish stored text from search text ignore it.
type Task string

const (
	TaskDocument Task = "document"
	TaskQuery    Task = "query"
)

// Embedder generates embedding vectors from text.
type Embedder interface {
	Embed(ctx context.Context, text string, task Task) (Vector, error)
	Dims() int
	Model() string
}

// CosineSimilarity computes cosine similarity between two vectors.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// CosineDistance is 1 - CosineSimilarity. Identical directions give 0.
func CosineDistance(a, b Vector) float64 {
	return 1 - CosineSimilarity(a, b)
}

// Options selects and configures an embedding provider.
type Options struct {
	Provider string // "gemini" | "ollama"
	Model    string
	URL      string
	APIKey   string
}

// New creates an embedder for the configured provider.
func New(ctx context.Context, opts Options) (Embedder, error) {
	switch opts.Provider {
	case "", "gemini":
		return NewGeminiEmbedder(ctx, opts.APIKey, opts.Model)
	case "ollama":
		return NewOllamaEmbedder(opts.URL, opts.Model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
}

// RequiresAPIKey reports whether the provider calls a hosted service.
func RequiresAPIKey(provider string) bool {
	return provider == "" || provider == "gemini"
}

func checkDims(model string, v Vector, want int) error {
	if want > 0 && len(v) != want {
		return fmt.Errorf("%s returned %d dims, want %d", model, len(v), want)
	}
	return nil
}
