package embedding

import (
	"context"
	"math"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
		delta    float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", Vector{}, Vector{}, 0.0, 0.001},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0.001},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestCosineDistance_SameVectorIsZero(t *testing.T) {
	v := Vector{0.3, -0.2, 0.9}
	if d := CosineDistance(v, v); math.Abs(d) > 1e-6 {
		t.Errorf("distance to self = %f, want 0", d)
	}
}

func TestGeminiTaskType(t *testing.T) {
	if got := geminiTaskType(TaskQuery); got != "RETRIEVAL_QUERY" {
		t.Errorf("query task = %q", got)
	}
	if got := geminiTaskType(TaskDocument); got != "RETRIEVAL_DOCUMENT" {
		t.Errorf("document task = %q", got)
	}
}

func TestNewOllamaEmbedder_Dims(t *testing.T) {
	e, err := NewOllamaEmbedder("http://localhost:11434", "")
	if err != nil {
		t.Fatal(err)
	}
	if e.Dims() != 384 || e.Model() != DefaultOllamaModel {
		t.Errorf("got %s/%d, want %s/384", e.Model(), e.Dims(), DefaultOllamaModel)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Options{Provider: "word2vec"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNew_GeminiRequiresKey(t *testing.T) {
	if _, err := New(context.Background(), Options{Provider: "gemini"}); err == nil {
		t.Error("expected error without api key")
	}
}
