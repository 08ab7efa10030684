// Package store provides the journal memory store interface and its two backends:
// a SQLite vector table and a flat append-only index file.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rcliao/mindvault/internal/embedding"
	"github.com/rcliao/mindvault/internal/model"
)

var (
	// ErrEmbedderMismatch is returned when a store created with one embedding
	// model is opened with another. Vectors from different models are not comparable.
	ErrEmbedderMismatch = errors.New("store was built with a different embedder")

	// ErrDimensionMismatch is returned when an embedder yields a vector of unexpected size.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// AddParams holds parameters for storing an entry.
type AddParams struct {
	Text    string
	Emotion string
	At      time.Time // zero means now
}

// QueryParams holds parameters for a similarity query.
type QueryParams struct {
	Text        string
	K           int     // 0 means DefaultK
	MaxDistance float64 // 0 means no cutoff
}

// DefaultK is the number of neighbours returned when K is unset.
const DefaultK = 3

// Store defines the journal memory interface.
type Store interface {
	// Add embeds the text and stores a new entry. Returns the stored entry.
	Add(ctx context.Context, p AddParams) (*model.Entry, error)

	// Query returns up to K entries nearest to the text, nearest first.
	Query(ctx context.Context, p QueryParams) ([]model.Match, error)

	// ByDay lists entries whose local date is day (YYYY-MM-DD), oldest first.
	ByDay(ctx context.Context, day string) ([]model.Entry, error)

	// All lists every entry, oldest first.
	All(ctx context.Context) ([]model.Entry, error)

	// Stats summarises the store.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the store.
	Close() error
}

// Stats holds store statistics.
type Stats struct {
	Backend    string         `json:"backend"`
	Path       string         `json:"path"`
	SizeBytes  int64          `json:"size_bytes"`
	Entries    int            `json:"entries"`
	EmbedModel string         `json:"embed_model"`
	EmbedDims  int            `json:"embed_dims"`
	Emotions   []EmotionCount `json:"emotions,omitempty"`
	FirstAt    *time.Time     `json:"first_at,omitempty"`
	LastAt     *time.Time     `json:"last_at,omitempty"`
}

// EmotionCount is the number of entries carrying one label.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// embedChecked embeds text and verifies the vector size.
func embedChecked(ctx context.Context, emb embedding.Embedder, text string, task embedding.Task) (embedding.Vector, error) {
	v, err := emb.Embed(ctx, text, task)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if len(v) != emb.Dims() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(v), emb.Dims())
	}
	return v, nil
}

// rank scores candidates against q and keeps the k nearest.
func rank(q embedding.Vector, candidates []model.Entry, k int, maxDistance float64) []model.Match {
	if k <= 0 {
		k = DefaultK
	}
	matches := make([]model.Match, 0, len(candidates))
	for _, e := range candidates {
		d := embedding.CosineDistance(q, e.Vector)
		if maxDistance > 0 && d > maxDistance {
			continue
		}
		matches = append(matches, model.Match{Entry: e, Distance: d})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches
}

// countEmotions builds a sorted label histogram for Stats.
func countEmotions(entries []model.Entry) []EmotionCount {
	counts := map[string]int{}
	for _, e := range entries {
		counts[e.Emotion]++
	}
	out := make([]EmotionCount, 0, len(counts))
	for em, n := range counts {
		out = append(out, EmotionCount{Emotion: em, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Emotion < out[j].Emotion
	})
	return out
}

// oldestFirst sorts entries by timestamp in place, keeping insertion order for ties.
func oldestFirst(entries []model.Entry) []model.Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries
}
