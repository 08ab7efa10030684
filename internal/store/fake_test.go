package store

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"

	"github.com/rcliao/mindvault/internal/embedding"
)

// wordEmbedder hashes lower-cased words into a small bag-of-words vector.
// Same text always gives the same vector, shared words give nearby vectors.
type wordEmbedder struct {
	dims  int
	model string
	fail  bool
	tasks []embedding.Task
}

func newWordEmbedder() *wordEmbedder {
	return &wordEmbedder{dims: 16, model: "test-words"}
}

func (w *wordEmbedder) Embed(_ context.Context, text string, task embedding.Task) (embedding.Vector, error) {
	w.tasks = append(w.tasks, task)
	if w.fail {
		return nil, errors.New("embedding service unavailable")
	}
	v := make(embedding.Vector, w.dims)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%uint32(w.dims)]++
	}
	return v, nil
}

func (w *wordEmbedder) Dims() int     { return w.dims }
func (w *wordEmbedder) Model() string { return w.model }
