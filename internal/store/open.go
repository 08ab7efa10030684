package store

import (
	"fmt"

	"github.com/rcliao/mindvault/internal/embedding"
)

// Open creates the backend named by backend ("sqlite" or "flat") at path.
func Open(backend, path string, emb embedding.Embedder) (Store, error) {
	switch backend {
	case "", "sqlite":
		return NewSQLiteStore(path, emb)
	case "flat":
		return NewFlatStore(path, emb)
	default:
		return nil, fmt.Errorf("unknown store backend %q (use sqlite or flat)", backend)
	}
}
