package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/oklog/ulid/v2"

	"github.com/rcliao/mindvault/internal/embedding"
	"github.com/rcliao/mindvault/internal/model"
)

const (
	recordHeader = "header"
	recordEntry  = "entry"
)

// flatRecord is one line of the index file. The first line is a header that
// pins the embedder; every other line is an entry carrying its own ID.
type flatRecord struct {
	Kind      string    `json:"kind"`
	Model     string    `json:"model,omitempty"`
	Dims      int       `json:"dims,omitempty"`
	ID        string    `json:"id,omitempty"`
	Text      string    `json:"text,omitempty"`
	Emotion   string    `json:"emotion,omitempty"`
	Timestamp time.Time `json:"ts,omitempty"`
	Vector    []float32 `json:"vec,omitempty"`
}

// indexFile is the subset of *os.File the flat store appends through.
type indexFile interface {
	io.Writer
	Sync() error
	Stat() (os.FileInfo, error)
	Truncate(size int64) error
	Close() error
}

// FlatStore is an in-memory flat index backed by an append-only JSON-lines file.
// Each Add appends one record and fsyncs; nothing is ever rewritten.
type FlatStore struct {
	path string
	emb  embedding.Embedder

	mu      sync.RWMutex
	file    indexFile
	entries []model.Entry
	byID    map[string]int
	skipped int
	entropy *rand.Rand
}

// NewFlatStore opens or creates the index file at path, bound to emb.
func NewFlatStore(path string, emb embedding.Embedder) (*FlatStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	s := &FlatStore{
		path:    path,
		emb:     emb,
		byID:    map[string]int{},
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := s.load(); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	s.file = f

	if info, err := f.Stat(); err == nil && info.Size() == 0 {
		if err := s.append(flatRecord{Kind: recordHeader, Model: emb.Model(), Dims: emb.Dims()}); err != nil {
			f.Close()
			return nil, err
		}
	}
	return s, nil
}

// load reads the index, dropping a torn trailing record left by a crash.
func (s *FlatStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	if n := bytes.LastIndexByte(data, '\n'); n+1 != len(data) {
		data = data[:n+1]
		if err := os.Truncate(s.path, int64(len(data))); err != nil {
			return fmt.Errorf("truncate torn record: %w", err)
		}
	}

	for i, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var rec flatRecord
		if err := sonic.Unmarshal(line, &rec); err != nil {
			s.skipped++
			continue
		}
		switch rec.Kind {
		case recordHeader:
			if rec.Model != s.emb.Model() || rec.Dims != s.emb.Dims() {
				return fmt.Errorf("%w: index has %s/%d, embedder is %s/%d",
					ErrEmbedderMismatch, rec.Model, rec.Dims, s.emb.Model(), s.emb.Dims())
			}
		case recordEntry:
			if len(rec.Vector) != s.emb.Dims() {
				return fmt.Errorf("%w: record %d (%s) has %d dims", ErrDimensionMismatch, i+1, rec.ID, len(rec.Vector))
			}
			s.byID[rec.ID] = len(s.entries)
			s.entries = append(s.entries, model.Entry{
				ID:        rec.ID,
				Text:      rec.Text,
				Emotion:   rec.Emotion,
				Timestamp: rec.Timestamp,
				Vector:    rec.Vector,
			})
		default:
			s.skipped++
		}
	}
	return nil
}

func (s *FlatStore) append(rec flatRecord) error {
	b, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	b = append(b, '\n')
	info, err := s.file.Stat()
	if err != nil {
		return fmt.Errorf("stat index: %w", err)
	}
	if _, err := s.file.Write(b); err != nil {
		// Drop the partial line so the next record starts on a fresh one.
		if terr := s.file.Truncate(info.Size()); terr != nil {
			return fmt.Errorf("append record: %w (truncate: %v)", err, terr)
		}
		return fmt.Errorf("append record: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync index: %w", err)
	}
	return nil
}

func (s *FlatStore) Add(ctx context.Context, p AddParams) (*model.Entry, error) {
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}

	vec, err := embedChecked(ctx, s.emb, p.Text, embedding.TaskDocument)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := model.Entry{
		ID:        ulid.MustNew(ulid.Timestamp(at), s.entropy).String(),
		Text:      p.Text,
		Emotion:   p.Emotion,
		Timestamp: at,
		Vector:    vec,
	}
	err = s.append(flatRecord{
		Kind:      recordEntry,
		ID:        e.ID,
		Text:      e.Text,
		Emotion:   e.Emotion,
		Timestamp: e.Timestamp,
		Vector:    e.Vector,
	})
	if err != nil {
		return nil, err
	}
	s.byID[e.ID] = len(s.entries)
	s.entries = append(s.entries, e)
	return &e, nil
}

func (s *FlatStore) Query(ctx context.Context, p QueryParams) ([]model.Match, error) {
	q, err := embedChecked(ctx, s.emb, p.Text, embedding.TaskQuery)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return rank(q, s.entries, p.K, p.MaxDistance), nil
}

// Get returns the entry with the given ID.
func (s *FlatStore) Get(id string) (model.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return model.Entry{}, false
	}
	return s.entries[i], true
}

func (s *FlatStore) ByDay(_ context.Context, day string) ([]model.Entry, error) {
	if _, err := time.Parse(model.DayLayout, day); err != nil {
		return nil, fmt.Errorf("invalid day %q (use YYYY-MM-DD)", day)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Entry
	for _, e := range s.entries {
		if e.Day() == day {
			out = append(out, e)
		}
	}
	return oldestFirst(out), nil
}

func (s *FlatStore) All(context.Context) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entry, len(s.entries))
	copy(out, s.entries)
	return oldestFirst(out), nil
}

func (s *FlatStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		Backend:    "flat",
		Path:       s.path,
		EmbedModel: s.emb.Model(),
		EmbedDims:  s.emb.Dims(),
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}
	all, _ := s.All(ctx)
	st.Entries = len(all)
	st.Emotions = countEmotions(all)
	if len(all) > 0 {
		first, last := all[0].Timestamp, all[len(all)-1].Timestamp
		st.FirstAt, st.LastAt = &first, &last
	}
	return st, nil
}

// Skipped is the number of undecodable records ignored on load.
func (s *FlatStore) Skipped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.skipped
}

func (s *FlatStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
