package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/mindvault/internal/embedding"
	"github.com/rcliao/mindvault/internal/model"
)

// SQLiteStore implements Store using SQLite. Vectors are stored as
// little-endian float32 blobs next to their entry.
type SQLiteStore struct {
	db   *sql.DB
	path string
	emb  embedding.Embedder

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path, bound to emb.
func NewSQLiteStore(dbPath string, emb embedding.Embedder) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		emb:     emb,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.bindEmbedder(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *SQLiteStore) newID(at time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id         TEXT PRIMARY KEY,
		text       TEXT NOT NULL,
		emotion    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		created_ns INTEGER NOT NULL,
		day        TEXT NOT NULL,
		dims       INTEGER NOT NULL,
		embedding  BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_ns);
	CREATE INDEX IF NOT EXISTS idx_entries_day ON entries(day);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// bindEmbedder records the embedder on first open and rejects a different one later.
func (s *SQLiteStore) bindEmbedder() error {
	var modelName, dims string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'embed_model'`).Scan(&modelName)
	if errors.Is(err, sql.ErrNoRows) {
		_, err = s.db.Exec(`INSERT INTO settings (key, value) VALUES ('embed_model', ?), ('embed_dims', ?)`,
			s.emb.Model(), strconv.Itoa(s.emb.Dims()))
		return err
	}
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	s.db.QueryRow(`SELECT value FROM settings WHERE key = 'embed_dims'`).Scan(&dims)
	if modelName != s.emb.Model() || dims != strconv.Itoa(s.emb.Dims()) {
		return fmt.Errorf("%w: store has %s/%s, embedder is %s/%d",
			ErrEmbedderMismatch, modelName, dims, s.emb.Model(), s.emb.Dims())
	}
	return nil
}

func (s *SQLiteStore) Add(ctx context.Context, p AddParams) (*model.Entry, error) {
	at := p.At
	if at.IsZero() {
		at = time.Now()
	}

	vec, err := embedChecked(ctx, s.emb, p.Text, embedding.TaskDocument)
	if err != nil {
		return nil, err
	}

	e := &model.Entry{
		ID:        s.newID(at),
		Text:      p.Text,
		Emotion:   p.Emotion,
		Timestamp: at,
		Vector:    vec,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entries (id, text, emotion, created_at, created_ns, day, dims, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Text, e.Emotion, at.Format(time.RFC3339Nano), at.UnixNano(), e.Day(), len(vec), encodeVector(vec))
	if err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}
	return e, nil
}

func (s *SQLiteStore) Query(ctx context.Context, p QueryParams) ([]model.Match, error) {
	q, err := embedChecked(ctx, s.emb, p.Text, embedding.TaskQuery)
	if err != nil {
		return nil, err
	}
	all, err := s.selectEntries(ctx, `SELECT id, text, emotion, created_at, embedding FROM entries ORDER BY created_ns, rowid`)
	if err != nil {
		return nil, err
	}
	return rank(q, all, p.K, p.MaxDistance), nil
}

func (s *SQLiteStore) ByDay(ctx context.Context, day string) ([]model.Entry, error) {
	if _, err := time.Parse(model.DayLayout, day); err != nil {
		return nil, fmt.Errorf("invalid day %q (use YYYY-MM-DD)", day)
	}
	return s.selectEntries(ctx,
		`SELECT id, text, emotion, created_at, embedding FROM entries WHERE day = ? ORDER BY created_ns, rowid`, day)
}

func (s *SQLiteStore) All(ctx context.Context) ([]model.Entry, error) {
	return s.selectEntries(ctx, `SELECT id, text, emotion, created_at, embedding FROM entries ORDER BY created_ns, rowid`)
}

func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{
		Backend:    "sqlite",
		Path:       s.path,
		EmbedModel: s.emb.Model(),
		EmbedDims:  s.emb.Dims(),
	}
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}

	all, err := s.All(ctx)
	if err != nil {
		return st, err
	}
	st.Entries = len(all)
	st.Emotions = countEmotions(all)
	if len(all) > 0 {
		first, last := all[0].Timestamp, all[len(all)-1].Timestamp
		st.FirstAt, st.LastAt = &first, &last
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) selectEntries(ctx context.Context, query string, args ...interface{}) ([]model.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (model.Entry, error) {
	var e model.Entry
	var createdAt string
	var blob []byte

	if err := row.Scan(&e.ID, &e.Text, &e.Emotion, &createdAt, &blob); err != nil {
		return e, err
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return e, fmt.Errorf("entry %s: parse created_at: %w", e.ID, err)
	}
	e.Timestamp = ts
	e.Vector = decodeVector(blob)
	return e, nil
}

func encodeVector(v embedding.Vector) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) embedding.Vector {
	v := make(embedding.Vector, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
