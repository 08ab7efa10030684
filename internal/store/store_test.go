package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/rcliao/mindvault/internal/embedding"
	"github.com/rcliao/mindvault/internal/model"
)

// backends runs fn against a fresh instance of every backend.
func backends(t *testing.T, fn func(t *testing.T, s Store, emb *wordEmbedder)) {
	t.Helper()
	for _, backend := range []string{"sqlite", "flat"} {
		t.Run(backend, func(t *testing.T) {
			emb := newWordEmbedder()
			s, err := Open(backend, filepath.Join(t.TempDir(), "memories."+backend), emb)
			if err != nil {
				t.Fatalf("open %s: %v", backend, err)
			}
			t.Cleanup(func() { s.Close() })
			fn(t, s, emb)
		})
	}
}

func TestAddAndQuery_RoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, s Store, _ *wordEmbedder) {
		ctx := context.Background()
		for _, text := range []string{"good day", "rough day at work", "coffee with friends"} {
			if _, err := s.Add(ctx, AddParams{Text: text, Emotion: "happy"}); err != nil {
				t.Fatalf("add %q: %v", text, err)
			}
		}

		matches, err := s.Query(ctx, QueryParams{Text: "rough day at work", K: 3})
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(matches) != 3 {
			t.Fatalf("expected 3 matches, got %d", len(matches))
		}
		if matches[0].Text != "rough day at work" {
			t.Errorf("nearest = %q, want the same text", matches[0].Text)
		}
		if math.Abs(matches[0].Distance) > 1e-6 {
			t.Errorf("distance to same text = %f, want ~0", matches[0].Distance)
		}
		for i := 1; i < len(matches); i++ {
			if matches[i].Distance < matches[i-1].Distance {
				t.Errorf("matches not sorted nearest first: %v", matches)
			}
		}
	})
}

func TestQuery_DefaultKAndCutoff(t *testing.T) {
	backends(t, func(t *testing.T, s Store, _ *wordEmbedder) {
		ctx := context.Background()
		for _, text := range []string{"a b", "c d", "e f", "g h", "a b c"} {
			s.Add(ctx, AddParams{Text: text, Emotion: "calm"})
		}

		matches, err := s.Query(ctx, QueryParams{Text: "a b"})
		if err != nil {
			t.Fatal(err)
		}
		if len(matches) != DefaultK {
			t.Errorf("expected %d matches by default, got %d", DefaultK, len(matches))
		}

		near, err := s.Query(ctx, QueryParams{Text: "a b", K: 10, MaxDistance: 0.5})
		if err != nil {
			t.Fatal(err)
		}
		for _, m := range near {
			if m.Distance > 0.5 {
				t.Errorf("match %q beyond cutoff: %f", m.Text, m.Distance)
			}
		}
		if len(near) == 0 {
			t.Error("expected the identical entry within the cutoff")
		}
	})
}

func TestQuery_UsesQueryTask(t *testing.T) {
	backends(t, func(t *testing.T, s Store, emb *wordEmbedder) {
		ctx := context.Background()
		s.Add(ctx, AddParams{Text: "hello", Emotion: "happy"})
		s.Query(ctx, QueryParams{Text: "hello"})

		want := []embedding.Task{embedding.TaskDocument, embedding.TaskQuery}
		if len(emb.tasks) != 2 || emb.tasks[0] != want[0] || emb.tasks[1] != want[1] {
			t.Errorf("tasks = %v, want %v", emb.tasks, want)
		}
	})
}

func TestAdd_EmbedFailure(t *testing.T) {
	backends(t, func(t *testing.T, s Store, emb *wordEmbedder) {
		emb.fail = true
		if _, err := s.Add(context.Background(), AddParams{Text: "lost", Emotion: "sad"}); err == nil {
			t.Fatal("expected error when embedding fails")
		}
		all, _ := s.All(context.Background())
		if len(all) != 0 {
			t.Errorf("expected nothing stored, got %d", len(all))
		}
	})
}

func TestByDay(t *testing.T) {
	backends(t, func(t *testing.T, s Store, _ *wordEmbedder) {
		ctx := context.Background()
		day1 := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
		day2 := time.Date(2025, 3, 2, 21, 30, 0, 0, time.Local)
		s.Add(ctx, AddParams{Text: "first", Emotion: "happy", At: day1})
		s.Add(ctx, AddParams{Text: "second", Emotion: "sad", At: day1.Add(time.Hour)})
		s.Add(ctx, AddParams{Text: "third", Emotion: "calm", At: day2})

		got, err := s.ByDay(ctx, "2025-03-01")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(got))
		}
		if got[0].Text != "first" || got[1].Text != "second" {
			t.Errorf("unexpected order: %q, %q", got[0].Text, got[1].Text)
		}

		none, err := s.ByDay(ctx, "2024-01-01")
		if err != nil {
			t.Fatal(err)
		}
		if len(none) != 0 {
			t.Errorf("expected no entries, got %d", len(none))
		}

		if _, err := s.ByDay(ctx, "yesterday"); err == nil {
			t.Error("expected error for malformed day")
		}
	})
}

func TestAll_OldestFirst(t *testing.T) {
	backends(t, func(t *testing.T, s Store, _ *wordEmbedder) {
		ctx := context.Background()
		noon := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		plus2 := time.FixedZone("UTC+2", 2*60*60)

		s.Add(ctx, AddParams{Text: "first", Emotion: "calm", At: noon})
		s.Add(ctx, AddParams{Text: "second", Emotion: "calm", At: noon.Add(500 * time.Millisecond)})
		// 13:30 at +02:00 is 11:30 UTC, earlier than both, but imported last.
		s.Add(ctx, AddParams{Text: "earliest", Emotion: "calm", At: time.Date(2025, 3, 1, 13, 30, 0, 0, plus2)})

		want := []string{"earliest", "first", "second"}
		texts := func(entries []model.Entry) []string {
			var out []string
			for _, e := range entries {
				out = append(out, e.Text)
			}
			return out
		}

		all, err := s.All(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if got := texts(all); !reflect.DeepEqual(got, want) {
			t.Errorf("All = %v, want %v", got, want)
		}
		if !all[2].Timestamp.Equal(noon.Add(500 * time.Millisecond)) {
			t.Errorf("fractional timestamp = %v", all[2].Timestamp)
		}

		day, err := s.ByDay(ctx, "2025-03-01")
		if err != nil {
			t.Fatal(err)
		}
		if got := texts(day); !reflect.DeepEqual(got, want) {
			t.Errorf("ByDay = %v, want %v", got, want)
		}

		st, err := s.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !st.FirstAt.Equal(noon.Add(-30*time.Minute)) || !st.LastAt.Equal(noon.Add(500*time.Millisecond)) {
			t.Errorf("first/last = %v/%v", st.FirstAt, st.LastAt)
		}
	})
}

func TestStats(t *testing.T) {
	backends(t, func(t *testing.T, s Store, _ *wordEmbedder) {
		ctx := context.Background()
		s.Add(ctx, AddParams{Text: "one", Emotion: "happy"})
		s.Add(ctx, AddParams{Text: "two", Emotion: "happy"})
		s.Add(ctx, AddParams{Text: "three", Emotion: "sad"})

		st, err := s.Stats(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if st.Entries != 3 {
			t.Errorf("entries = %d, want 3", st.Entries)
		}
		if len(st.Emotions) != 2 || st.Emotions[0].Emotion != "happy" || st.Emotions[0].Count != 2 {
			t.Errorf("emotions = %+v", st.Emotions)
		}
		if st.EmbedModel != "test-words" || st.EmbedDims != 16 {
			t.Errorf("embedder = %s/%d", st.EmbedModel, st.EmbedDims)
		}
		if st.FirstAt == nil || st.LastAt == nil {
			t.Error("expected first/last timestamps")
		}
	})
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("faiss", filepath.Join(t.TempDir(), "x"), newWordEmbedder()); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestOpen_RejectsDifferentEmbedder(t *testing.T) {
	for _, backend := range []string{"sqlite", "flat"} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "memories")
			s, err := Open(backend, path, newWordEmbedder())
			if err != nil {
				t.Fatal(err)
			}
			s.Add(context.Background(), AddParams{Text: "hi", Emotion: "happy"})
			s.Close()

			other := newWordEmbedder()
			other.model = "other-model"
			_, err = Open(backend, path, other)
			if !errors.Is(err, ErrEmbedderMismatch) {
				t.Fatalf("expected ErrEmbedderMismatch, got %v", err)
			}
		})
	}
}
