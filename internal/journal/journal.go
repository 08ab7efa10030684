// Package journal keeps the human-readable text log of entries. Each line is
// "[HH:MM:SS] <emotion>: <text>". The log is derived from the memory store:
// lines are appended only after the store accepted the entry, and Rebuild
// regenerates the whole file from stored entries.
package journal

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rcliao/mindvault/internal/model"
)

// ErrNoJournal is returned when the journal file has not been written yet.
var ErrNoJournal = errors.New("no journal file found")

const timeLayout = "15:04:05"

// Log appends to and reads from a journal file.
type Log struct {
	path string
	mu   sync.Mutex
}

func New(path string) *Log {
	return &Log{path: path}
}

func (l *Log) Path() string { return l.path }

// FormatLine renders e as one journal line, without the trailing newline.
// Line breaks inside the text are flattened so one entry stays on one line.
func FormatLine(e model.Entry) string {
	return fmt.Sprintf("[%s] %s: %s", e.Timestamp.Format(timeLayout), e.Emotion, flatten(e.Text))
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}

// Append writes one line for e at the end of the journal.
func (l *Log) Append(e model.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if _, err := f.WriteString(FormatLine(e) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append journal: %w", err)
	}
	return f.Close()
}

// Lines returns every line of the journal in file order.
func (l *Log) Lines() ([]string, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoJournal
	}
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return lines, nil
}

// Rebuild replaces the journal with one line per entry, in the given order.
// The new file is written to a temp file and renamed into place.
func (l *Log) Rebuild(entries []model.Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".journal_*")
	if err != nil {
		return fmt.Errorf("create temp journal: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		if _, err := w.WriteString(FormatLine(e) + "\n"); err != nil {
			tmp.Close()
			return fmt.Errorf("write temp journal: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush temp journal: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp journal: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}
