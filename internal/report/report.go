// Package report turns journal lines into mood trends and word frequencies.
package report

import (
	"errors"
	"regexp"
	"sort"
	"strings"
)

// ErrNoData is returned when the journal has no usable lines for a report.
var ErrNoData = errors.New("no data")

// User-facing messages for empty reports and a missing journal.
const (
	NoTrendsMessage  = "No mood data found to plot trends."
	NoWordsMessage   = "No text entries found for word cloud generation."
	NoJournalMessage = "No journal file found. Please write something first."
)

// Labels and timestamps match word characters in any script.
var (
	moodLine    = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\]\s*([\p{L}\p{N}_]+):`)
	timestamp   = regexp.MustCompile(`\[\d{2}:\d{2}:\d{2}\]`)
	leadingMood = regexp.MustCompile(`^\s*[\p{L}\p{N}_]+:\s*`)
)

// Count is one label and how often it occurred.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Trends counts the mood label of every well-formed journal line. Lines that
// don't start with "[HH:MM:SS] label:" are skipped. Labels are lower-cased.
// The result is ordered by count, highest first, then by label.
func Trends(lines []string) ([]Count, error) {
	counts := map[string]int{}
	for _, line := range lines {
		m := moodLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		counts[strings.ToLower(m[1])]++
	}
	if len(counts) == 0 {
		return nil, ErrNoData
	}
	return sorted(counts), nil
}

// WordFrequencies counts whitespace-separated tokens across all lines after
// removing timestamps and the leading mood label. Case is preserved.
func WordFrequencies(lines []string) ([]Count, error) {
	counts := map[string]int{}
	for _, line := range lines {
		line = timestamp.ReplaceAllString(line, "")
		line = leadingMood.ReplaceAllString(line, "")
		for _, w := range strings.Fields(line) {
			counts[w]++
		}
	}
	if len(counts) == 0 {
		return nil, ErrNoData
	}
	return sorted(counts), nil
}

func sorted(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// AsMap returns counts keyed by label.
func AsMap(counts []Count) map[string]int {
	m := make(map[string]int, len(counts))
	for _, c := range counts {
		m[c.Label] = c.Count
	}
	return m
}
