// Package model defines the core journal data types.
package model

import "time"

// Entry is one journaled chat message with its detected emotion.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Emotion   string    `json:"emotion"`
	Timestamp time.Time `json:"timestamp"`
	Vector    []float32 `json:"-"`
}

// Day returns the entry's local calendar day as YYYY-MM-DD.
func (e Entry) Day() string {
	return e.Timestamp.Format(DayLayout)
}

// Match is an entry returned by a similarity query.
type Match struct {
	Entry
	Distance float64 `json:"distance"`
}

// DayLayout is the date format used for recall by day.
const DayLayout = "2006-01-02"

// FallbackEmotion is the label used when classification fails.
const FallbackEmotion = "neutral"
