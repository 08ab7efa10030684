package report

import (
	"math/rand"
)

// CloudSeed fixes word colours and placement order so the same journal always
// produces the same cloud.
const CloudSeed = 42

const (
	maxCloudWords = 200
	minFontSize   = 12
	maxFontSize   = 72
)

// viridis samples, dark to light.
var viridis = []string{
	"#440154", "#482878", "#3E4A89", "#31688E", "#26828E",
	"#1F9E89", "#35B779", "#6DCD59", "#B4DE2C", "#FDE725",
}

// CloudWord is one placed word of a word cloud.
type CloudWord struct {
	Text     string  `json:"text"`
	Count    int     `json:"count"`
	Weight   float64 `json:"weight"`
	FontSize int     `json:"font_size"`
	Color    string  `json:"color"`
}

// Cloud is a renderable word-cloud layout.
type Cloud struct {
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Words  []CloudWord `json:"words"`
}

// BuildCloud lays out the most frequent words. Font size scales with frequency
// relative to the most common word. freqs must be ordered most frequent first,
// as returned by WordFrequencies.
func BuildCloud(freqs []Count) (*Cloud, error) {
	if len(freqs) == 0 {
		return nil, ErrNoData
	}
	if len(freqs) > maxCloudWords {
		freqs = freqs[:maxCloudWords]
	}

	rng := rand.New(rand.NewSource(CloudSeed))
	top := float64(freqs[0].Count)
	words := make([]CloudWord, len(freqs))
	for i, f := range freqs {
		weight := float64(f.Count) / top
		words[i] = CloudWord{
			Text:     f.Label,
			Count:    f.Count,
			Weight:   weight,
			FontSize: minFontSize + int(weight*float64(maxFontSize-minFontSize)+0.5),
			Color:    viridis[rng.Intn(len(viridis))],
		}
	}
	rng.Shuffle(len(words), func(i, j int) { words[i], words[j] = words[j], words[i] })

	return &Cloud{Width: 800, Height: 400, Words: words}, nil
}
