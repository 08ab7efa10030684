// Package emotion labels text with a single-word emotion using a chat model.
package emotion

import (
	"context"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog"

	"github.com/rcliao/mindvault/internal/llm"
	mvmodel "github.com/rcliao/mindvault/internal/model"
)

const promptPrefix = "Classify the emotion in the following text in one word (like happy, sad, angry, anxious, excited):\n"

// Prompt returns the classification prompt for text.
func Prompt(text string) string {
	return promptPrefix + text
}

// Classifier asks a chat model for the emotion of a piece of text.
type Classifier struct {
	model  model.BaseChatModel
	log    zerolog.Logger
	onFail func()
}

type Option func(*Classifier)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Classifier) { c.log = l }
}

// WithFallbackHook registers fn to run whenever the fallback label is used.
func WithFallbackHook(fn func()) Option {
	return func(c *Classifier) { c.onFail = fn }
}

func New(m model.BaseChatModel, opts ...Option) *Classifier {
	c := &Classifier{model: m, log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Classify returns a lower-case one-word label. It never fails: a model
// error or an empty answer yields "neutral".
func (c *Classifier) Classify(ctx context.Context, text string) string {
	out, err := llm.Complete(ctx, c.model, Prompt(text))
	if err != nil {
		c.log.Warn().Err(err).Msg("emotion classification failed")
		return c.fallback()
	}
	label := Normalize(out)
	if label == "" {
		c.log.Warn().Str("raw", out).Msg("emotion classifier returned no label")
		return c.fallback()
	}
	return label
}

func (c *Classifier) fallback() string {
	if c.onFail != nil {
		c.onFail()
	}
	return mvmodel.FallbackEmotion
}

var labelWord = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Normalize reduces a model answer such as "Happy." or "**anxious**" to the
// first run of word characters, lower-cased, so the label survives the
// journal line format. "Bitter-sweet" becomes "bitter".
func Normalize(raw string) string {
	return strings.ToLower(labelWord.FindString(raw))
}
