// Package chat turns one user message into a stored, emotion-tagged journal
// entry and a persona-styled reply.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/rcliao/mindvault/internal/llm"
	"github.com/rcliao/mindvault/internal/metrics"
	mvmodel "github.com/rcliao/mindvault/internal/model"
	"github.com/rcliao/mindvault/internal/persona"
	"github.com/rcliao/mindvault/internal/store"
)

// FallbackReply is returned when the reply cannot be generated.
const FallbackReply = "I'm having trouble responding right now"

const replyTemplate = "{instruction}\nUser ({emotion} mood): {input}\nRespond compassionately:"

// Classifier labels text with an emotion and never fails.
type Classifier interface {
	Classify(ctx context.Context, text string) string
}

// Journal records stored entries as text lines.
type Journal interface {
	Append(e mvmodel.Entry) error
}

// Reply is the outcome of one Respond call.
type Reply struct {
	Text    string          `json:"reply"`
	Emotion string          `json:"emotion,omitempty"`
	Persona persona.Persona `json:"persona"`
	Command bool            `json:"command"`
	Stored  bool            `json:"stored"`
	EntryID string          `json:"entry_id,omitempty"`
}

type Orchestrator struct {
	classifier Classifier
	store      store.Store
	journal    Journal
	sessions   persona.SessionStore
	model      model.BaseChatModel
	template   prompt.ChatTemplate
	metrics    *metrics.Metrics
	log        zerolog.Logger
}

type Option func(*Orchestrator)

func WithLogger(l zerolog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func New(c Classifier, s store.Store, j Journal, sessions persona.SessionStore, m model.BaseChatModel, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		classifier: c,
		store:      s,
		journal:    j,
		sessions:   sessions,
		model:      m,
		template:   prompt.FromMessages(schema.FString, schema.UserMessage(replyTemplate)),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Respond handles one message for a session. A non-empty mode first sets the
// session persona, as a UI selector does. A slash command only switches the
// persona and returns its confirmation. Anything else is classified, stored,
// journaled and answered in the session's persona.
//
// Store and journal failures are logged and reported through Reply.Stored;
// they never stop the reply.
func (o *Orchestrator) Respond(ctx context.Context, sessionID, input, mode string) (*Reply, error) {
	log := o.log.With().Str("session", sessionID).Logger()

	if p, ok := persona.Parse(mode); ok {
		if err := o.sessions.Set(ctx, sessionID, p); err != nil {
			return nil, fmt.Errorf("set persona: %w", err)
		}
	}

	if p, confirmation, ok := persona.Command(input); ok {
		if err := o.sessions.Set(ctx, sessionID, p); err != nil {
			return nil, fmt.Errorf("set persona: %w", err)
		}
		o.metrics.Message("command")
		log.Info().Str("persona", string(p)).Msg("persona switched")
		return &Reply{Text: confirmation, Persona: p, Command: true}, nil
	}
	o.metrics.Message("entry")

	reply := &Reply{Emotion: o.classifier.Classify(ctx, input)}

	entry, err := o.store.Add(ctx, store.AddParams{Text: input, Emotion: reply.Emotion})
	if err != nil {
		o.metrics.StoreFailure()
		log.Warn().Err(err).Msg("store entry failed")
	} else {
		reply.Stored = true
		reply.EntryID = entry.ID
		o.metrics.Stored(entry.Emotion)
		if err := o.journal.Append(*entry); err != nil {
			log.Warn().Err(err).Str("entry", entry.ID).Msg("journal append failed")
		}
	}

	p, err := o.sessions.Get(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Msg("load persona failed, using default")
		p = persona.Default
	}
	reply.Persona = p

	reply.Text = o.generate(ctx, log, p, reply.Emotion, input)
	return reply, nil
}

// Prompt renders the reply prompt for a persona, emotion and input.
func (o *Orchestrator) Prompt(ctx context.Context, p persona.Persona, emotion, input string) ([]*schema.Message, error) {
	return o.template.Format(ctx, map[string]any{
		"instruction": p.Instruction(),
		"emotion":     emotion,
		"input":       input,
	})
}

func (o *Orchestrator) generate(ctx context.Context, log zerolog.Logger, p persona.Persona, emotion, input string) string {
	msgs, err := o.Prompt(ctx, p, emotion, input)
	if err != nil {
		log.Error().Err(err).Msg("build prompt failed")
		o.metrics.GenerationFallback()
		return FallbackReply
	}

	start := time.Now()
	text, err := llm.Chat(ctx, o.model, msgs)
	o.metrics.ObserveGenerate(start)
	if err != nil {
		log.Warn().Err(err).Msg("generate reply failed")
		o.metrics.GenerationFallback()
		return FallbackReply
	}
	if text == "" {
		log.Warn().Msg("generated reply was empty")
		o.metrics.GenerationFallback()
		return FallbackReply
	}
	return text
}
