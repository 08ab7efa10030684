package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mvmodel "github.com/rcliao/mindvault/internal/model"
	"github.com/rcliao/mindvault/internal/persona"
	"github.com/rcliao/mindvault/internal/store"
)

type fakeClassifier struct {
	label string
	calls int
}

func (f *fakeClassifier) Classify(context.Context, string) string {
	f.calls++
	return f.label
}

type fakeStore struct {
	store.Store // unimplemented methods panic
	err         error
	added       []store.AddParams
}

func (f *fakeStore) Add(_ context.Context, p store.AddParams) (*mvmodel.Entry, error) {
	f.added = append(f.added, p)
	if f.err != nil {
		return nil, f.err
	}
	return &mvmodel.Entry{ID: "01TEST", Text: p.Text, Emotion: p.Emotion, Timestamp: time.Now()}, nil
}

type fakeJournal struct {
	entries []mvmodel.Entry
	err     error
}

func (f *fakeJournal) Append(e mvmodel.Entry) error {
	f.entries = append(f.entries, e)
	return f.err
}

type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) Generate(_ context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.prompts = append(f.prompts, in[len(in)-1].Content)
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type fixture struct {
	classifier *fakeClassifier
	store      *fakeStore
	journal    *fakeJournal
	model      *fakeModel
	o          *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		classifier: &fakeClassifier{label: "sad"},
		store:      &fakeStore{},
		journal:    &fakeJournal{},
		model:      &fakeModel{reply: "  I hear you.  "},
	}
	f.o = New(f.classifier, f.store, f.journal, persona.NewMemorySessionStore(time.Hour), f.model)
	return f
}

func TestRespond_Entry(t *testing.T) {
	f := newFixture()
	r, err := f.o.Respond(context.Background(), "s1", "rough day at work", "")
	require.NoError(t, err)

	assert.Equal(t, "I hear you.", r.Text)
	assert.Equal(t, "sad", r.Emotion)
	assert.Equal(t, persona.Listener, r.Persona)
	assert.True(t, r.Stored)
	assert.Equal(t, "01TEST", r.EntryID)
	assert.False(t, r.Command)

	require.Len(t, f.store.added, 1)
	assert.Equal(t, store.AddParams{Text: "rough day at work", Emotion: "sad"}, f.store.added[0])
	require.Len(t, f.journal.entries, 1)
	assert.Equal(t, "rough day at work", f.journal.entries[0].Text)

	require.Len(t, f.model.prompts, 1)
	assert.Equal(t,
		"You are a warm, empathetic listener. Validate feelings without judgment.\nUser (sad mood): rough day at work\nRespond compassionately:",
		f.model.prompts[0])
}

func TestRespond_CommandSkipsEverything(t *testing.T) {
	f := newFixture()
	r, err := f.o.Respond(context.Background(), "s1", "/coach", "")
	require.NoError(t, err)

	assert.Equal(t, "Switched to Coach mode 🏋️", r.Text)
	assert.True(t, r.Command)
	assert.Equal(t, persona.Coach, r.Persona)
	assert.Zero(t, f.classifier.calls)
	assert.Empty(t, f.store.added)
	assert.Empty(t, f.journal.entries)
	assert.Empty(t, f.model.prompts)
}

func TestRespond_PersonaTransitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.o.Respond(ctx, "s1", "/coach", "")
	r, _ := f.o.Respond(ctx, "s1", "I keep procrastinating", "")
	assert.Equal(t, persona.Coach, r.Persona)
	assert.Contains(t, f.model.prompts[0], "You are a tough love life coach.")

	r, _ = f.o.Respond(ctx, "s1", "/whatever", "")
	assert.Equal(t, "Switched to Listener mode 🧘", r.Text)
	r, _ = f.o.Respond(ctx, "s1", "thanks", "")
	assert.Equal(t, persona.Listener, r.Persona)
}

func TestRespond_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.o.Respond(ctx, "a", "/cheer", "")
	r, _ := f.o.Respond(ctx, "b", "hello", "")
	assert.Equal(t, persona.Listener, r.Persona)
	r, _ = f.o.Respond(ctx, "a", "hello", "")
	assert.Equal(t, persona.Cheerleader, r.Persona)
}

func TestRespond_ModeForcesPersona(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	r, err := f.o.Respond(ctx, "s1", "big game today", "Cheerleader")
	require.NoError(t, err)
	assert.Equal(t, persona.Cheerleader, r.Persona)
	assert.Contains(t, f.model.prompts[0], "energetic cheerleader")

	// An empty mode keeps the persona set earlier.
	r, _ = f.o.Respond(ctx, "s1", "we won", "")
	assert.Equal(t, persona.Cheerleader, r.Persona)
}

func TestRespond_StoreFailure(t *testing.T) {
	f := newFixture()
	f.store.err = errors.New("disk full")

	r, err := f.o.Respond(context.Background(), "s1", "hello", "")
	require.NoError(t, err)
	assert.False(t, r.Stored)
	assert.Empty(t, r.EntryID)
	assert.Empty(t, f.journal.entries, "journal follows the store")
	assert.Equal(t, "I hear you.", r.Text, "reply still generated")
}

func TestRespond_JournalFailureKeepsStored(t *testing.T) {
	f := newFixture()
	f.journal.err = errors.New("read-only fs")

	r, err := f.o.Respond(context.Background(), "s1", "hello", "")
	require.NoError(t, err)
	assert.True(t, r.Stored)
}

func TestRespond_GenerationFallback(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{"error", "", errors.New("quota")},
		{"blank", " \n ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.model.reply, f.model.err = tt.reply, tt.err
			r, err := f.o.Respond(context.Background(), "s1", "hello", "")
			require.NoError(t, err)
			assert.Equal(t, FallbackReply, r.Text)
			assert.True(t, r.Stored)
		})
	}
}

func TestPrompt_BracesInInput(t *testing.T) {
	f := newFixture()
	msgs, err := f.o.Prompt(context.Background(), persona.Coach, "calm", "set {x} = 1")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, schema.User, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "set {x} = 1")
}
