package persona

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		input   string
		want    Persona
		confirm string
		ok      bool
	}{
		{"/coach", Coach, "Switched to Coach mode 🏋️", true},
		{"  /COACH me  ", Coach, "Switched to Coach mode 🏋️", true},
		{"/cheer", Cheerleader, "Switched to Cheerleader mode 🎉", true},
		{"/cheerleader", Cheerleader, "Switched to Cheerleader mode 🎉", true},
		{"/listener", Listener, "Switched to Listener mode 🧘", true},
		{"/foo", Listener, "Switched to Listener mode 🧘", true},
		{"/", Listener, "Switched to Listener mode 🧘", true},
		{"coach me", "", "", false},
		{"", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p, confirm, ok := Command(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, p)
			assert.Equal(t, tt.confirm, confirm)
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		mode string
		want Persona
		ok   bool
	}{
		{"", "", false},
		{"   ", "", false},
		{"/coach", Coach, true},
		{"/cheer", Cheerleader, true},
		{"/listener", Listener, true},
		{"Coach", Coach, true},
		{"cheerleader", Cheerleader, true},
		{"LISTENER", Listener, true},
		{"pirate", Listener, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			p, ok := Parse(tt.mode)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestInstruction(t *testing.T) {
	assert.Equal(t, "You are a tough love life coach. Give direct, actionable advice.", Coach.Instruction())
	assert.Equal(t, "You are a warm, empathetic listener. Validate feelings without judgment.", Listener.Instruction())
	assert.Equal(t, "You're an energetic cheerleader! Respond with enthusiasm and emojis!", Cheerleader.Instruction())
	assert.Equal(t, Listener.Instruction(), Persona("Pirate").Instruction())
}

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(time.Hour)
	defer s.Close()

	p, err := s.Get(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, Listener, p)

	require.NoError(t, s.Set(ctx, "a", Coach))
	require.NoError(t, s.Set(ctx, "b", Cheerleader))

	p, _ = s.Get(ctx, "a")
	assert.Equal(t, Coach, p)
	p, _ = s.Get(ctx, "b")
	assert.Equal(t, Cheerleader, p, "sessions must not share state")

	assert.Error(t, s.Set(ctx, "a", Persona("Pirate")))
}

func TestMemorySessionStore_Expires(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(20 * time.Millisecond)
	require.NoError(t, s.Set(ctx, "a", Coach))
	time.Sleep(50 * time.Millisecond)

	p, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, Default, p)
}

func TestRedisHelpers(t *testing.T) {
	assert.Equal(t, "mindvault:persona:abc", redisKey("abc"))
	assert.Equal(t, Coach, decodeRedisValue("Coach"))
	assert.Equal(t, Default, decodeRedisValue("garbage"))
}

func TestOpenSessionStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSessionStore(ctx, "memory", "", 0)
	require.NoError(t, err)
	s.Close()

	_, err = OpenSessionStore(ctx, "redis", "", 0)
	assert.Error(t, err)

	_, err = OpenSessionStore(ctx, "etcd", "", 0)
	assert.Error(t, err)
}
