// Package persona defines the response personas and the slash commands that
// switch between them.
package persona

import (
	"strings"
)

// Persona is a named response style.
type Persona string

const (
	Coach       Persona = "Coach"
	Listener    Persona = "Listener"
	Cheerleader Persona = "Cheerleader"
)

// Default is the persona of a session that never switched.
const Default = Listener

var instructions = map[Persona]string{
	Coach:       "You are a tough love life coach. Give direct, actionable advice.",
	Listener:    "You are a warm, empathetic listener. Validate feelings without judgment.",
	Cheerleader: "You're an energetic cheerleader! Respond with enthusiasm and emojis!",
}

var confirmations = map[Persona]string{
	Coach:       "Switched to Coach mode 🏋️",
	Listener:    "Switched to Listener mode 🧘",
	Cheerleader: "Switched to Cheerleader mode 🎉",
}

// All lists every persona in display order.
func All() []Persona {
	return []Persona{Listener, Coach, Cheerleader}
}

// Instruction returns the system instruction for p. Unknown personas get the
// default persona's instruction.
func (p Persona) Instruction() string {
	if s, ok := instructions[p]; ok {
		return s
	}
	return instructions[Default]
}

// Confirmation is the message shown after switching to p.
func (p Persona) Confirmation() string {
	if s, ok := confirmations[p]; ok {
		return s
	}
	return confirmations[Default]
}

func (p Persona) Valid() bool {
	_, ok := instructions[p]
	return ok
}

// IsCommand reports whether input is a slash command.
func IsCommand(input string) bool {
	return strings.HasPrefix(strings.TrimSpace(input), "/")
}

// Command interprets a slash command. Any command mentioning "coach" selects
// Coach, one mentioning "cheer" selects Cheerleader, and every other command
// selects Listener. ok is false when input is not a command.
func Command(input string) (p Persona, confirmation string, ok bool) {
	if !IsCommand(input) {
		return "", "", false
	}
	cmd := strings.ToLower(strings.TrimSpace(input))
	switch {
	case strings.Contains(cmd, "coach"):
		p = Coach
	case strings.Contains(cmd, "cheer"):
		p = Cheerleader
	default:
		p = Listener
	}
	return p, p.Confirmation(), true
}

// Parse maps a selector value to a persona. It accepts the slash commands
// ("/coach", "/cheer", "/listener") and the persona names, case-insensitively.
// An empty mode returns ok=false so the caller keeps the current persona; any
// other value selects Listener.
func Parse(mode string) (Persona, bool) {
	mode = strings.TrimSpace(mode)
	if mode == "" {
		return "", false
	}
	if p, _, ok := Command(mode); ok {
		return p, true
	}
	for _, p := range All() {
		if strings.EqualFold(mode, string(p)) {
			return p, true
		}
	}
	return Listener, true
}
