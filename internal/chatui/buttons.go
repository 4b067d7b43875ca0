// Package chatui translates between chat-platform text and engine events and
// schedules inbound messages for the transports.
package chatui

import (
	"strings"

	"github.com/PoluyanbIch/GoQuizBot/internal/session"
)

const MsgUnknownCommand = "Неизвестная команда"

var commands = map[string]session.EventKind{
	"start":     session.EventStart,
	"cancel":    session.EventCancel,
	"question":  session.EventNewQuestion,
	"surrender": session.EventSurrender,
	"score":     session.EventScore,
	"top":       session.EventTop,
}

// CommandKind maps a command name, with or without the leading slash.
func CommandKind(name string) (session.EventKind, bool) {
	kind, ok := commands[strings.ToLower(strings.TrimPrefix(name, "/"))]
	return kind, ok
}

// Classify maps inbound text to an event. Button labels and slash commands
// are recognised; with bare set, "start" and "cancel" typed without the
// slash count as commands too. ok is false for an unknown slash command.
func Classify(text string, bare bool) (kind session.EventKind, ok bool) {
	trimmed := strings.TrimSpace(text)

	switch trimmed {
	case session.ButtonNewQuestion:
		return session.EventNewQuestion, true
	case session.ButtonSurrender:
		return session.EventSurrender, true
	case session.ButtonScore:
		return session.EventScore, true
	}

	if strings.HasPrefix(trimmed, "/") {
		return CommandKind(trimmed)
	}
	if bare {
		switch strings.ToLower(trimmed) {
		case "start":
			return session.EventStart, true
		case "cancel":
			return session.EventCancel, true
		}
	}
	return session.EventAnswer, true
}

// Rows is the button layout for a keyboard hint; nil means no buttons.
func Rows(k session.Keyboard) [][]string {
	switch k {
	case session.KeyboardNewQuestion:
		return [][]string{{session.ButtonNewQuestion, session.ButtonScore}}
	case session.KeyboardAnswer:
		return [][]string{{session.ButtonScore, session.ButtonSurrender}}
	default:
		return nil
	}
}
