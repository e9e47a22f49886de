package model

import (
	"strings"

	"github.com/memoria-lab/memoria/pkg/domain/types"
)

// WorkingContext is the replayed conversation state handed to the reasoning
// engine at session start. It is rebuilt on every session start and never
// persisted.
type WorkingContext struct {
	// Instruction is the standing instruction telling the engine that
	// recalled memory is background context only.
	Instruction string

	// Turns is the short-term replay window in original order.
	Turns []Turn
}

// IsEmpty reports whether there is nothing to hand to the engine.
func (x *WorkingContext) IsEmpty() bool {
	return x == nil || (x.Instruction == "" && len(x.Turns) == 0)
}

// Render formats the working context as plain text for inclusion in a
// system prompt. The instruction appears exactly once, before the replay.
func (x *WorkingContext) Render() string {
	if x == nil {
		return ""
	}

	var sb strings.Builder
	if x.Instruction != "" {
		sb.WriteString(x.Instruction)
	}
	for _, turn := range x.Turns {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		switch turn.Role {
		case types.RoleAssistant:
			sb.WriteString("assistant: ")
		default:
			sb.WriteString("user: ")
		}
		sb.WriteString(turn.Text)
	}
	return sb.String()
}
