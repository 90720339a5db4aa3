package bridge

import (
	"encoding/json"

	"github.com/dsaviz/dsaviz/internal/document"
	"github.com/dsaviz/dsaviz/internal/engine"
	"github.com/dsaviz/dsaviz/internal/layout"
	"github.com/dsaviz/dsaviz/internal/metrics"
)

type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

const (
	// Connection
	TypeWelcome = "welcome"

	// Host → engine
	TypeAction = "action"
	TypeEvent  = "event"
	TypeEdit   = "edit"
	TypeSync   = "sync"

	// Engine → host
	TypeState = "state"
	TypeError = "error"
)

// messageLabel maps a received type onto the fixed set the metrics know.
func messageLabel(typ string) string {
	switch typ {
	case TypeAction, TypeEvent, TypeEdit, TypeSync:
		return typ
	}
	return metrics.UnknownMessage
}

// WelcomePayload is sent once when a session opens.
type WelcomePayload struct {
	SessionID string          `json:"sessionId"`
	Limits    document.Limits `json:"limits"`
}

// EditPayload drives the in-place editor: "value" replaces the buffer,
// "commit" and "cancel" close it.
type EditPayload struct {
	Op    string `json:"op"`
	Value string `json:"value,omitempty"`
}

// StatePayload is everything the host needs to repaint after a message.
type StatePayload struct {
	Commands  []engine.DrawCommand     `json:"commands"`
	Viewport  engine.Viewport          `json:"viewport"`
	Display   document.DisplaySettings `json:"display"`
	Info      string                   `json:"info"`
	CanUndo   bool                     `json:"canUndo"`
	CanRedo   bool                     `json:"canRedo"`
	Selection *layout.Rect             `json:"selection,omitempty"`
	Editor    *EditorPayload           `json:"editor,omitempty"`
	Prompt    *engine.Prompt           `json:"prompt,omitempty"`
	ID        string                   `json:"id,omitempty"`
}

// EditorPayload places the host's text input over the edited element.
type EditorPayload struct {
	Rect  layout.Rect `json:"rect"`
	Value string      `json:"value"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
