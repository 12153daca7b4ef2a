// Package panel bridges the chat session to a local sidebar panel over a
// localhost WebSocket. The panel is a thin view: it renders what the bridge
// pushes and reports user input back.
package panel

// MessageType tags a bridge message.
type MessageType string

const (
	// Outbound, bridge to panel.
	TypeSetPrompt   MessageType = "setPrompt"
	TypeAddResponse MessageType = "addResponse"
	TypeError       MessageType = "error"

	// Inbound, panel to bridge.
	TypePrompt       MessageType = "prompt"
	TypeCodeSelected MessageType = "codeSelected"
)

// Message is the frame exchanged with the panel. Value carries the prompt,
// the selected code, or the rendered response depending on Type.
type Message struct {
	ID    string      `json:"id,omitempty"`
	Type  MessageType `json:"type"`
	Value string      `json:"value,omitempty"`
}
