// Package chat contains the core identifiers and value types of the chat hub.
// It has no behavior beyond small helpers and no dependency on the runtime.
package chat

type (
	UserID    string
	ChatID    string
	SessionID string
	MessageID string
)

func (id UserID) String() string    { return string(id) }
func (id ChatID) String() string    { return string(id) }
func (id SessionID) String() string { return string(id) }
func (id MessageID) String() string { return string(id) }
