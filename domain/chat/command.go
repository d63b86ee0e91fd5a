package chat

import (
	"time"
)

// SendMessageCommand is a client request to post a message in a chat.
// MessageID is optional and lets the client pick the id of the persisted message.
type SendMessageCommand struct {
	ChatID    ChatID
	Content   string
	MessageID *MessageID
}

// PersistedMessage is what the persistence collaborator returns once the
// message has been committed.
type PersistedMessage struct {
	ID        MessageID `json:"id"`
	ChatID    ChatID    `json:"chatId"`
	SenderID  UserID    `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
