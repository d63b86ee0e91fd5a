// Package protocol defines the frames exchanged with websocket clients.
// Every frame is an envelope {"type": ..., "payload": ...}. Outbound payloads
// are the DTO serialized as a JSON string, the form clients already decode.
package protocol

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"encoding/json"
	"fmt"
	"time"
)

type MessageType string

const (
	TypeNewMessage              MessageType = "NEW_MESSAGE"
	TypeMessageDeleted          MessageType = "MESSAGE_DELETED"
	TypeProfilePictureUpdated   MessageType = "PROFILE_PICTURE_UPDATED"
	TypeChatParticipantsChanged MessageType = "CHAT_PARTICIPANTS_CHANGED"
	TypeError                   MessageType = "ERROR"
)

// Envelope is an inbound frame. Payload is an object or a string holding one.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type OutgoingEnvelope struct {
	Type    MessageType `json:"type"`
	Payload string      `json:"payload"`
}

type ChatMessageDto struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chatId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	SenderID  string    `json:"senderId"`
}

type DeleteMessageDto struct {
	ChatID    string `json:"chatId"`
	MessageID string `json:"messageId"`
}

type ProfilePictureUpdateDto struct {
	UserID string  `json:"userId"`
	NewURL *string `json:"newUrl"`
}

type ChatParticipantsChangedDto struct {
	ChatID  string   `json:"chatId"`
	UserIDs []string `json:"userIds"`
}

type ErrorDto struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func NewChatMessageDto(m chat.PersistedMessage) ChatMessageDto {
	return ChatMessageDto{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		SenderID:  m.SenderID.String(),
	}
}

func NewParticipantsChangedDto(chatID chat.ChatID, userIDs []chat.UserID) ChatParticipantsChangedDto {
	ids := make([]string, 0, len(userIDs))
	for _, u := range userIDs {
		ids = append(ids, u.String())
	}
	return ChatParticipantsChangedDto{ChatID: chatID.String(), UserIDs: ids}
}

// Encode builds the outbound frame, with the payload serialized into a string.
func Encode(t MessageType, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s payload: %w", errors.ErrSerialization, t, err)
	}
	frame, err := json.Marshal(OutgoingEnvelope{Type: t, Payload: string(body)})
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s envelope: %w", errors.ErrSerialization, t, err)
	}
	return frame, nil
}

// EncodeError builds the ERROR frame sent to a single session.
func EncodeError(err error) []byte {
	dto := ErrorDto{Message: "Internal error", Code: errors.ErrorCode(err)}
	switch dto.Code {
	case errors.CodeInvalidJSON:
		dto.Message = "Incoming JSON or UUID is invalid"
	case errors.CodeChatNotFound:
		dto.Message = "Chat not found"
	case errors.CodeForbidden:
		dto.Message = "Forbidden"
	}
	// ErrorDto only holds strings, marshalling cannot fail.
	frame, _ := Encode(TypeError, dto)
	return frame
}
