package event

import (
	"chirp-hub/domain/chat"
)

// Type names the kind of domain event, both in logs and on the event bus.
type Type string

const (
	NewMessageType            Type = "NEW_MESSAGE"
	MessageDeletedType        Type = "MESSAGE_DELETED"
	ParticipantsJoinedType    Type = "PARTICIPANTS_JOINED"
	ParticipantLeftType       Type = "PARTICIPANT_LEFT"
	ChatCreatedType           Type = "CHAT_CREATED"
	ProfilePictureUpdatedType Type = "PROFILE_PICTURE_UPDATED"
)

// DomainEvent is an immutable fact about a committed state change.
// The set of implementations is closed: only types in this package satisfy it.
type DomainEvent interface {
	Type() Type
	Accept(v Visitor)
}

type NewMessage struct {
	Message chat.PersistedMessage `json:"message"`
}

type MessageDeleted struct {
	ChatID    chat.ChatID    `json:"chatId"`
	MessageID chat.MessageID `json:"messageId"`
}

type ParticipantsJoined struct {
	ChatID  chat.ChatID   `json:"chatId"`
	UserIDs []chat.UserID `json:"userIds"`
}

type ParticipantLeft struct {
	ChatID chat.ChatID `json:"chatId"`
	UserID chat.UserID `json:"userId"`
}

type ChatCreated struct {
	ChatID         chat.ChatID   `json:"chatId"`
	ParticipantIDs []chat.UserID `json:"participantIds"`
}

type ProfilePictureUpdated struct {
	UserID chat.UserID `json:"userId"`
	NewURL *string     `json:"newUrl"`
}

func (NewMessage) Type() Type            { return NewMessageType }
func (MessageDeleted) Type() Type        { return MessageDeletedType }
func (ParticipantsJoined) Type() Type    { return ParticipantsJoinedType }
func (ParticipantLeft) Type() Type       { return ParticipantLeftType }
func (ChatCreated) Type() Type           { return ChatCreatedType }
func (ProfilePictureUpdated) Type() Type { return ProfilePictureUpdatedType }

func (e NewMessage) Accept(v Visitor)            { v.VisitNewMessage(e) }
func (e MessageDeleted) Accept(v Visitor)        { v.VisitMessageDeleted(e) }
func (e ParticipantsJoined) Accept(v Visitor)    { v.VisitParticipantsJoined(e) }
func (e ParticipantLeft) Accept(v Visitor)       { v.VisitParticipantLeft(e) }
func (e ChatCreated) Accept(v Visitor)           { v.VisitChatCreated(e) }
func (e ProfilePictureUpdated) Accept(v Visitor) { v.VisitProfilePictureUpdated(e) }
