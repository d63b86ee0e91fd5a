//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chirp-hub/domain/chat"
	"chirp-hub/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IdentityResolver turns the credential presented at connect time into a user.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, credential string) (chat.UserID, error)
}

// MembershipSource is the one-shot query used to warm a user's chat list.
type MembershipSource interface {
	ListChatsForUser(ctx context.Context, userID chat.UserID) ([]chat.ChatID, error)
}

// MessagePersister stores a message sent through a live session.
// It returns errors.ErrChatNotFound or errors.ErrPermissionDenied on refusal.
type MessagePersister interface {
	SendMessage(ctx context.Context, chatID chat.ChatID, senderID chat.UserID,
		content string, messageID *chat.MessageID) (chat.PersistedMessage, error)
}

// EventPublisher hands a committed domain event over to the hub.
type EventPublisher interface {
	Publish(ctx context.Context, e event.DomainEvent) error
}

type ISessionRegistry interface {
	Connect(ctx context.Context, transport chat.Transport, credential string) (chat.SessionID, error)
	Disconnect(sessionID chat.SessionID)
	Touch(sessionID chat.SessionID)
	Snapshot() []chat.Session
	// Evict closes the transport with the given reason and disconnects the session.
	// It returns false when the session was already gone.
	Evict(sessionID chat.SessionID, reason chat.CloseReason, label string) bool
	Session(sessionID chat.SessionID) (chat.Session, bool)
}

// IRoutingTable is the part of the membership index used to compute fanout targets.
// Mutating calls return the targets under the same lock as the mutation.
type IRoutingTable interface {
	ChatSessions(chatID chat.ChatID) []chat.Session
	UserChatSessions(userID chat.UserID) []chat.Session
	AddMembers(chatID chat.ChatID, userIDs []chat.UserID) []chat.Session
	RemoveMember(chatID chat.ChatID, userID chat.UserID) []chat.Session
	IsMember(userID chat.UserID, chatID chat.ChatID) bool
}

// DeliveryResult is the outcome of one event delivered to one session.
type DeliveryResult struct {
	SessionID chat.SessionID
	UserID    chat.UserID
	Err       error
}
