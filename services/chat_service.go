package services

import (
	"chirp-hub/contract"
	"chirp-hub/domain/chat"
	"chirp-hub/domain/event"
	"chirp-hub/errors"
	"chirp-hub/repositories"
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IChatService interface {
	contract.MessagePersister
	contract.MembershipSource
	CreateChat(ctx context.Context, creator chat.UserID, participantIDs []chat.UserID) (chat.Chat, error)
	GetChats(ctx context.Context, userID chat.UserID) ([]chat.Chat, error)
	AddParticipants(ctx context.Context, chatID chat.ChatID, requester chat.UserID, userIDs []chat.UserID) ([]chat.UserID, error)
	LeaveChat(ctx context.Context, chatID chat.ChatID, userID chat.UserID) error
	DeleteMessage(ctx context.Context, messageID chat.MessageID, requester chat.UserID) error
	UpdateProfilePicture(ctx context.Context, userID chat.UserID, url *string) error
	GetMessages(ctx context.Context, chatID chat.ChatID, requester chat.UserID, cursor *string, limit int) ([]chat.PersistedMessage, *string, error)
}

// ChatService owns the durable chat state. Every mutation publishes its
// domain event once the store transaction has committed, never before.
type ChatService struct {
	log       *slog.Logger
	store     repositories.IStore
	publisher contract.EventPublisher
	now       func() time.Time
}

func NewChatService(log *slog.Logger, store repositories.IStore, publisher contract.EventPublisher) *ChatService {
	return &ChatService{
		log:       log,
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SendMessage stores a message. The live NEW_MESSAGE event is published by the
// command handler, so this method only persists.
func (s *ChatService) SendMessage(_ context.Context, chatID chat.ChatID, senderID chat.UserID,
	content string, messageID *chat.MessageID) (chat.PersistedMessage, error) {
	id := chat.MessageID(uuid.NewString())
	if messageID != nil {
		id = *messageID
	}
	msg := chat.PersistedMessage{
		ID:        id,
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.store.StoreMessage(msg); err != nil {
		return chat.PersistedMessage{}, err
	}
	return msg, nil
}

func (s *ChatService) ListChatsForUser(_ context.Context, userID chat.UserID) ([]chat.ChatID, error) {
	return s.store.ListChatsForUser(userID)
}

// CreateChat creates a chat between the creator and the given users.
func (s *ChatService) CreateChat(ctx context.Context, creator chat.UserID, participantIDs []chat.UserID) (chat.Chat, error) {
	ids := lo.Uniq(append([]chat.UserID{creator}, participantIDs...))
	c := chat.Chat{
		ID:             chat.ChatID(uuid.NewString()),
		CreatorID:      creator,
		LastActivityAt: s.now(),
		Participants: lo.Map(ids, func(u chat.UserID, _ int) chat.Participant {
			return chat.Participant{UserID: u}
		}),
	}
	if err := s.store.CreateChat(c); err != nil {
		return chat.Chat{}, err
	}
	s.publish(ctx, event.ChatCreated{ChatID: c.ID, ParticipantIDs: ids})
	return c, nil
}

// GetChats returns the chats of a user, most recently active first.
func (s *ChatService) GetChats(_ context.Context, userID chat.UserID) ([]chat.Chat, error) {
	ids, err := s.store.ListChatsForUser(userID)
	if err != nil {
		return nil, err
	}
	chats := make([]chat.Chat, 0, len(ids))
	for _, id := range ids {
		c, err := s.store.GetChat(id)
		if errors.Is(err, errors.ErrChatNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastActivityAt.After(chats[j].LastActivityAt)
	})
	return chats, nil
}

// AddParticipants adds users to a chat. Only users that were not members yet
// are announced.
func (s *ChatService) AddParticipants(ctx context.Context, chatID chat.ChatID, requester chat.UserID,
	userIDs []chat.UserID) ([]chat.UserID, error) {
	added, err := s.store.AddParticipants(chatID, requester, userIDs)
	if err != nil {
		return nil, err
	}
	if len(added) > 0 {
		s.publish(ctx, event.ParticipantsJoined{ChatID: chatID, UserIDs: added})
	}
	return added, nil
}

func (s *ChatService) LeaveChat(ctx context.Context, chatID chat.ChatID, userID chat.UserID) error {
	if err := s.store.RemoveParticipant(chatID, userID); err != nil {
		return err
	}
	s.publish(ctx, event.ParticipantLeft{ChatID: chatID, UserID: userID})
	return nil
}

func (s *ChatService) DeleteMessage(ctx context.Context, messageID chat.MessageID, requester chat.UserID) error {
	deleted, err := s.store.DeleteMessage(messageID, requester)
	if err != nil {
		return err
	}
	s.publish(ctx, event.MessageDeleted{ChatID: deleted.ChatID, MessageID: deleted.ID})
	return nil
}

func (s *ChatService) UpdateProfilePicture(ctx context.Context, userID chat.UserID, url *string) error {
	if err := s.store.SetProfilePicture(userID, url); err != nil {
		return err
	}
	s.publish(ctx, event.ProfilePictureUpdated{UserID: userID, NewURL: url})
	return nil
}

// GetMessages pages the history of a chat the requester belongs to.
func (s *ChatService) GetMessages(_ context.Context, chatID chat.ChatID, requester chat.UserID,
	cursor *string, limit int) ([]chat.PersistedMessage, *string, error) {
	c, err := s.store.GetChat(chatID)
	if err != nil {
		return nil, nil, err
	}
	if !c.HasParticipant(requester) {
		return nil, nil, errors.ErrPermissionDenied
	}
	return s.store.GetMessages(chatID, cursor, limit)
}

// publish never fails the caller: the state is already committed and live
// delivery is best effort.
func (s *ChatService) publish(ctx context.Context, e event.DomainEvent) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Error("Unable to publish event", "event", e.Type(), "error", err)
	}
}
