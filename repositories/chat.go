package repositories

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

// CreateChat persists a chat and its participants.
func (s *Store) CreateChat(c chat.Chat) error {
	participants := lo.Uniq(c.ParticipantIDs())
	if len(participants) < chat.MinChatParticipants || len(participants) > chat.MaxChatParticipants {
		return errors.ErrInvalidChatSize
	}
	at := c.LastActivityAt.UnixNano()
	return s.db.Update(func(txn *badger.Txn) error {
		found, err := exists(txn, chatKey(c.ID))
		if err != nil {
			return err
		}
		if found {
			return errors.ErrChatAlreadyExists
		}
		record := chatRecord{ID: c.ID.String(), CreatorID: c.CreatorID.String(), CreatedAt: at, LastActivityAt: at}
		if err := setRecord(txn, chatKey(c.ID), record); err != nil {
			return err
		}
		for _, u := range participants {
			if err := s.addMember(txn, c.ID, u, at); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) addMember(txn *badger.Txn, chatID chat.ChatID, userID chat.UserID, at int64) error {
	if err := setRecord(txn, memberKey(chatID, userID), memberRecord{JoinedAt: at}); err != nil {
		return err
	}
	return txn.Set(userChatKey(userID, chatID), nil)
}

// GetChat returns the chat with its participants, their profile pictures and the last message.
func (s *Store) GetChat(chatID chat.ChatID) (chat.Chat, error) {
	var c chat.Chat
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		c, err = s.loadChat(txn, chatID)
		return err
	})
	return c, err
}

func (s *Store) loadChat(txn *badger.Txn, chatID chat.ChatID) (chat.Chat, error) {
	var record chatRecord
	if err := getRecord(txn, chatKey(chatID), &record); err != nil {
		if err == badger.ErrKeyNotFound {
			return chat.Chat{}, errors.ErrChatNotFound
		}
		return chat.Chat{}, err
	}
	c := chat.Chat{
		ID:             chatID,
		CreatorID:      chat.UserID(record.CreatorID),
		LastActivityAt: fromUnixNano(record.LastActivityAt),
	}
	for _, u := range keysWithPrefix(txn, memberPrefix(chatID)) {
		p := chat.Participant{UserID: chat.UserID(u)}
		var profile profileRecord
		if err := getRecord(txn, profileKey(p.UserID), &profile); err == nil {
			p.ProfilePictureURL = profile.PictureURL
		}
		c.Participants = append(c.Participants, p)
	}
	last, err := lastMessage(txn, chatID)
	if err != nil {
		return chat.Chat{}, err
	}
	c.LastMessage = last
	return c, nil
}

func lastMessage(txn *badger.Txn, chatID chat.ChatID) (*chat.PersistedMessage, error) {
	prefix := messagePrefix(chatID)
	options := badger.DefaultIteratorOptions
	options.Reverse = true
	it := txn.NewIterator(options)
	defer it.Close()

	it.Seek(append(prefix, 0xFF))
	if !it.ValidForPrefix(prefix) {
		return nil, nil
	}
	var record messageRecord
	if err := it.Item().Value(func(data []byte) error { return decodeMessage(data, &record) }); err != nil {
		return nil, err
	}
	return lo.ToPtr(record.toMessage()), nil
}

// ListChatsForUser returns the chats the user belongs to, from the reverse index.
func (s *Store) ListChatsForUser(userID chat.UserID) ([]chat.ChatID, error) {
	var out []chat.ChatID
	err := s.db.View(func(txn *badger.Txn) error {
		out = lo.Map(keysWithPrefix(txn, userChatPrefix(userID)), func(id string, _ int) chat.ChatID {
			return chat.ChatID(id)
		})
		return nil
	})
	return out, err
}

// AddParticipants adds users to a chat the requester belongs to.
// It returns the users that were not members yet.
func (s *Store) AddParticipants(chatID chat.ChatID, requester chat.UserID, userIDs []chat.UserID) ([]chat.UserID, error) {
	var added []chat.UserID
	err := s.db.Update(func(txn *badger.Txn) error {
		found, err := exists(txn, chatKey(chatID))
		if err != nil {
			return err
		}
		if !found {
			return errors.ErrChatNotFound
		}
		members := keysWithPrefix(txn, memberPrefix(chatID))
		if !lo.Contains(members, requester.String()) {
			return errors.ErrPermissionDenied
		}
		added = lo.Filter(lo.Uniq(userIDs), func(u chat.UserID, _ int) bool {
			return !lo.Contains(members, u.String())
		})
		if len(members)+len(added) > chat.MaxChatParticipants {
			return errors.ErrInvalidChatSize
		}
		at := time.Now().UnixNano()
		for _, u := range added {
			if err := s.addMember(txn, chatID, u, at); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// RemoveParticipant removes a user from a chat. The chat is kept even when
// it drops below the minimum size, as existing conversations stay readable.
func (s *Store) RemoveParticipant(chatID chat.ChatID, userID chat.UserID) error {
	return s.db.Update(func(txn *badger.Txn) error {
		found, err := exists(txn, chatKey(chatID))
		if err != nil {
			return err
		}
		if !found {
			return errors.ErrChatNotFound
		}
		member, err := exists(txn, memberKey(chatID, userID))
		if err != nil {
			return err
		}
		if !member {
			return errors.ErrUserNotFound
		}
		if err := txn.Delete(memberKey(chatID, userID)); err != nil {
			return err
		}
		return txn.Delete(userChatKey(userID, chatID))
	})
}
