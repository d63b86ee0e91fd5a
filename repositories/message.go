package repositories

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

// StoreMessage persists a message sent by a member of an existing chat and
// bumps the chat activity. The msg key carries a 19-digit zero padded
// timestamp so a prefix scan returns messages in chronological order.
func (s *Store) StoreMessage(m chat.PersistedMessage) error {
	return s.db.Update(func(txn *badger.Txn) error {
		var c chatRecord
		if err := getRecord(txn, chatKey(m.ChatID), &c); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrChatNotFound
			}
			return err
		}
		member, err := exists(txn, memberKey(m.ChatID, m.SenderID))
		if err != nil {
			return err
		}
		if !member {
			return errors.ErrPermissionDenied
		}
		taken, err := exists(txn, messageIDKey(m.ID))
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: message id %s already used", errors.ErrPermissionDenied, m.ID)
		}

		key := messageKey(m)
		if err := setRecord(txn, key, fromMessage(m)); err != nil {
			return err
		}
		if err := txn.Set(messageIDKey(m.ID), key); err != nil {
			return err
		}
		c.LastActivityAt = m.CreatedAt.UnixNano()
		return setRecord(txn, chatKey(m.ChatID), c)
	})
}

// GetMessages pages backwards from the newest message. cursor is the key
// suffix returned by the previous page, nil for the first page.
func (s *Store) GetMessages(chatID chat.ChatID, cursor *string, limit int) ([]chat.PersistedMessage, *string, error) {
	var (
		messages []chat.PersistedMessage
		lastKey  string
	)
	err := s.db.View(func(txn *badger.Txn) error {
		prefix := messagePrefix(chatID)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append([]byte{}, prefix...)
		if cursor == nil {
			seekKey = append(seekKey, 0xFF)
		} else {
			seekKey = append(seekKey, *cursor...)
		}
		it.Seek(seekKey)
		if cursor != nil && it.ValidForPrefix(prefix) && string(it.Item().Key()[len(prefix):]) == *cursor {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[len(prefix):])
			var record messageRecord
			if err := item.Value(func(data []byte) error { return decodeMessage(data, &record) }); err != nil {
				return err
			}
			messages = append(messages, record.toMessage())
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if len(messages) == 0 {
		return nil, nil, nil
	}
	return messages, &lastKey, nil
}

// DeleteMessage removes a message. Only its sender may delete it.
func (s *Store) DeleteMessage(messageID chat.MessageID, requester chat.UserID) (chat.PersistedMessage, error) {
	var deleted chat.PersistedMessage
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(messageIDKey(messageID))
		if err == badger.ErrKeyNotFound {
			return errors.ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		key, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		var record messageRecord
		if err := getRecord(txn, key, &record); err != nil {
			if err == badger.ErrKeyNotFound {
				return errors.ErrMessageNotFound
			}
			return err
		}
		if record.SenderID != requester.String() {
			return errors.ErrPermissionDenied
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		deleted = record.toMessage()
		return txn.Delete(messageIDKey(messageID))
	})
	return deleted, err
}

func fromMessage(m chat.PersistedMessage) messageRecord {
	return messageRecord{
		ID:        m.ID.String(),
		ChatID:    m.ChatID.String(),
		SenderID:  m.SenderID.String(),
		Content:   m.Content,
		CreatedAt: m.CreatedAt.UnixNano(),
	}
}

func (r messageRecord) toMessage() chat.PersistedMessage {
	return chat.PersistedMessage{
		ID:        chat.MessageID(r.ID),
		ChatID:    chat.ChatID(r.ChatID),
		SenderID:  chat.UserID(r.SenderID),
		Content:   r.Content,
		CreatedAt: fromUnixNano(r.CreatedAt),
	}
}

func decodeMessage(data []byte, record *messageRecord) error {
	if err := cbor.Unmarshal(data, record); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}
