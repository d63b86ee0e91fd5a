//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=../mocks/mock_store.go -package=mocks
package repositories

import (
	"chirp-hub/domain/chat"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

// IStore is the durable state behind the chat service. Every method runs in a
// single badger transaction, so the checks it performs and the writes it makes
// commit together.
type IStore interface {
	CreateChat(c chat.Chat) error
	GetChat(chatID chat.ChatID) (chat.Chat, error)
	ListChatsForUser(userID chat.UserID) ([]chat.ChatID, error)
	AddParticipants(chatID chat.ChatID, requester chat.UserID, userIDs []chat.UserID) ([]chat.UserID, error)
	RemoveParticipant(chatID chat.ChatID, userID chat.UserID) error
	StoreMessage(m chat.PersistedMessage) error
	GetMessages(chatID chat.ChatID, cursor *string, limit int) ([]chat.PersistedMessage, *string, error)
	DeleteMessage(messageID chat.MessageID, requester chat.UserID) (chat.PersistedMessage, error)
	SetProfilePicture(userID chat.UserID, url *string) error
	GetProfile(userID chat.UserID) (Profile, error)
}

type Store struct {
	db  *badger.DB
	log *slog.Logger
}

func NewStore(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log}
}

// Profile is the public part of a user kept by the hub backend.
type Profile struct {
	UserID            chat.UserID
	ProfilePictureURL *string
	UpdatedAt         time.Time
}

// Key layout, all prefixes end with ':' so scans never overlap:
//
//	chat:{chat}                    chatRecord
//	member:{chat}:{user}           memberRecord
//	userchat:{user}:{chat}         empty, reverse index
//	msg:{chat}:{unix_nano_019}:{id} messageRecord
//	msgid:{id}                     key of the msg entry
//	profile:{user}                 profileRecord
func chatKey(chatID chat.ChatID) []byte { return []byte("chat:" + chatID.String()) }

func memberPrefix(chatID chat.ChatID) []byte { return []byte("member:" + chatID.String() + ":") }

func memberKey(chatID chat.ChatID, userID chat.UserID) []byte {
	return append(memberPrefix(chatID), userID.String()...)
}

func userChatPrefix(userID chat.UserID) []byte { return []byte("userchat:" + userID.String() + ":") }

func userChatKey(userID chat.UserID, chatID chat.ChatID) []byte {
	return append(userChatPrefix(userID), chatID.String()...)
}

func messagePrefix(chatID chat.ChatID) []byte { return []byte("msg:" + chatID.String() + ":") }

func messageKey(m chat.PersistedMessage) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", m.ChatID, m.CreatedAt.UnixNano(), m.ID))
}

func messageIDKey(messageID chat.MessageID) []byte { return []byte("msgid:" + messageID.String()) }

func profileKey(userID chat.UserID) []byte { return []byte("profile:" + userID.String()) }

type chatRecord struct {
	ID             string `cbor:"id"`
	CreatorID      string `cbor:"creator"`
	CreatedAt      int64  `cbor:"created"`
	LastActivityAt int64  `cbor:"activity"`
}

type memberRecord struct {
	JoinedAt int64 `cbor:"joined"`
}

type messageRecord struct {
	ID        string `cbor:"id"`
	ChatID    string `cbor:"chat"`
	SenderID  string `cbor:"sender"`
	Content   string `cbor:"content"`
	CreatedAt int64  `cbor:"at"`
}

type profileRecord struct {
	UserID     string  `cbor:"user"`
	PictureURL *string `cbor:"picture"`
	UpdatedAt  int64   `cbor:"updated"`
}

func setRecord(txn *badger.Txn, key []byte, v any) error {
	data, err := cbor.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return txn.Set(key, data)
}

// getRecord returns badger.ErrKeyNotFound untouched so callers can map it.
func getRecord(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(data []byte) error {
		if err := cbor.Unmarshal(data, v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		return nil
	})
}

func exists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	switch {
	case err == nil:
		return true, nil
	case err == badger.ErrKeyNotFound:
		return false, nil
	default:
		return false, err
	}
}

// keysWithPrefix returns the key suffixes found after prefix.
func keysWithPrefix(txn *badger.Txn, prefix []byte) []string {
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	it := txn.NewIterator(options)
	defer it.Close()

	var out []string
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		out = append(out, string(it.Item().Key()[len(prefix):]))
	}
	return out
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
