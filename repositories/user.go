package repositories

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// SetProfilePicture stores the picture url of a user, nil removes it.
func (s *Store) SetProfilePicture(userID chat.UserID, url *string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return setRecord(txn, profileKey(userID), profileRecord{
			UserID:     userID.String(),
			PictureURL: url,
			UpdatedAt:  time.Now().UnixNano(),
		})
	})
}

func (s *Store) GetProfile(userID chat.UserID) (Profile, error) {
	var record profileRecord
	err := s.db.View(func(txn *badger.Txn) error {
		return getRecord(txn, profileKey(userID), &record)
	})
	if err == badger.ErrKeyNotFound {
		return Profile{}, errors.ErrUserNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		UserID:            chat.UserID(record.UserID),
		ProfilePictureURL: record.PictureURL,
		UpdatedAt:         fromUnixNano(record.UpdatedAt),
	}, nil
}
