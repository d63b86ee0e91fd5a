package repositories

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CreateChat_Indexes_Participants(t *testing.T) {
	req := require.New(t)
	store := openStore(t)
	c := newChat("alice", "bob", "carol")

	// When the chat is created
	req.NoError(store.CreateChat(c))

	// Then every participant lists it
	for _, u := range []chat.UserID{"alice", "bob", "carol"} {
		chats, err := store.ListChatsForUser(u)
		req.NoError(err)
		req.Equal([]chat.ChatID{c.ID}, chats)
	}
	got, err := store.GetChat(c.ID)
	req.NoError(err)
	req.ElementsMatch([]chat.UserID{"alice", "bob", "carol"}, got.ParticipantIDs())
	req.Nil(got.LastMessage)

	// And creating it again fails
	req.ErrorIs(store.CreateChat(c), errors.ErrChatAlreadyExists)
}

func Test_CreateChat_Size_Limits(t *testing.T) {
	req := require.New(t)
	store := openStore(t)

	req.ErrorIs(store.CreateChat(newChat("alice")), errors.ErrInvalidChatSize)
	req.ErrorIs(store.CreateChat(newChat("alice", "alice")), errors.ErrInvalidChatSize)

	var crowd []chat.UserID
	for i := 0; i < chat.MaxChatParticipants; i++ {
		crowd = append(crowd, chat.UserID(fmt.Sprintf("user-%d", i)))
	}
	req.ErrorIs(store.CreateChat(newChat("alice", crowd...)), errors.ErrInvalidChatSize)
	req.NoError(store.CreateChat(newChat("alice", crowd[:chat.MaxChatParticipants-1]...)))
}

func Test_AddParticipants(t *testing.T) {
	req := require.New(t)
	store := openStore(t)
	c := newChat("alice", "bob")
	req.NoError(store.CreateChat(c))

	// When alice adds bob again and dave
	added, err := store.AddParticipants(c.ID, "alice", []chat.UserID{"bob", "dave", "dave"})

	// Then only dave is new
	req.NoError(err)
	req.Equal([]chat.UserID{"dave"}, added)
	chats, err := store.ListChatsForUser("dave")
	req.NoError(err)
	req.Equal([]chat.ChatID{c.ID}, chats)

	// And outsiders cannot add anyone
	_, err = store.AddParticipants(c.ID, "mallory", []chat.UserID{"eve"})
	req.ErrorIs(err, errors.ErrPermissionDenied)
	_, err = store.AddParticipants("missing", "alice", []chat.UserID{"eve"})
	req.ErrorIs(err, errors.ErrChatNotFound)
}

func Test_RemoveParticipant(t *testing.T) {
	req := require.New(t)
	store := openStore(t)
	c := newChat("alice", "bob")
	req.NoError(store.CreateChat(c))

	req.NoError(store.RemoveParticipant(c.ID, "bob"))

	chats, err := store.ListChatsForUser("bob")
	req.NoError(err)
	req.Empty(chats)
	req.ErrorIs(store.RemoveParticipant(c.ID, "bob"), errors.ErrUserNotFound)
	req.ErrorIs(store.RemoveParticipant("missing", "bob"), errors.ErrChatNotFound)
}

func Test_Profile_Picture(t *testing.T) {
	req := require.New(t)
	store := openStore(t)
	url := "https://cdn/alice.png"

	_, err := store.GetProfile("alice")
	req.ErrorIs(err, errors.ErrUserNotFound)

	req.NoError(store.SetProfilePicture("alice", &url))
	profile, err := store.GetProfile("alice")
	req.NoError(err)
	req.Equal(&url, profile.ProfilePictureURL)

	// And chats expose it on the participant
	c := newChat("alice", "bob")
	req.NoError(store.CreateChat(c))
	got, err := store.GetChat(c.ID)
	req.NoError(err)
	for _, p := range got.Participants {
		if p.UserID == "alice" {
			req.Equal(&url, p.ProfilePictureURL)
		}
	}
}
