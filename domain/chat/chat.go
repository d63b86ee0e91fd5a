package chat

import "time"

const (
	MinChatParticipants = 2
	MaxChatParticipants = 100
)

type Participant struct {
	UserID            UserID
	Username          string
	ProfilePictureURL *string
}

type Chat struct {
	ID             ChatID
	CreatorID      UserID
	Participants   []Participant
	LastActivityAt time.Time
	LastMessage    *PersistedMessage
}

func (c Chat) ParticipantIDs() []UserID {
	ids := make([]UserID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

func (c Chat) HasParticipant(userID UserID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
