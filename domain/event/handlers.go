package event

// Visitor handles every kind of domain event.
// Adding an event kind adds a method here, so every consumer stops
// compiling until it handles the new kind.
type Visitor interface {
	VisitNewMessage(e NewMessage)
	VisitMessageDeleted(e MessageDeleted)
	VisitParticipantsJoined(e ParticipantsJoined)
	VisitParticipantLeft(e ParticipantLeft)
	VisitChatCreated(e ChatCreated)
	VisitProfilePictureUpdated(e ProfilePictureUpdated)
}
