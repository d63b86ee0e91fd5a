package event

import (
	"chirp-hub/errors"
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the wire form of a domain event on the cross-instance bus.
type Envelope struct {
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Payload    json.RawMessage `json:"payload"`
}

// Encode wraps a domain event in an Envelope and marshals it.
func Encode(e DomainEvent, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSerialization, err)
	}
	return json.Marshal(Envelope{Type: e.Type(), OccurredAt: at.UTC(), Payload: payload})
}

// Decode parses an Envelope and returns the concrete domain event it carries.
func Decode(data []byte) (DomainEvent, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSerialization, err)
	}
	switch env.Type {
	case NewMessageType:
		return decodePayload[NewMessage](env.Payload)
	case MessageDeletedType:
		return decodePayload[MessageDeleted](env.Payload)
	case ParticipantsJoinedType:
		return decodePayload[ParticipantsJoined](env.Payload)
	case ParticipantLeftType:
		return decodePayload[ParticipantLeft](env.Payload)
	case ChatCreatedType:
		return decodePayload[ChatCreated](env.Payload)
	case ProfilePictureUpdatedType:
		return decodePayload[ProfilePictureUpdated](env.Payload)
	default:
		return nil, fmt.Errorf("%w: %q", errors.ErrUnknownEvent, env.Type)
	}
}

func decodePayload[T DomainEvent](raw json.RawMessage) (DomainEvent, error) {
	var e T
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrSerialization, err)
	}
	return e, nil
}
