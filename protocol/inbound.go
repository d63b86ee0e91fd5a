package protocol

import (
	"bytes"
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// SendMessagePayload is the only command a client may send.
type SendMessagePayload struct {
	ChatID    string  `json:"chatId" validate:"required,uuid"`
	Content   string  `json:"content" validate:"required"`
	MessageID *string `json:"messageId" validate:"omitempty,uuid"`
}

// Decoder parses and validates inbound frames.
type Decoder struct {
	validate         *validator.Validate
	maxContentLength int
}

func NewDecoder(maxContentLength int) *Decoder {
	return &Decoder{validate: validator.New(), maxContentLength: maxContentLength}
}

// DecodeSendMessage turns a raw frame into a command.
// Any malformed input is reported as errors.ErrSerialization,
// a well-formed frame of another type as errors.ErrUnknownCommand.
func (d *Decoder) DecodeSendMessage(raw []byte) (chat.SendMessageCommand, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return chat.SendMessageCommand{}, fmt.Errorf("%w: %w", errors.ErrSerialization, err)
	}
	if env.Type != TypeNewMessage {
		return chat.SendMessageCommand{}, fmt.Errorf("%w: %q", errors.ErrUnknownCommand, env.Type)
	}

	body, err := unwrapPayload(env.Payload)
	if err != nil {
		return chat.SendMessageCommand{}, err
	}

	var p SendMessagePayload
	if err := json.Unmarshal(body, &p); err != nil {
		return chat.SendMessageCommand{}, fmt.Errorf("%w: %w", errors.ErrSerialization, err)
	}
	p.Content = strings.TrimSpace(p.Content)
	if err := d.validate.Struct(p); err != nil {
		return chat.SendMessageCommand{}, fmt.Errorf("%w: %w", errors.ErrSerialization, err)
	}
	if d.maxContentLength > 0 {
		if err := d.validate.Var(p.Content, fmt.Sprintf("max=%d", d.maxContentLength)); err != nil {
			return chat.SendMessageCommand{}, fmt.Errorf("%w: content too long", errors.ErrSerialization)
		}
	}

	cmd := chat.SendMessageCommand{ChatID: chat.ChatID(p.ChatID), Content: p.Content}
	if p.MessageID != nil {
		id := chat.MessageID(*p.MessageID)
		cmd.MessageID = &id
	}
	return cmd, nil
}

// unwrapPayload accepts a JSON object or a JSON string holding an object.
func unwrapPayload(payload json.RawMessage) ([]byte, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: missing payload", errors.ErrSerialization)
	}
	if trimmed[0] != '"' {
		return trimmed, nil
	}
	var inner string
	if err := json.Unmarshal(trimmed, &inner); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrSerialization, err)
	}
	return []byte(inner), nil
}
