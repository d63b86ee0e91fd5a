package services

import (
	"chirp-hub/contract"
	"chirp-hub/domain/chat"
	"chirp-hub/domain/event"
	"chirp-hub/errors"
	"chirp-hub/observability"
	"chirp-hub/protocol"
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CommandHandler validates client frames before they reach persistence.
// Only the originating session ever hears about a refused command.
type CommandHandler struct {
	log          *slog.Logger
	sessions     contract.ISessionRegistry
	routes       contract.IRoutingTable
	persister    contract.MessagePersister
	publisher    contract.EventPublisher
	decoder      *protocol.Decoder
	metrics      *observability.Metrics
	replyTimeout time.Duration
}

func NewCommandHandler(log *slog.Logger, sessions contract.ISessionRegistry, routes contract.IRoutingTable,
	persister contract.MessagePersister, publisher contract.EventPublisher, decoder *protocol.Decoder,
	metrics *observability.Metrics, replyTimeout time.Duration) *CommandHandler {
	return &CommandHandler{
		log:          log,
		sessions:     sessions,
		routes:       routes,
		persister:    persister,
		publisher:    publisher,
		decoder:      decoder,
		metrics:      metrics,
		replyTimeout: replyTimeout,
	}
}

// HandleFrame decodes a raw client frame and runs the command it carries.
// Undecodable frames get an INVALID_JSON error reply.
func (h *CommandHandler) HandleFrame(ctx context.Context, sessionID chat.SessionID, raw []byte) error {
	cmd, err := h.decoder.DecodeSendMessage(raw)
	if err != nil {
		h.log.Debug("Rejected inbound frame", "session_id", sessionID, "error", err)
		h.reply(ctx, sessionID, fmt.Errorf("%w: %w", errors.ErrSerialization, err))
		return err
	}
	return h.HandleSend(ctx, sessionID, cmd)
}

// HandleSend persists a message sent through a live session and publishes it.
// Messages aimed at a chat the user does not belong to are dropped without reply.
func (h *CommandHandler) HandleSend(ctx context.Context, sessionID chat.SessionID, cmd chat.SendMessageCommand) error {
	session, ok := h.sessions.Session(sessionID)
	if !ok {
		return errors.ErrSessionNotFound
	}

	if !h.routes.IsMember(session.UserID, cmd.ChatID) {
		h.metrics.MembershipViolations.Inc()
		h.log.Warn("Membership violation, message discarded",
			"session_id", sessionID, "user_id", session.UserID, "chat_id", cmd.ChatID)
		return errors.ErrMembershipViolation
	}

	msg, err := h.persister.SendMessage(ctx, cmd.ChatID, session.UserID, cmd.Content, cmd.MessageID)
	if err != nil {
		h.log.Warn("Message refused", "session_id", sessionID, "chat_id", cmd.ChatID, "error", err)
		h.replyTo(ctx, session, err)
		return err
	}

	if err := h.publisher.Publish(ctx, event.NewMessage{Message: msg}); err != nil {
		h.log.Error("Unable to publish message", "chat_id", msg.ChatID, "message_id", msg.ID, "error", err)
		return err
	}
	return nil
}

func (h *CommandHandler) reply(ctx context.Context, sessionID chat.SessionID, cause error) {
	session, ok := h.sessions.Session(sessionID)
	if !ok {
		return
	}
	h.replyTo(ctx, session, cause)
}

func (h *CommandHandler) replyTo(ctx context.Context, session chat.Session, cause error) {
	replyCtx, cancel := context.WithTimeout(ctx, h.replyTimeout)
	defer cancel()
	if err := session.Transport.Send(replyCtx, protocol.EncodeError(cause)); err != nil {
		h.log.Debug("Unable to send error reply", "session_id", session.ID, "error", err)
	}
}
