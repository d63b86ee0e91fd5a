package runtime

import (
	"chirp-hub/contract"
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"chirp-hub/observability"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// SessionRegistry is the only component creating and destroying sessions.
// Identity and membership lookups happen before the index lock is taken.
type SessionRegistry struct {
	log        *slog.Logger
	index      *MembershipIndex
	identity   contract.IdentityResolver
	membership contract.MembershipSource
	metrics    *observability.Metrics
	now        func() time.Time
}

func NewSessionRegistry(log *slog.Logger, index *MembershipIndex, identity contract.IdentityResolver,
	membership contract.MembershipSource, metrics *observability.Metrics) *SessionRegistry {
	return &SessionRegistry{
		log:        log,
		index:      index,
		identity:   identity,
		membership: membership,
		metrics:    metrics,
		now:        time.Now,
	}
}

// Connect authenticates the credential, warms the user's memberships if needed
// and registers a new session routed to all of the user's chats.
func (r *SessionRegistry) Connect(ctx context.Context, transport chat.Transport, credential string) (chat.SessionID, error) {
	userID, err := r.identity.ResolveIdentity(ctx, credential)
	if err != nil {
		r.metrics.AuthFailures.Inc()
		r.log.Debug("Connection refused", "error", err)
		if closeErr := transport.Close(chat.CloseAuthenticationFailed); closeErr != nil {
			r.log.Debug("Unable to close refused transport", "error", closeErr)
		}
		return "", fmt.Errorf("%w: %w", errors.ErrAuthenticationFailed, err)
	}

	if err := r.warm(ctx, userID, false); err != nil {
		r.log.Error("Unable to load memberships", "user_id", userID, "error", err)
		if closeErr := transport.Close(chat.CloseInternalError); closeErr != nil {
			r.log.Debug("Unable to close transport", "error", closeErr)
		}
		return "", err
	}

	session := chat.Session{
		ID:           chat.SessionID(uuid.NewString()),
		UserID:       userID,
		Transport:    transport,
		LastLiveness: r.now(),
	}
	r.index.AddSession(session)
	r.metrics.Sessions.Inc()
	r.log.Info("Session connected", "session_id", session.ID, "user_id", userID)
	return session.ID, nil
}

// Invalidate re-runs the membership query for a user and replaces the cached chats.
// Live sessions of the user keep receiving events while the query runs.
func (r *SessionRegistry) Invalidate(ctx context.Context, userID chat.UserID) error {
	return r.warm(ctx, userID, true)
}

func (r *SessionRegistry) warm(ctx context.Context, userID chat.UserID, rewarm bool) error {
	if !r.index.BeginWarm(userID, rewarm) {
		return nil
	}
	chatIDs, err := r.membership.ListChatsForUser(ctx, userID)
	if err != nil {
		r.index.AbortWarm(userID)
		return fmt.Errorf("list chats of user %s: %w", userID, err)
	}
	r.index.Install(userID, chatIDs, rewarm)
	r.log.Debug("Memberships warmed", "user_id", userID, "chats", len(chatIDs))
	return nil
}

// Disconnect is idempotent: an unknown id is ignored.
func (r *SessionRegistry) Disconnect(sessionID chat.SessionID) {
	s, ok := r.index.RemoveSession(sessionID)
	if !ok {
		return
	}
	r.metrics.Sessions.Dec()
	r.log.Info("Session disconnected", "session_id", sessionID, "user_id", s.UserID)
}

func (r *SessionRegistry) Evict(sessionID chat.SessionID, reason chat.CloseReason, label string) bool {
	s, ok := r.index.RemoveSession(sessionID)
	if !ok {
		return false
	}
	r.metrics.Sessions.Dec()
	r.metrics.Evictions.WithLabelValues(label).Inc()
	r.log.Info("Session evicted", "session_id", sessionID, "user_id", s.UserID, "reason", label)
	if err := s.Transport.Close(reason); err != nil && !errors.Is(err, errors.ErrTransportClosed) {
		r.log.Debug("Unable to close evicted transport", "session_id", sessionID, "error", err)
	}
	return true
}

// Touch never resurrects a session removed concurrently.
func (r *SessionRegistry) Touch(sessionID chat.SessionID) {
	r.index.Touch(sessionID, r.now())
}

func (r *SessionRegistry) Snapshot() []chat.Session {
	return r.index.Snapshot()
}

func (r *SessionRegistry) Session(sessionID chat.SessionID) (chat.Session, bool) {
	return r.index.Session(sessionID)
}
