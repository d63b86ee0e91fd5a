package runtime

import (
	"chirp-hub/domain/chat"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
)

type set[T comparable] map[T]struct{}

func addTo[K, V comparable](m map[K]set[V], key K, value V) {
	s, ok := m[key]
	if !ok {
		s = make(set[V])
		m[key] = s
	}
	s[value] = struct{}{}
}

// removeFrom deletes value from m[key] and drops the entry once it is empty.
func removeFrom[K, V comparable](m map[K]set[V], key K, value V) {
	s, ok := m[key]
	if !ok {
		return
	}
	delete(s, value)
	if len(s) == 0 {
		delete(m, key)
	}
}

// pendingWarm tracks membership changes seen while a warm query for a user is in flight.
// delta holds the latest known state per chat: true joined, false left.
type pendingWarm struct {
	refs  int
	delta map[chat.ChatID]bool
}

// MembershipIndex maps users, their live sessions and their chats.
// All four tables change together under one lock and are never exposed:
// callers only get copies of sessions.
//
// Invariants kept by every operation:
//   - every session listed for a chat exists and belongs to a member of that chat
//   - no table keeps an empty set
type MembershipIndex struct {
	mu             sync.RWMutex
	sessionsByID   map[chat.SessionID]*chat.Session
	sessionsByUser map[chat.UserID]set[chat.SessionID]
	chatsByUser    map[chat.UserID]set[chat.ChatID]
	sessionsByChat map[chat.ChatID]set[chat.SessionID]

	// warmed users have a trusted chatsByUser entry (absent entry = no chats).
	warmed  set[chat.UserID]
	pending map[chat.UserID]*pendingWarm
}

func NewMembershipIndex() *MembershipIndex {
	return &MembershipIndex{
		sessionsByID:   make(map[chat.SessionID]*chat.Session),
		sessionsByUser: make(map[chat.UserID]set[chat.SessionID]),
		chatsByUser:    make(map[chat.UserID]set[chat.ChatID]),
		sessionsByChat: make(map[chat.ChatID]set[chat.SessionID]),
		warmed:         make(set[chat.UserID]),
		pending:        make(map[chat.UserID]*pendingWarm),
	}
}

// BeginWarm reports whether the caller must query the user's memberships.
// It returns false when the user is already warm, unless rewarm is set.
// Every true result must be followed by exactly one Install or AbortWarm.
func (x *MembershipIndex) BeginWarm(userID chat.UserID, rewarm bool) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.warmed[userID]; ok && !rewarm {
		return false
	}
	p, ok := x.pending[userID]
	if !ok {
		p = &pendingWarm{delta: make(map[chat.ChatID]bool)}
		x.pending[userID] = p
	}
	p.refs++
	return true
}

// AbortWarm releases a BeginWarm whose query failed.
func (x *MembershipIndex) AbortWarm(userID chat.UserID) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.releaseLocked(userID)
}

// Install stores the result of a warm query, replays the membership changes
// observed while the query was running and re-routes the user's live sessions.
// rewarm must match the BeginWarm call: a rewarm result always replaces the
// cached chats, a plain warm result is dropped once another install made the user warm.
func (x *MembershipIndex) Install(userID chat.UserID, chatIDs []chat.ChatID, rewarm bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	p := x.pending[userID]
	if _, isWarm := x.warmed[userID]; isWarm && !rewarm {
		x.releaseLocked(userID)
		return
	}

	next := make(set[chat.ChatID], len(chatIDs))
	for _, c := range chatIDs {
		next[c] = struct{}{}
	}
	if p != nil {
		for c, joined := range p.delta {
			if joined {
				next[c] = struct{}{}
			} else {
				delete(next, c)
			}
		}
	}

	previous := x.chatsByUser[userID]
	sessions := x.sessionsByUser[userID]
	for c := range previous {
		if _, kept := next[c]; kept {
			continue
		}
		for sid := range sessions {
			removeFrom(x.sessionsByChat, c, sid)
		}
	}
	for c := range next {
		if _, had := previous[c]; had {
			continue
		}
		for sid := range sessions {
			addTo(x.sessionsByChat, c, sid)
		}
	}

	if len(next) == 0 {
		delete(x.chatsByUser, userID)
	} else {
		x.chatsByUser[userID] = next
	}
	x.warmed[userID] = struct{}{}
	x.releaseLocked(userID)
}

func (x *MembershipIndex) releaseLocked(userID chat.UserID) {
	p, ok := x.pending[userID]
	if !ok {
		return
	}
	p.refs--
	if p.refs <= 0 {
		delete(x.pending, userID)
	}
}

// AddSession registers a live session and routes it to every chat of its user.
// The user must have been warmed first.
func (x *MembershipIndex) AddSession(s chat.Session) {
	x.mu.Lock()
	defer x.mu.Unlock()

	stored := s
	x.sessionsByID[s.ID] = &stored
	addTo(x.sessionsByUser, s.UserID, s.ID)
	for c := range x.chatsByUser[s.UserID] {
		addTo(x.sessionsByChat, c, s.ID)
	}
}

// RemoveSession drops the session from every table.
// It returns false if the session was unknown.
func (x *MembershipIndex) RemoveSession(id chat.SessionID) (chat.Session, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	s, ok := x.sessionsByID[id]
	if !ok {
		return chat.Session{}, false
	}
	delete(x.sessionsByID, id)
	removeFrom(x.sessionsByUser, s.UserID, id)
	for c := range x.chatsByUser[s.UserID] {
		removeFrom(x.sessionsByChat, c, id)
	}
	return *s, true
}

// Touch refreshes the liveness timestamp. Unknown sessions are ignored.
func (x *MembershipIndex) Touch(id chat.SessionID, now time.Time) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	s, ok := x.sessionsByID[id]
	if !ok {
		return false
	}
	s.LastLiveness = now
	return true
}

func (x *MembershipIndex) Session(id chat.SessionID) (chat.Session, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	s, ok := x.sessionsByID[id]
	if !ok {
		return chat.Session{}, false
	}
	return *s, true
}

// IsMember answers from the cached memberships only.
func (x *MembershipIndex) IsMember(userID chat.UserID, chatID chat.ChatID) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()

	_, ok := x.chatsByUser[userID][chatID]
	return ok
}

// Snapshot returns a point-in-time copy of all live sessions.
func (x *MembershipIndex) Snapshot() []chat.Session {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]chat.Session, 0, len(x.sessionsByID))
	for _, s := range x.sessionsByID {
		out = append(out, *s)
	}
	return out
}

// ChatSessions returns the live sessions subscribed to a chat.
func (x *MembershipIndex) ChatSessions(chatID chat.ChatID) []chat.Session {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.chatSessionsLocked(chatID)
}

// UserChatSessions returns every live session sharing at least one chat with the user.
func (x *MembershipIndex) UserChatSessions(userID chat.UserID) []chat.Session {
	x.mu.RLock()
	defer x.mu.RUnlock()

	seen := make(set[chat.SessionID])
	var out []chat.Session
	for c := range x.chatsByUser[userID] {
		for sid := range x.sessionsByChat[c] {
			if _, dup := seen[sid]; dup {
				continue
			}
			seen[sid] = struct{}{}
			out = append(out, *x.sessionsByID[sid])
		}
	}
	return out
}

// AddMembers records that users joined a chat and returns the sessions
// subscribed to the chat afterwards, old and new members alike.
func (x *MembershipIndex) AddMembers(chatID chat.ChatID, userIDs []chat.UserID) []chat.Session {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, u := range lo.Uniq(userIDs) {
		x.joinLocked(chatID, u)
	}
	return x.chatSessionsLocked(chatID)
}

// RemoveMember returns the sessions subscribed to the chat before the user
// leaves it, then removes the membership.
func (x *MembershipIndex) RemoveMember(chatID chat.ChatID, userID chat.UserID) []chat.Session {
	x.mu.Lock()
	defer x.mu.Unlock()

	before := x.chatSessionsLocked(chatID)
	x.leaveLocked(chatID, userID)
	return before
}

// Forget drops the cached memberships of a user with no live session.
// Users with live sessions are kept since their routing depends on it.
func (x *MembershipIndex) Forget(userID chat.UserID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	if len(x.sessionsByUser[userID]) > 0 {
		return false
	}
	delete(x.chatsByUser, userID)
	delete(x.warmed, userID)
	return true
}

func (x *MembershipIndex) joinLocked(chatID chat.ChatID, userID chat.UserID) {
	if p, ok := x.pending[userID]; ok {
		p.delta[chatID] = true
	}
	if _, ok := x.warmed[userID]; !ok {
		return
	}
	addTo(x.chatsByUser, userID, chatID)
	for sid := range x.sessionsByUser[userID] {
		addTo(x.sessionsByChat, chatID, sid)
	}
}

func (x *MembershipIndex) leaveLocked(chatID chat.ChatID, userID chat.UserID) {
	if p, ok := x.pending[userID]; ok {
		p.delta[chatID] = false
	}
	if _, ok := x.warmed[userID]; !ok {
		return
	}
	removeFrom(x.chatsByUser, userID, chatID)
	for sid := range x.sessionsByUser[userID] {
		removeFrom(x.sessionsByChat, chatID, sid)
	}
}

func (x *MembershipIndex) chatSessionsLocked(chatID chat.ChatID) []chat.Session {
	sids := x.sessionsByChat[chatID]
	if len(sids) == 0 {
		return nil
	}
	out := make([]chat.Session, 0, len(sids))
	for sid := range sids {
		out = append(out, *x.sessionsByID[sid])
	}
	return out
}

func (x *MembershipIndex) SessionCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.sessionsByID)
}

// IndexStats is a read-only summary used by metrics and logs.
type IndexStats struct {
	Sessions    int
	Users       int
	Chats       int
	WarmedUsers int
}

func (x *MembershipIndex) Stats() IndexStats {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return IndexStats{
		Sessions:    len(x.sessionsByID),
		Users:       len(x.sessionsByUser),
		Chats:       len(x.sessionsByChat),
		WarmedUsers: len(x.warmed),
	}
}

// Verify checks the index invariants and returns the first violation found.
func (x *MembershipIndex) Verify() error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for c, sids := range x.sessionsByChat {
		if len(sids) == 0 {
			return fmt.Errorf("empty session set for chat %s", c)
		}
		for sid := range sids {
			s, ok := x.sessionsByID[sid]
			if !ok {
				return fmt.Errorf("chat %s routes to unknown session %s", c, sid)
			}
			if _, member := x.chatsByUser[s.UserID][c]; !member {
				return fmt.Errorf("session %s of user %s routed to chat %s without membership", sid, s.UserID, c)
			}
		}
	}
	for u, sids := range x.sessionsByUser {
		if len(sids) == 0 {
			return fmt.Errorf("empty session set for user %s", u)
		}
		for sid := range sids {
			s, ok := x.sessionsByID[sid]
			if !ok || s.UserID != u {
				return fmt.Errorf("user %s lists foreign or unknown session %s", u, sid)
			}
		}
	}
	for u, chats := range x.chatsByUser {
		if len(chats) == 0 {
			return fmt.Errorf("empty chat set for user %s", u)
		}
		for c := range chats {
			for sid := range x.sessionsByUser[u] {
				if _, routed := x.sessionsByChat[c][sid]; !routed {
					return fmt.Errorf("session %s of user %s missing from chat %s", sid, u, c)
				}
			}
		}
	}
	for sid, s := range x.sessionsByID {
		if _, ok := x.sessionsByUser[s.UserID][sid]; !ok {
			return fmt.Errorf("session %s missing from its user %s", sid, s.UserID)
		}
		if _, warm := x.warmed[s.UserID]; !warm {
			return fmt.Errorf("session %s belongs to cold user %s", sid, s.UserID)
		}
	}
	return nil
}
