package runtime

import (
	"chirp-hub/domain/chat"
	"chirp-hub/domain/event"
	"chirp-hub/errors"
	"chirp-hub/observability"
	"chirp-hub/protocol"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu      sync.Mutex
	frames  [][]byte
	closed  *chat.CloseReason
	pingErr error
	pings   int
}

func (f *fakeTransport) Send(_ context.Context, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed != nil {
		return errors.ErrTransportClosed
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeTransport) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed != nil {
		return errors.ErrTransportClosed
	}
	f.pings++
	return f.pingErr
}

func (f *fakeTransport) Close(reason chat.CloseReason) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed != nil {
		return errors.ErrTransportClosed
	}
	f.closed = &reason
	return nil
}

func (f *fakeTransport) envelopes() []protocol.OutgoingEnvelope {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []protocol.OutgoingEnvelope
	for _, frame := range f.frames {
		var env protocol.OutgoingEnvelope
		_ = json.Unmarshal(frame, &env)
		out = append(out, env)
	}
	return out
}

func (f *fakeTransport) types() []string {
	var out []string
	for _, env := range f.envelopes() {
		out = append(out, string(env.Type))
	}
	return out
}

func (f *fakeTransport) closeReason() *chat.CloseReason {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// userIdentity treats the credential as the user id, "bad" is rejected.
type userIdentity struct{}

func (userIdentity) ResolveIdentity(_ context.Context, credential string) (chat.UserID, error) {
	if credential == "bad" || credential == "" {
		return "", errors.ErrInvalidToken
	}
	return chat.UserID(credential), nil
}

type fakeMembership struct {
	mu      sync.Mutex
	chats   map[chat.UserID][]chat.ChatID
	queries map[chat.UserID]int
}

func newFakeMembership(chats map[chat.UserID][]chat.ChatID) *fakeMembership {
	return &fakeMembership{chats: chats, queries: map[chat.UserID]int{}}
}

func (m *fakeMembership) ListChatsForUser(_ context.Context, userID chat.UserID) ([]chat.ChatID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[userID]++
	return append([]chat.ChatID(nil), m.chats[userID]...), nil
}

func (m *fakeMembership) set(userID chat.UserID, chats ...chat.ChatID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[userID] = chats
}

type fakePersister struct{}

func (fakePersister) SendMessage(_ context.Context, chatID chat.ChatID, senderID chat.UserID,
	content string, messageID *chat.MessageID) (chat.PersistedMessage, error) {
	id := chat.MessageID("M1")
	if messageID != nil {
		id = *messageID
	}
	return chat.PersistedMessage{ID: id, ChatID: chatID, SenderID: senderID, Content: content, CreatedAt: time.Now().UTC()}, nil
}

func newTestHub(membership *fakeMembership, touchOnAnyFrame bool) *Hub {
	queue := NewEventQueue(16)
	cfg := HubConfig{
		DeliveryTimeout:  time.Second,
		PingInterval:     30 * time.Second,
		PongTimeout:      60 * time.Second,
		RestartInterval:  10 * time.Millisecond,
		TouchOnAnyFrame:  touchOnAnyFrame,
		MaxContentLength: 1000,
	}
	return NewHub(logs.GetLoggerFromLevel(slog.LevelDebug), cfg, queue, queue,
		userIdentity{}, membership, fakePersister{}, observability.NewNopMetrics())
}

// drain dispatches every queued event synchronously.
func drain(h *Hub) {
	for {
		select {
		case e := <-h.queue.Events():
			h.dispatcher.Dispatch(context.Background(), e)
		default:
			return
		}
	}
}

func TestHub_Connect_Rejects_Bad_Credential(t *testing.T) {
	req := require.New(t)
	h := newTestHub(newFakeMembership(nil), true)
	tr := &fakeTransport{}

	// When a client connects with a rejected credential
	id, err := h.Connect(context.Background(), tr, "bad")

	// Then no session exists and the transport is closed with 1008
	req.ErrorIs(err, errors.ErrAuthenticationFailed)
	req.Empty(id)
	req.Equal(0, h.SessionCount())
	req.Equal(chat.CloseAuthenticationFailed, *tr.closeReason())
}

func TestHub_Scenario_Message_Then_Leave(t *testing.T) {
	req := require.New(t)
	c1 := chat.ChatID(uuid.NewString())
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{"U1": {c1}, "U2": {c1}}), true)
	ctx := context.Background()
	t1, t2 := &fakeTransport{}, &fakeTransport{}

	// Given U1 and U2 are connected and both members of C1
	s1, err := h.Connect(ctx, t1, "U1")
	req.NoError(err)
	s2, err := h.Connect(ctx, t2, "U2")
	req.NoError(err)

	// When U1 sends "hi" to C1
	raw := fmt.Sprintf(`{"type":"NEW_MESSAGE","payload":{"chatId":%q,"content":"hi"}}`, c1)
	req.NoError(h.HandleFrame(ctx, s1, []byte(raw)))
	drain(h)

	// Then both sessions receive NEW_MESSAGE with id M1
	req.Equal([]string{"NEW_MESSAGE"}, t1.types())
	req.Equal([]string{"NEW_MESSAGE"}, t2.types())
	req.Contains(t2.envelopes()[0].Payload, `"id":"M1"`)
	req.Contains(t2.envelopes()[0].Payload, `"content":"hi"`)

	// When U2 leaves C1
	req.NoError(h.Publish(ctx, event.ParticipantLeft{ChatID: c1, UserID: "U2"}))
	drain(h)

	// Then both sessions still see the departure
	req.Equal([]string{"NEW_MESSAGE", "CHAT_PARTICIPANTS_CHANGED"}, t1.types())
	req.Equal([]string{"NEW_MESSAGE", "CHAT_PARTICIPANTS_CHANGED"}, t2.types())
	req.JSONEq(fmt.Sprintf(`{"chatId":%q,"userIds":["U2"]}`, c1), t2.envelopes()[1].Payload)

	// And S2 is no longer routed to C1
	req.True(h.index.routes(c1, s1))
	req.False(h.index.routes(c1, s2))
	req.NoError(h.index.Verify())
}

func TestHub_Fanout_Reaches_Online_Members_Only(t *testing.T) {
	req := require.New(t)
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{
		"A": {"c"}, "B": {"c"}, "C": {"c"}, "X": {"other"},
	}), true)
	ctx := context.Background()
	ta, tb, tx := &fakeTransport{}, &fakeTransport{}, &fakeTransport{}

	// Given A and B online, C offline and X online in another chat
	_, _ = h.Connect(ctx, ta, "A")
	_, _ = h.Connect(ctx, tb, "B")
	_, _ = h.Connect(ctx, tx, "X")

	// When a message is dispatched in c
	results := h.dispatcher.Dispatch(ctx, event.NewMessage{Message: chat.PersistedMessage{ID: "m", ChatID: "c"}})

	// Then exactly A and B receive it
	req.Len(results, 2)
	req.Len(ta.types(), 1)
	req.Len(tb.types(), 1)
	req.Empty(tx.types())
}

func TestHub_Join_Reaches_Newly_Connected_Member(t *testing.T) {
	req := require.New(t)
	membership := newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c"}})
	h := newTestHub(membership, true)
	ctx := context.Background()
	ta, td := &fakeTransport{}, &fakeTransport{}
	_, _ = h.Connect(ctx, ta, "A")

	// Given D connected before the join was committed
	sd, err := h.Connect(ctx, td, "D")
	req.NoError(err)

	// When D joins c
	req.NoError(h.Publish(ctx, event.ParticipantsJoined{ChatID: "c", UserIDs: []chat.UserID{"D"}}))
	drain(h)

	// Then both old and new member are told, and D is routed to c
	req.Equal([]string{"CHAT_PARTICIPANTS_CHANGED"}, ta.types())
	req.Equal([]string{"CHAT_PARTICIPANTS_CHANGED"}, td.types())
	req.True(h.index.routes("c", sd))
}

func TestHub_Chat_Created_Routes_Online_Participants(t *testing.T) {
	req := require.New(t)
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{}), true)
	ctx := context.Background()
	ta := &fakeTransport{}
	sa, _ := h.Connect(ctx, ta, "A")

	// When a chat is created with A and an offline B
	h.dispatcher.Dispatch(ctx, event.ChatCreated{ChatID: "new", ParticipantIDs: []chat.UserID{"A", "B"}})

	// Then A is notified with the full participant list and routed
	req.Len(ta.frames, 1)
	req.JSONEq(`{"chatId":"new","userIds":["A","B"]}`, ta.envelopes()[0].Payload)
	req.True(h.index.routes("new", sa))
	req.False(h.index.IsMember("B", "new"))
}

func TestHub_Profile_Picture_Reaches_Chat_Partners(t *testing.T) {
	req := require.New(t)
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{
		"A": {"c1"}, "B": {"c1", "c2"}, "C": {"c2"}, "D": {"c3"},
	}), true)
	ctx := context.Background()
	ta, tb, tc, td := &fakeTransport{}, &fakeTransport{}, &fakeTransport{}, &fakeTransport{}
	for user, tr := range map[string]*fakeTransport{"A": ta, "B": tb, "C": tc, "D": td} {
		_, err := h.Connect(ctx, tr, user)
		req.NoError(err)
	}

	// When B changes picture
	url := "https://cdn/b.png"
	h.dispatcher.Dispatch(ctx, event.ProfilePictureUpdated{UserID: "B", NewURL: &url})

	// Then everyone sharing a chat with B hears about it once
	req.Equal([]string{"PROFILE_PICTURE_UPDATED"}, ta.types())
	req.Equal([]string{"PROFILE_PICTURE_UPDATED"}, tb.types())
	req.Equal([]string{"PROFILE_PICTURE_UPDATED"}, tc.types())
	req.Empty(td.types())
}

func TestHub_Membership_Violation_Is_Silent(t *testing.T) {
	req := require.New(t)
	other := uuid.NewString()
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c"}}), true)
	ctx := context.Background()
	ta := &fakeTransport{}
	sa, _ := h.Connect(ctx, ta, "A")

	// When A posts to a chat it does not belong to
	raw := fmt.Sprintf(`{"type":"NEW_MESSAGE","payload":{"chatId":%q,"content":"hi"}}`, other)
	err := h.HandleFrame(ctx, sa, []byte(raw))

	// Then nothing is queued nor replied
	req.ErrorIs(err, errors.ErrMembershipViolation)
	req.Equal(0, h.queue.Len())
	req.Empty(ta.types())
}

func TestHub_Invalid_Frame_Replies_To_Sender_Only(t *testing.T) {
	req := require.New(t)
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c"}, "B": {"c"}}), true)
	ctx := context.Background()
	ta, tb := &fakeTransport{}, &fakeTransport{}
	sa, _ := h.Connect(ctx, ta, "A")
	_, _ = h.Connect(ctx, tb, "B")

	// When A sends garbage
	err := h.HandleFrame(ctx, sa, []byte(`{"type":"NEW_MESSAGE","payload":"oops"}`))

	// Then only A gets an ERROR frame
	req.ErrorIs(err, errors.ErrSerialization)
	req.Equal([]string{"ERROR"}, ta.types())
	req.Empty(tb.types())
}

func TestHub_Heartbeat_Evicts_Silent_Session(t *testing.T) {
	req := require.New(t)
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c"}, "B": {"c"}}), true)
	ctx := context.Background()
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	h.registry.now = func() time.Time { return start }
	ta, tb := &fakeTransport{}, &fakeTransport{}
	sa, _ := h.Connect(ctx, ta, "A")
	sb, _ := h.Connect(ctx, tb, "B")

	// Given B answered a probe 30 seconds later but A stayed silent
	h.registry.now = func() time.Time { return start.Add(30 * time.Second) }
	h.HandlePong(sb)

	// When the sweep runs 61 seconds after connection
	evicted := h.heartbeat.Sweep(ctx, start.Add(61*time.Second))

	// Then A is evicted with the liveness reason and removed everywhere
	req.Equal([]chat.SessionID{sa}, evicted)
	req.Equal(chat.CloseLivenessTimeout, *ta.closeReason())
	req.False(h.index.holds(sa))
	req.Equal(1, tb.pings)
	req.NoError(h.index.Verify())
}

func TestHub_Touch_Policy(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	later := start.Add(45 * time.Second)

	run := func(t *testing.T, touchOnAnyFrame bool) chat.Session {
		h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c"}}), touchOnAnyFrame)
		h.registry.now = func() time.Time { return start }
		sa, err := h.Connect(context.Background(), &fakeTransport{}, "A")
		require.NoError(t, err)

		// When any frame arrives later on
		h.registry.now = func() time.Time { return later }
		_ = h.HandleFrame(context.Background(), sa, []byte(`{}`))

		s, ok := h.registry.Session(sa)
		require.True(t, ok)
		return s
	}

	t.Run("any frame refreshes liveness", func(t *testing.T) {
		require.Equal(t, later, run(t, true).LastLiveness)
	})

	t.Run("only pongs refresh liveness", func(t *testing.T) {
		require.Equal(t, start, run(t, false).LastLiveness)
	})
}

func TestHub_Disconnect_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c1", "c2"}}), true)
	sa, _ := h.Connect(context.Background(), &fakeTransport{}, "A")

	// When the session is disconnected twice
	h.Disconnect(sa)
	once := h.index.Stats()
	h.Disconnect(sa)

	// Then the second call changes nothing
	req.Equal(once, h.index.Stats())
	req.False(h.index.holds(sa))
	req.Equal(0, h.SessionCount())

	// And a late pong does not resurrect it
	h.HandlePong(sa)
	_, ok := h.registry.Session(sa)
	req.False(ok)
}

func TestHub_Warms_Each_User_Once(t *testing.T) {
	req := require.New(t)
	membership := newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c"}})
	h := newTestHub(membership, true)
	ctx := context.Background()

	// When A opens, closes and reopens sessions
	s1, _ := h.Connect(ctx, &fakeTransport{}, "A")
	_, _ = h.Connect(ctx, &fakeTransport{}, "A")
	h.Disconnect(s1)
	_, _ = h.Connect(ctx, &fakeTransport{}, "A")

	// Then the membership source was asked once
	req.Equal(1, membership.queries["A"])

	// And an explicit invalidation queries it again
	membership.set("A", "c", "d")
	req.NoError(h.Invalidate(ctx, "A"))
	req.Equal(2, membership.queries["A"])
	req.True(h.index.IsMember("A", "d"))
	req.NoError(h.index.Verify())
}

func TestHub_Stop_Closes_Sessions_And_Refuses_Work(t *testing.T) {
	req := require.New(t)
	h := newTestHub(newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c"}}), true)
	ctx := context.Background()
	ta := &fakeTransport{}
	_, _ = h.Connect(ctx, ta, "A")

	done := make(chan struct{})
	go func() {
		_ = h.Start(ctx)
		close(done)
	}()

	// Given a running hub delivers published events
	req.NoError(h.Publish(ctx, event.MessageDeleted{ChatID: "c", MessageID: "m"}))
	req.Eventually(func() bool { return len(ta.types()) == 1 }, time.Second, 5*time.Millisecond)

	// When it stops
	h.Stop()

	// Then workers end, sessions are closed and new work is refused
	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("hub did not stop")
	}
	req.Equal(chat.CloseShutdown, *ta.closeReason())
	req.Equal(0, h.SessionCount())
	req.ErrorIs(h.Publish(ctx, event.MessageDeleted{ChatID: "c"}), errors.ErrHubStopped)
	_, err := h.Connect(ctx, &fakeTransport{}, "A")
	req.ErrorIs(err, errors.ErrHubStopped)
}

// gatedIdentity blocks ResolveIdentity until release is closed.
type gatedIdentity struct {
	entered chan struct{}
	release chan struct{}
}

func (g gatedIdentity) ResolveIdentity(ctx context.Context, credential string) (chat.UserID, error) {
	close(g.entered)
	<-g.release
	return userIdentity{}.ResolveIdentity(ctx, credential)
}

func TestHub_Connect_Racing_Stop_Leaves_No_Session(t *testing.T) {
	req := require.New(t)
	identity := gatedIdentity{entered: make(chan struct{}), release: make(chan struct{})}
	queue := NewEventQueue(4)
	h := NewHub(logs.GetLoggerFromLevel(slog.LevelDebug), HubConfig{DeliveryTimeout: time.Second}, queue, queue,
		identity, newFakeMembership(map[chat.UserID][]chat.ChatID{"A": {"c"}}), fakePersister{},
		observability.NewNopMetrics())
	tr := &fakeTransport{}

	// Given a connect blocked while resolving its credential
	type outcome struct {
		id  chat.SessionID
		err error
	}
	result := make(chan outcome, 1)
	go func() {
		id, err := h.Connect(context.Background(), tr, "A")
		result <- outcome{id, err}
	}()
	<-identity.entered

	// When the hub stops before the connect completes
	h.Stop()
	close(identity.release)

	// Then the late session is refused and its transport closed
	var got outcome
	select {
	case got = <-result:
	case <-time.After(time.Second):
		req.Fail("connect did not return")
	}
	req.ErrorIs(got.err, errors.ErrHubStopped)
	req.Empty(got.id)
	req.Equal(0, h.SessionCount())
	req.NotNil(tr.closeReason())
	req.Equal(chat.CloseShutdown, *tr.closeReason())
	req.NoError(h.index.Verify())
}

func TestHub_Index_Stays_Consistent_Under_Concurrency(t *testing.T) {
	req := require.New(t)
	users := []chat.UserID{"u0", "u1", "u2", "u3", "u4"}
	chats := []chat.ChatID{"c0", "c1", "c2"}
	membership := newFakeMembership(map[chat.UserID][]chat.ChatID{})
	for i, u := range users {
		membership.set(u, chats[i%len(chats)])
	}
	h := newTestHub(membership, true)
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			var mine []chat.SessionID
			for i := 0; i < 200; i++ {
				u := users[rnd.Intn(len(users))]
				c := chats[rnd.Intn(len(chats))]
				switch rnd.Intn(6) {
				case 0, 1:
					if id, err := h.Connect(ctx, &fakeTransport{}, string(u)); err == nil {
						mine = append(mine, id)
					}
				case 2:
					if len(mine) > 0 {
						h.Disconnect(mine[0])
						mine = mine[1:]
					}
				case 3:
					h.dispatcher.Dispatch(ctx, event.ParticipantsJoined{ChatID: c, UserIDs: []chat.UserID{u}})
				case 4:
					h.dispatcher.Dispatch(ctx, event.ParticipantLeft{ChatID: c, UserID: u})
				case 5:
					_ = h.Invalidate(ctx, u)
				}
				if err := h.index.Verify(); err != nil {
					t.Errorf("invariant broken: %v", err)
					return
				}
			}
		}(int64(g))
	}
	wg.Wait()
	req.NoError(h.index.Verify())
}
