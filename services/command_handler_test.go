package services

import (
	"chirp-hub/domain/chat"
	"chirp-hub/domain/event"
	"chirp-hub/errors"
	"chirp-hub/mocks"
	"chirp-hub/observability"
	"chirp-hub/protocol"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type handlerFixture struct {
	sessions  *mocks.MockISessionRegistry
	routes    *mocks.MockIRoutingTable
	persister *mocks.MockMessagePersister
	publisher *mocks.MockEventPublisher
	transport *mocks.MockTransport
	metrics   *observability.Metrics
	handler   *CommandHandler
	session   chat.Session
}

func newHandlerFixture(t *testing.T) handlerFixture {
	ctrl := gomock.NewController(t)
	f := handlerFixture{
		sessions:  mocks.NewMockISessionRegistry(ctrl),
		routes:    mocks.NewMockIRoutingTable(ctrl),
		persister: mocks.NewMockMessagePersister(ctrl),
		publisher: mocks.NewMockEventPublisher(ctrl),
		transport: mocks.NewMockTransport(ctrl),
		metrics:   observability.NewNopMetrics(),
	}
	f.session = chat.Session{ID: "s1", UserID: "u1", Transport: f.transport, LastLiveness: time.Now()}
	f.handler = NewCommandHandler(logs.GetLoggerFromLevel(slog.LevelDebug), f.sessions, f.routes,
		f.persister, f.publisher, protocol.NewDecoder(100), f.metrics, time.Second)
	return f
}

func TestCommandHandler_HandleSend(t *testing.T) {
	ctx := context.Background()
	chatID := chat.ChatID(uuid.NewString())

	t.Run("persists then publishes the message", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(t)
		persisted := chat.PersistedMessage{ID: "m1", ChatID: chatID, SenderID: "u1", Content: "hi", CreatedAt: time.Now()}

		// Given u1 is a member of the chat
		f.sessions.EXPECT().Session(chat.SessionID("s1")).Return(f.session, true)
		f.routes.EXPECT().IsMember(chat.UserID("u1"), chatID).Return(true)
		gomock.InOrder(
			f.persister.EXPECT().SendMessage(gomock.Any(), chatID, chat.UserID("u1"), "hi", nil).Return(persisted, nil),
			f.publisher.EXPECT().Publish(gomock.Any(), event.NewMessage{Message: persisted}).Return(nil),
		)

		// When the message is sent
		err := f.handler.HandleSend(ctx, "s1", chat.SendMessageCommand{ChatID: chatID, Content: "hi"})

		// Then no error is reported
		req.NoError(err)
	})

	t.Run("discards a message to a foreign chat", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(t)

		// Given u1 is not a member of the chat
		f.sessions.EXPECT().Session(chat.SessionID("s1")).Return(f.session, true)
		f.routes.EXPECT().IsMember(chat.UserID("u1"), chatID).Return(false)

		// When the message is sent
		err := f.handler.HandleSend(ctx, "s1", chat.SendMessageCommand{ChatID: chatID, Content: "hi"})

		// Then nothing is persisted, published or replied
		req.ErrorIs(err, errors.ErrMembershipViolation)
		req.Equal(float64(1), testutil.ToFloat64(f.metrics.MembershipViolations))
	})

	t.Run("replies to the sender only when persistence refuses", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(t)

		f.sessions.EXPECT().Session(chat.SessionID("s1")).Return(f.session, true)
		f.routes.EXPECT().IsMember(chat.UserID("u1"), chatID).Return(true)
		f.persister.EXPECT().SendMessage(gomock.Any(), chatID, chat.UserID("u1"), "hi", nil).
			Return(chat.PersistedMessage{}, errors.ErrChatNotFound)

		// Then the sender receives a CHAT_NOT_FOUND error frame
		var reply []byte
		f.transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, frame []byte) error {
				reply = frame
				return nil
			})

		err := f.handler.HandleSend(ctx, "s1", chat.SendMessageCommand{ChatID: chatID, Content: "hi"})

		req.ErrorIs(err, errors.ErrChatNotFound)
		req.Contains(string(reply), `\"code\":\"CHAT_NOT_FOUND\"`)
	})

	t.Run("ignores unknown sessions", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(t)

		f.sessions.EXPECT().Session(chat.SessionID("gone")).Return(chat.Session{}, false)

		err := f.handler.HandleSend(ctx, "gone", chat.SendMessageCommand{ChatID: chatID, Content: "hi"})

		req.ErrorIs(err, errors.ErrSessionNotFound)
	})
}

func TestCommandHandler_HandleFrame(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid frame gets INVALID_JSON", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(t)

		f.sessions.EXPECT().Session(chat.SessionID("s1")).Return(f.session, true)
		var reply []byte
		f.transport.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, frame []byte) error {
				reply = frame
				return nil
			})

		err := f.handler.HandleFrame(ctx, "s1", []byte(`{"type":"NEW_MESSAGE","payload":{"chatId":"bad"}}`))

		req.ErrorIs(err, errors.ErrSerialization)
		var env protocol.OutgoingEnvelope
		req.NoError(json.Unmarshal(reply, &env))
		req.Equal(protocol.TypeError, env.Type)
		req.JSONEq(`{"message":"Incoming JSON or UUID is invalid","code":"INVALID_JSON"}`, env.Payload)
	})

	t.Run("valid frame is sent", func(t *testing.T) {
		req := require.New(t)
		f := newHandlerFixture(t)
		chatID := chat.ChatID(uuid.NewString())
		clientID := chat.MessageID(uuid.NewString())
		persisted := chat.PersistedMessage{ID: clientID, ChatID: chatID, SenderID: "u1", Content: "hi"}

		f.sessions.EXPECT().Session(chat.SessionID("s1")).Return(f.session, true)
		f.routes.EXPECT().IsMember(chat.UserID("u1"), chatID).Return(true)
		f.persister.EXPECT().SendMessage(gomock.Any(), chatID, chat.UserID("u1"), "hi", &clientID).Return(persisted, nil)
		f.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		raw := `{"type":"NEW_MESSAGE","payload":{"chatId":"` + chatID.String() + `","content":"hi","messageId":"` + clientID.String() + `"}}`
		req.NoError(f.handler.HandleFrame(ctx, "s1", []byte(raw)))
	})
}
