package workers

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"chirp-hub/mocks"
	"chirp-hub/observability"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestHeartbeatMonitor_Sweep(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	pongTimeout := 60 * time.Second

	t.Run("evicts a session silent for longer than the pong timeout", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockISessionRegistry(ctrl)
		stale := mocks.NewMockTransport(ctrl)
		w := NewHeartbeatMonitor(slog.Default(), sessions, 30*time.Second, pongTimeout)

		// Given a session last seen 61 seconds ago
		sessions.EXPECT().Snapshot().Return([]chat.Session{{
			ID: "s1", UserID: "u1", Transport: stale, LastLiveness: now.Add(-61 * time.Second),
		}})

		// Then it is evicted with the liveness reason and never probed
		sessions.EXPECT().Evict(chat.SessionID("s1"), chat.CloseLivenessTimeout, observability.EvictLiveness).Return(true)

		// When the sweep runs
		evicted := w.Sweep(context.Background(), now)

		req.Equal([]chat.SessionID{"s1"}, evicted)
	})

	t.Run("probes a live session", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockISessionRegistry(ctrl)
		alive := mocks.NewMockTransport(ctrl)
		w := NewHeartbeatMonitor(slog.Default(), sessions, 30*time.Second, pongTimeout)

		sessions.EXPECT().Snapshot().Return([]chat.Session{{
			ID: "s1", UserID: "u1", Transport: alive, LastLiveness: now.Add(-59 * time.Second),
		}})
		alive.EXPECT().Ping(gomock.Any()).Return(nil)

		req.Empty(w.Sweep(context.Background(), now))
	})

	t.Run("treats a failed probe as a timeout", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockISessionRegistry(ctrl)
		broken := mocks.NewMockTransport(ctrl)
		w := NewHeartbeatMonitor(slog.Default(), sessions, 30*time.Second, pongTimeout)

		sessions.EXPECT().Snapshot().Return([]chat.Session{{
			ID: "s1", UserID: "u1", Transport: broken, LastLiveness: now,
		}})
		broken.EXPECT().Ping(gomock.Any()).Return(errors.ErrTransportClosed)
		sessions.EXPECT().Evict(chat.SessionID("s1"), chat.CloseLivenessTimeout, observability.EvictLiveness).Return(true)

		req.Equal([]chat.SessionID{"s1"}, w.Sweep(context.Background(), now))
	})

	t.Run("ignores a session disconnected during the sweep", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		sessions := mocks.NewMockISessionRegistry(ctrl)
		gone := mocks.NewMockTransport(ctrl)
		w := NewHeartbeatMonitor(slog.Default(), sessions, 30*time.Second, pongTimeout)

		sessions.EXPECT().Snapshot().Return([]chat.Session{{
			ID: "s1", UserID: "u1", Transport: gone, LastLiveness: now.Add(-time.Hour),
		}})
		sessions.EXPECT().Evict(gomock.Any(), gomock.Any(), gomock.Any()).Return(false)

		req.Empty(w.Sweep(context.Background(), now))
	})
}
