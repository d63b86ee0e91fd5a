package websocket

import (
	"chirp-hub/domain/chat"
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

// SessionHub is the part of the hub a websocket connection talks to.
type SessionHub interface {
	Connect(ctx context.Context, transport chat.Transport, credential string) (chat.SessionID, error)
	Disconnect(sessionID chat.SessionID)
	HandleFrame(ctx context.Context, sessionID chat.SessionID, raw []byte) error
	HandlePong(sessionID chat.SessionID)
}

type Options struct {
	SendBuffer     int
	WriteTimeout   time.Duration
	MaxFrameSize   int64
	AllowedOrigins []string
}

// Handler upgrades HTTP requests and runs one read loop per connection.
type Handler struct {
	log      *slog.Logger
	hub      SessionHub
	opts     Options
	upgrader websocket.Upgrader
}

func NewHandler(log *slog.Logger, hub SessionHub, opts Options) *Handler {
	origins, allowAll := normalizeOrigins(opts.AllowedOrigins)
	return &Handler{
		log:  log,
		hub:  hub,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r, origins, allowAll)
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	credential := Credential(r)
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug("Websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	if h.opts.MaxFrameSize > 0 {
		ws.SetReadLimit(h.opts.MaxFrameSize)
	}

	conn := NewConn(h.log, ws, h.opts.SendBuffer, h.opts.WriteTimeout)
	go conn.writePump()

	ctx := r.Context()
	sessionID, err := h.hub.Connect(ctx, conn, credential)
	if err != nil {
		// The hub already closed the transport with the matching reason.
		conn.release()
		return
	}
	defer func() {
		h.hub.Disconnect(sessionID)
		conn.release()
	}()

	ws.SetPongHandler(func(string) error {
		h.hub.HandlePong(sessionID)
		return nil
	})

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			if !isExpectedCloseError(err) {
				h.log.Debug("Read loop ended", "session_id", sessionID, "error", err)
			}
			return
		}
		_ = h.hub.HandleFrame(ctx, sessionID, raw)
	}
}

// Credential reads the Authorization header, with or without the Bearer
// prefix, and falls back to the access_token query parameter.
func Credential(r *http.Request) string {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return header
	}
	return r.URL.Query().Get("access_token")
}

func normalizeOrigins(origins []string) ([]string, bool) {
	if len(origins) == 0 {
		return nil, true
	}
	normalized := make([]string, 0, len(origins))
	allowAll := false
	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch {
		case trimmed == "":
			continue
		case trimmed == "*":
			allowAll = true
		default:
			if n, ok := normalizeOrigin(trimmed); ok {
				normalized = append(normalized, n)
			}
		}
	}
	return normalized, allowAll
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host), true
}

// originAllowed accepts non-browser clients, which send no Origin header.
func originAllowed(r *http.Request, origins []string, allowAll bool) bool {
	header := r.Header.Get("Origin")
	if header == "" || allowAll {
		return true
	}
	n, ok := normalizeOrigin(header)
	if !ok {
		return false
	}
	return lo.Contains(origins, n)
}
