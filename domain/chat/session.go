//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../../mocks/mock_transport.go -package=mocks
package chat

import (
	"context"
	"time"
)

// Transport is an opaque full-duplex channel to one client.
// Implementations must make Send, Ping and Close safe to call concurrently,
// and Send or Ping after Close must return an error instead of panicking.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
	Ping(ctx context.Context) error
	Close(reason CloseReason) error
}

// CloseReason is sent to the peer when the hub closes a transport.
type CloseReason struct {
	Code int
	Text string
}

var (
	CloseAuthenticationFailed = CloseReason{Code: 1008, Text: "Authentication failed"}
	CloseLivenessTimeout      = CloseReason{Code: 1001, Text: "Ping timeout"}
	CloseTransportError       = CloseReason{Code: 1011, Text: "Transport error occurred"}
	CloseShutdown             = CloseReason{Code: 1001, Text: "Server shutting down"}
	CloseInternalError        = CloseReason{Code: 1011, Text: "Internal error"}
)

// Session is one live, authenticated connection of a user.
// Values handed out by the registry are copies: mutating them has no effect.
type Session struct {
	ID           SessionID
	UserID       UserID
	Transport    Transport
	LastLiveness time.Time
}
