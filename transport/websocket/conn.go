// Package websocket adapts gorilla websocket connections to the hub Transport.
package websocket

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"context"
	stderrors "errors"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is a Transport over one websocket connection.
// Frames are queued and written by a single write pump; pings and close
// frames go through WriteControl, which gorilla allows concurrently.
type Conn struct {
	ws           *websocket.Conn
	log          *slog.Logger
	send         chan []byte
	done         chan struct{}
	once         sync.Once
	writeTimeout time.Duration
}

func NewConn(log *slog.Logger, ws *websocket.Conn, sendBuffer int, writeTimeout time.Duration) *Conn {
	return &Conn{
		ws:           ws,
		log:          log,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

// Send queues a frame without blocking. A full queue means the client reads
// slower than the hub writes and is reported as errors.ErrSlowConsumer.
func (c *Conn) Send(_ context.Context, frame []byte) error {
	select {
	case <-c.done:
		return errors.ErrTransportClosed
	default:
	}
	select {
	case c.send <- frame:
		return nil
	case <-c.done:
		return errors.ErrTransportClosed
	default:
		return errors.ErrSlowConsumer
	}
}

func (c *Conn) Ping(ctx context.Context) error {
	select {
	case <-c.done:
		return errors.ErrTransportClosed
	default:
	}
	if err := c.ws.WriteControl(websocket.PingMessage, nil, c.deadline(ctx)); err != nil {
		if isExpectedCloseError(err) {
			return errors.ErrTransportClosed
		}
		return err
	}
	return nil
}

// Close sends a close frame with the reason and releases the connection.
// Only the first call has an effect.
func (c *Conn) Close(reason chat.CloseReason) error {
	closed := false
	c.once.Do(func() {
		closed = true
		close(c.done)
		msg := websocket.FormatCloseMessage(reason.Code, reason.Text)
		if err := c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout)); err != nil &&
			!isExpectedCloseError(err) {
			c.log.Debug("Unable to write close frame", "error", err)
		}
		if err := c.ws.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Debug("Unable to close connection", "error", err)
		}
	})
	if !closed {
		return errors.ErrTransportClosed
	}
	return nil
}

// release tears the connection down without a close frame, once the peer is gone.
func (c *Conn) release() {
	c.once.Do(func() {
		close(c.done)
		if err := c.ws.Close(); err != nil && !isExpectedCloseError(err) {
			c.log.Debug("Unable to close connection", "error", err)
		}
	})
}

// writePump is the only goroutine writing data frames.
func (c *Conn) writePump() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.send:
			if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				c.release()
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				if !isExpectedCloseError(err) {
					c.log.Warn("Write failed, closing connection", "error", err)
					_ = c.Close(chat.CloseTransportError)
				}
				c.release()
				return
			}
		}
	}
}

func (c *Conn) deadline(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Now().Add(c.writeTimeout)
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	return stderrors.Is(err, websocket.ErrCloseSent) ||
		stderrors.Is(err, net.ErrClosed) ||
		websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
