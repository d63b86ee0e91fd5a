package errors

import (
	stderrors "errors"
	"fmt"
)

var (
	ErrWorkerPanic = fmt.Errorf("worker panic")

	ErrAuthenticationFailed = fmt.Errorf("authentication failed")
	ErrInvalidToken         = fmt.Errorf("invalid or expired token")
	ErrMembershipViolation  = fmt.Errorf("user is not a member of the chat")
	ErrTransportClosed      = fmt.Errorf("transport closed")
	ErrSlowConsumer         = fmt.Errorf("transport send queue full")
	ErrSerialization        = fmt.Errorf("incoming JSON or UUID is invalid")
	ErrLivenessTimeout      = fmt.Errorf("liveness timeout")
	ErrSessionNotFound      = fmt.Errorf("session not found")
	ErrUnknownEvent         = fmt.Errorf("unknown domain event")
	ErrUnknownCommand       = fmt.Errorf("unknown command type")
	ErrHubStopped           = fmt.Errorf("hub stopped")

	ErrChatNotFound      = fmt.Errorf("chat not found")
	ErrChatAlreadyExists = fmt.Errorf("chat already exists")
	ErrMessageNotFound   = fmt.Errorf("message not found")
	ErrUserNotFound      = fmt.Errorf("user not found")
	ErrPermissionDenied  = fmt.Errorf("permission denied")
	ErrInvalidChatSize   = fmt.Errorf("a chat must have between 2 and 100 participants")
	ErrInvalidConfig     = fmt.Errorf("invalid configuration")
)

// Error codes carried by the ERROR frame sent back to a single session.
const (
	CodeInvalidJSON  = "INVALID_JSON"
	CodeChatNotFound = "CHAT_NOT_FOUND"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL"
)

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// ErrorCode maps an error to the code sent to the client in an ERROR frame.
func ErrorCode(err error) string {
	switch {
	case Is(err, ErrSerialization):
		return CodeInvalidJSON
	case Is(err, ErrChatNotFound), Is(err, ErrMessageNotFound):
		return CodeChatNotFound
	case Is(err, ErrPermissionDenied), Is(err, ErrMembershipViolation):
		return CodeForbidden
	default:
		return CodeInternal
	}
}
