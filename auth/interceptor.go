package auth

import (
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"context"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// Middleware handles JWT validation for incoming REST calls and injects
// the user id into the request context.
func Middleware(log *slog.Logger, resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "authorization token is missing", http.StatusUnauthorized)
				return
			}

			userID, err := resolver.ResolveIdentity(r.Context(), header)
			if err != nil {
				log.Debug("Rejected REST call", "path", r.URL.Path, "error", err)
				http.Error(w, errors.ErrInvalidToken.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, userID chat.UserID) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext returns the user injected by Middleware.
func UserIDFromContext(ctx context.Context) (chat.UserID, bool) {
	userID, ok := ctx.Value(UserIDKey).(chat.UserID)
	return userID, ok && userID != ""
}
