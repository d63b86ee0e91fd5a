// Package api exposes the HTTP surface of the hub: the websocket endpoint,
// the REST operations of the chat service, health and metrics.
package api

import (
	"chirp-hub/auth"
	"chirp-hub/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionCounter reports the live sessions for the health endpoint.
type SessionCounter interface {
	SessionCount() int
}

// NewRouter creates and configures the HTTP router.
func NewRouter(log *slog.Logger, chats services.IChatService, resolver *auth.Resolver,
	ws http.Handler, gatherer prometheus.Gatherer, hub SessionCounter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimw.Recoverer)

	h := NewHandler(log, chats, hub)

	// Public routes
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Handle("/ws", ws)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(log, resolver))

		r.Post("/chats", h.CreateChat)
		r.Get("/chats", h.GetChats)
		r.Post("/chats/{chatID}/participants", h.AddParticipants)
		r.Delete("/chats/{chatID}/participants", h.LeaveChat)
		r.Get("/chats/{chatID}/messages", h.GetMessages)
		r.Delete("/messages/{messageID}", h.DeleteMessage)
		r.Put("/profile-picture", h.UpdateProfilePicture)
	})

	return r
}

// requestLogger logs every request once completed.
func requestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Debug("Request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"latency", time.Since(start),
					"request_id", chimw.GetReqID(r.Context()))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
