package api

import (
	"chirp-hub/auth"
	"chirp-hub/domain/chat"
	"chirp-hub/errors"
	"chirp-hub/services"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Handler struct {
	log      *slog.Logger
	chats    services.IChatService
	hub      SessionCounter
	validate *validator.Validate
}

func NewHandler(log *slog.Logger, chats services.IChatService, hub SessionCounter) *Handler {
	return &Handler{log: log, chats: chats, hub: hub, validate: validator.New()}
}

type CreateChatRequest struct {
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1,max=99,dive,required"`
}

type AddParticipantsRequest struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,max=99,dive,required"`
}

type ProfilePictureRequest struct {
	URL *string `json:"url" validate:"omitempty,url"`
}

type ParticipantResponse struct {
	UserID            chat.UserID `json:"userId"`
	ProfilePictureURL *string     `json:"profilePictureUrl"`
}

type ChatResponse struct {
	ID             chat.ChatID            `json:"id"`
	CreatorID      chat.UserID            `json:"creatorId"`
	Participants   []ParticipantResponse  `json:"participants"`
	LastActivityAt time.Time              `json:"lastActivityAt"`
	LastMessage    *chat.PersistedMessage `json:"lastMessage,omitempty"`
}

type AddParticipantsResponse struct {
	Added []chat.UserID `json:"added"`
}

type MessagesResponse struct {
	Messages   []chat.PersistedMessage `json:"messages"`
	NextCursor *string                 `json:"nextCursor"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	h.JSON(w, http.StatusOK, HealthResponse{Status: "ok", Sessions: h.hub.SessionCount()})
}

func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req CreateChatRequest
	if !h.decode(w, r, &req) {
		return
	}

	c, err := h.chats.CreateChat(r.Context(), userID, toUserIDs(req.ParticipantIDs))
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusCreated, toChatResponse(c))
}

func (h *Handler) GetChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	chats, err := h.chats.GetChats(r.Context(), userID)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, lo.Map(chats, func(c chat.Chat, _ int) ChatResponse { return toChatResponse(c) }))
}

func (h *Handler) AddParticipants(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req AddParticipantsRequest
	if !h.decode(w, r, &req) {
		return
	}

	chatID := chat.ChatID(chi.URLParam(r, "chatID"))
	added, err := h.chats.AddParticipants(r.Context(), chatID, userID, toUserIDs(req.UserIDs))
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, AddParticipantsResponse{Added: lo.Ternary(added == nil, []chat.UserID{}, added)})
}

func (h *Handler) LeaveChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.chats.LeaveChat(r.Context(), chat.ChatID(chi.URLParam(r, "chatID")), userID); err != nil {
		h.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	limit := defaultPageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxPageSize)
	}
	var cursor *string
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		cursor = &raw
	}

	messages, next, err := h.chats.GetMessages(r.Context(), chat.ChatID(chi.URLParam(r, "chatID")), userID, cursor, limit)
	if err != nil {
		h.Fail(w, err)
		return
	}
	h.JSON(w, http.StatusOK, MessagesResponse{
		Messages:   lo.Ternary(messages == nil, []chat.PersistedMessage{}, messages),
		NextCursor: next,
	})
}

func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.chats.DeleteMessage(r.Context(), chat.MessageID(chi.URLParam(r, "messageID")), userID); err != nil {
		h.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateProfilePicture(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req ProfilePictureRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.chats.UpdateProfilePicture(r.Context(), userID, req.URL); err != nil {
		h.Fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Debug("Unable to write response", "error", err)
	}
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// Fail maps a service error to its HTTP status.
func (h *Handler) Fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "error", err)
		h.Error(w, status, "internal error")
		return
	}
	h.Error(w, status, err.Error())
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		h.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errors.ErrChatNotFound), errors.Is(err, errors.ErrMessageNotFound),
		errors.Is(err, errors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrInvalidChatSize):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrChatAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func toUserIDs(ids []string) []chat.UserID {
	return lo.Map(ids, func(id string, _ int) chat.UserID { return chat.UserID(id) })
}

func toChatResponse(c chat.Chat) ChatResponse {
	return ChatResponse{
		ID:        c.ID,
		CreatorID: c.CreatorID,
		Participants: lo.Map(c.Participants, func(p chat.Participant, _ int) ParticipantResponse {
			return ParticipantResponse{UserID: p.UserID, ProfilePictureURL: p.ProfilePictureURL}
		}),
		LastActivityAt: c.LastActivityAt,
		LastMessage:    c.LastMessage,
	}
}
