package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/circles/backend/internal/apperr"
	"github.com/circles/backend/internal/middleware"
)

// FriendHandler provides friend request endpoints. Every route requires an
// authenticated caller.
type FriendHandler struct {
	Friends FriendService
}

type sendRequest struct {
	ToUserID string `json:"toUserId"`
}

type respondRequest struct {
	RequestID string `json:"requestId"`
}

// Send handles POST /api/v1/friends/requests.
func (h FriendHandler) Send(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		respondFailure(ctx, w, apperr.KindAuthentication, "authentication required")
		return
	}

	var req sendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFailure(ctx, w, apperr.KindValidation, "invalid request body")
		return
	}
	req.ToUserID = strings.TrimSpace(req.ToUserID)
	if req.ToUserID == "" {
		respondFailure(ctx, w, apperr.KindValidation, "toUserId is required")
		return
	}

	if _, err := h.Friends.Send(ctx, userID, req.ToUserID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: "friend request sent"})
}

// Accept handles POST /api/v1/friends/requests/accept.
func (h FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Friends.Accept, "friend request accepted")
}

// Reject handles POST /api/v1/friends/requests/reject.
func (h FriendHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, h.Friends.Reject, "friend request rejected")
}

func (h FriendHandler) respond(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, toUser, requestID string) error, message string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		respondFailure(ctx, w, apperr.KindAuthentication, "authentication required")
		return
	}

	var req respondRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondFailure(ctx, w, apperr.KindValidation, "invalid request body")
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)
	if req.RequestID == "" {
		respondFailure(ctx, w, apperr.KindValidation, "requestId is required")
		return
	}

	if err := action(ctx, userID, req.RequestID); err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, messageResponse{Message: message})
}

// List handles GET /api/v1/friends.
func (h FriendHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		respondFailure(ctx, w, apperr.KindAuthentication, "authentication required")
		return
	}

	friends, err := h.Friends.ListFriends(ctx, userID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string][]string{"friends": friends})
}

// Pending handles GET /api/v1/friends/pending.
func (h FriendHandler) Pending(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	userID, ok := middleware.UserIDFromContext(ctx)
	if !ok {
		respondFailure(ctx, w, apperr.KindAuthentication, "authentication required")
		return
	}

	pending, err := h.Friends.ListPending(ctx, userID)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string][]string{"pending": pending})
}
