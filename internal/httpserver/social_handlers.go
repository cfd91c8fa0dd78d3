package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gameforum/internal/service"
)

func handleListFriends(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friends, err := socialSvc.FriendsOf(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sanitizeAll(friends))
	}
}

func handleIncomingRequests(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := socialSvc.IncomingRequests(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sanitizeAll(users))
	}
}

func handleOutgoingRequests(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := socialSvc.OutgoingRequests(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sanitizeAll(users))
	}
}

type friendRequestRequest struct {
	TargetID string `json:"targetId"`
}

func handleSendFriendRequest(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req friendRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if err := socialSvc.SendFriendRequest(r.Context(), CurrentUser(r).ID, req.TargetID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"status": "request sent"})
	}
}

func handleAcceptFriendRequest(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fromID := chi.URLParam(r, "userID")
		if err := socialSvc.AcceptFriendRequest(r.Context(), CurrentUser(r).ID, fromID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
	}
}

func handleDeclineFriendRequest(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fromID := chi.URLParam(r, "userID")
		if err := socialSvc.DeclineFriendRequest(r.Context(), CurrentUser(r).ID, fromID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "declined"})
	}
}

func handleRemoveFriend(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		friendID := chi.URLParam(r, "userID")
		if err := socialSvc.RemoveFriend(r.Context(), CurrentUser(r).ID, friendID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "removed"})
	}
}

func handleBlock(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID := chi.URLParam(r, "userID")
		if err := socialSvc.BlockUser(r.Context(), CurrentUser(r).ID, targetID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "blocked"})
	}
}

func handleUnblock(socialSvc *service.SocialService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		targetID := chi.URLParam(r, "userID")
		if err := socialSvc.UnblockUser(r.Context(), CurrentUser(r).ID, targetID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "unblocked"})
	}
}
