package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gameforum/internal/service"
)

type openConversationRequest struct {
	UserID string `json:"userId"`
}

func handleOpenConversation(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req openConversationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		conv, err := msgSvc.OpenConversation(r.Context(), CurrentUser(r).ID, req.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

func handleListConversations(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convs, err := msgSvc.ListConversations(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

func handleGetConversation(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, err := msgSvc.GetConversation(r.Context(), chi.URLParam(r, "conversationID"), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

func handleDeleteConversation(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := msgSvc.DeleteConversation(r.Context(), chi.URLParam(r, "conversationID"), CurrentUser(r).ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleMarkConversationRead(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := msgSvc.MarkRead(r.Context(), chi.URLParam(r, "conversationID"), CurrentUser(r).ID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleUnreadMessages(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := msgSvc.CountUnread(r.Context(), CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

type messageRequest struct {
	Content string `json:"content"`
}

func handleSendMessage(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		msg, err := msgSvc.SendMessage(r.Context(), chi.URLParam(r, "conversationID"), CurrentUser(r).ID, req.Content)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

func handleEditMessage(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		err := msgSvc.EditMessage(r.Context(),
			chi.URLParam(r, "conversationID"),
			chi.URLParam(r, "messageID"),
			CurrentUser(r).ID,
			req.Content,
		)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleDeleteMessage(msgSvc *service.MessagingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := msgSvc.DeleteMessage(r.Context(),
			chi.URLParam(r, "conversationID"),
			chi.URLParam(r, "messageID"),
			CurrentUser(r).ID,
		)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
