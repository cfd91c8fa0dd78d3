package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gameforum/internal/service"
	"gameforum/internal/store"
)

func forumPath(r *http.Request) (game, platform string) {
	return chi.URLParam(r, "game"), chi.URLParam(r, "platform")
}

func handleListTopics(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, platform := forumPath(r)
		topics, err := forumSvc.ListTopics(r.Context(), game, platform, CurrentUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, topics)
	}
}

type topicRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func handleCreateTopic(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req topicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		game, platform := forumPath(r)
		topic, err := forumSvc.CreateTopic(r.Context(), game, platform, store.TopicInput{
			Title:   req.Title,
			Content: req.Content,
		}, CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, topic)
	}
}

func handleGetTopic(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, platform := forumPath(r)
		topic, err := forumSvc.GetTopic(r.Context(), game, platform, chi.URLParam(r, "topicID"), CurrentUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, topic)
	}
}

type topicEditRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func handleEditTopic(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req topicEditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		game, platform := forumPath(r)
		err := forumSvc.EditTopic(r.Context(), game, platform, chi.URLParam(r, "topicID"), store.TopicUpdate{
			Title:   req.Title,
			Content: req.Content,
		}, CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleDeleteTopic(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, platform := forumPath(r)
		if err := forumSvc.DeleteTopic(r.Context(), game, platform, chi.URLParam(r, "topicID"), CurrentUser(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

type statusRequest struct {
	Status string `json:"status"`
}

func handleTopicStatus(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		game, platform := forumPath(r)
		err := forumSvc.SetTopicVisibility(r.Context(), game, platform, chi.URLParam(r, "topicID"), req.Status, CurrentUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleMarkTopicRead(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := forumSvc.MarkTopicRead(r.Context(), CurrentUser(r).ID, chi.URLParam(r, "topicID")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleTopicUnread(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, platform := forumPath(r)
		count, err := forumSvc.UnreadReplies(r.Context(), game, platform, chi.URLParam(r, "topicID"), CurrentUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"count": count})
	}
}

type replyRequest struct {
	Content string `json:"content"`
}

func handleCreateReply(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		game, platform := forumPath(r)
		reply, err := forumSvc.Reply(r.Context(), game, platform, chi.URLParam(r, "topicID"), req.Content, CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reply)
	}
}

func handleEditReply(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req replyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		game, platform := forumPath(r)
		err := forumSvc.EditReply(r.Context(), game, platform,
			chi.URLParam(r, "topicID"), chi.URLParam(r, "replyID"),
			req.Content, CurrentUser(r).ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleDeleteReply(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game, platform := forumPath(r)
		err := forumSvc.DeleteReply(r.Context(), game, platform,
			chi.URLParam(r, "topicID"), chi.URLParam(r, "replyID"), CurrentUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}

func handleReplyStatus(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req statusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		game, platform := forumPath(r)
		err := forumSvc.SetReplyVisibility(r.Context(), game, platform,
			chi.URLParam(r, "topicID"), chi.URLParam(r, "replyID"),
			req.Status, CurrentUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleUserTopics(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := forumSvc.UserTopics(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, topics)
	}
}

func handleUserReplies(forumSvc *service.ForumService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		replies, err := forumSvc.UserReplies(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, replies)
	}
}
