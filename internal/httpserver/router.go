package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"gameforum/internal/blob"
	"gameforum/internal/config"
	"gameforum/internal/domain"
	"gameforum/internal/security"
	"gameforum/internal/service"
	"gameforum/internal/store"
	"gameforum/internal/ws"
)

// NewRouter constructs the main HTTP router and wires stores, services, and
// middleware over the given blob store.
func NewRouter(cfg *config.Config, blobs blob.Store, hub *ws.Hub, tokens *security.TokenService, hasher *security.PasswordHasher) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Stores
	userStore := store.NewUserStore(blobs)
	convStore := store.NewConversationStore(blobs, userStore)
	topicStore := store.NewTopicStore(blobs)

	// Services
	authSvc := service.NewAuthService(userStore, tokens, hasher)
	socialSvc := service.NewSocialService(userStore, hub)
	msgSvc := service.NewMessagingService(convStore, hub)
	forumSvc := service.NewForumService(topicStore, userStore)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handleRegister(authSvc))
			r.Post("/login", handleLogin(authSvc))
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokens, userStore))

			r.Post("/auth/logout", handleLogout(authSvc))
			r.Get("/auth/me", handleMe())

			r.Route("/users", func(r chi.Router) {
				r.Get("/", handleListUsers(userStore))
				r.Get("/{userID}", handleGetUser(userStore))
				r.Get("/{userID}/topics", handleUserTopics(forumSvc))
				r.Get("/{userID}/replies", handleUserReplies(forumSvc))
				r.Post("/{userID}/block", handleBlock(socialSvc))
				r.Post("/{userID}/unblock", handleUnblock(socialSvc))

				// admin-only account management
				r.Patch("/{userID}/role", handleUpdateRole(userStore))
				r.Post("/{userID}/suspend", handleSuspend(userStore))
				r.Post("/{userID}/reactivate", handleReactivate(userStore))
				r.Delete("/{userID}", handleDeleteAccount(userStore))
			})

			r.Route("/friends", func(r chi.Router) {
				r.Get("/", handleListFriends(socialSvc))
				r.Delete("/{userID}", handleRemoveFriend(socialSvc))
				r.Get("/requests/incoming", handleIncomingRequests(socialSvc))
				r.Get("/requests/outgoing", handleOutgoingRequests(socialSvc))
				r.Post("/requests", handleSendFriendRequest(socialSvc))
				r.Post("/requests/{userID}/accept", handleAcceptFriendRequest(socialSvc))
				r.Post("/requests/{userID}/decline", handleDeclineFriendRequest(socialSvc))
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", handleOpenConversation(msgSvc))
				r.Get("/", handleListConversations(msgSvc))
				r.Get("/unread-count", handleUnreadMessages(msgSvc))
				r.Get("/{conversationID}", handleGetConversation(msgSvc))
				r.Delete("/{conversationID}", handleDeleteConversation(msgSvc))
				r.Post("/{conversationID}/read", handleMarkConversationRead(msgSvc))
				r.Post("/{conversationID}/messages", handleSendMessage(msgSvc))
				r.Patch("/{conversationID}/messages/{messageID}", handleEditMessage(msgSvc))
				r.Delete("/{conversationID}/messages/{messageID}", handleDeleteMessage(msgSvc))
			})

			r.Route("/forums/{game}/{platform}/topics", func(r chi.Router) {
				r.Get("/", handleListTopics(forumSvc))
				r.Post("/", handleCreateTopic(forumSvc))
				r.Get("/{topicID}", handleGetTopic(forumSvc))
				r.Patch("/{topicID}", handleEditTopic(forumSvc))
				r.Delete("/{topicID}", handleDeleteTopic(forumSvc))
				r.Post("/{topicID}/status", handleTopicStatus(forumSvc))
				r.Post("/{topicID}/read", handleMarkTopicRead(forumSvc))
				r.Get("/{topicID}/unread-count", handleTopicUnread(forumSvc))
				r.Post("/{topicID}/replies", handleCreateReply(forumSvc))
				r.Patch("/{topicID}/replies/{replyID}", handleEditReply(forumSvc))
				r.Delete("/{topicID}/replies/{replyID}", handleDeleteReply(forumSvc))
				r.Post("/{topicID}/replies/{replyID}/status", handleReplyStatus(forumSvc))
			})
		})
	})

	r.Get("/ws", ws.MakeHandler(hub, tokens, userStore))

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the domain sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidState):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
