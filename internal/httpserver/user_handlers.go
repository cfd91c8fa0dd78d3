package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gameforum/internal/domain"
	"gameforum/internal/store"
)

// sanitize strips the password hash before a record leaves the API.
func sanitize(u domain.User) domain.User {
	u.PasswordHash = ""
	return u
}

func sanitizeAll(users []domain.User) []domain.User {
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, sanitize(u))
	}
	return out
}

func handleListUsers(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := users.Load(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sanitizeAll(all))
	}
}

func handleGetUser(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.GetByID(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if u == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
			return
		}
		writeJSON(w, http.StatusOK, sanitize(*u))
	}
}

type roleRequest struct {
	Role string `json:"role"`
}

func handleUpdateRole(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireAdmin(r) == nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
			return
		}
		var req roleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if err := users.UpdateRole(r.Context(), chi.URLParam(r, "userID"), req.Role); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleSuspend(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireAdmin(r) == nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
			return
		}
		if err := users.Suspend(r.Context(), chi.URLParam(r, "userID")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleReactivate(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireAdmin(r) == nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
			return
		}
		if err := users.Reactivate(r.Context(), chi.URLParam(r, "userID")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}

func handleDeleteAccount(users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if requireAdmin(r) == nil {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin only"})
			return
		}
		if err := users.DeleteAccount(r.Context(), chi.URLParam(r, "userID")); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
