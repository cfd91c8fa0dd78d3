package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"gameforum/internal/security"
	"gameforum/internal/store"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced on the REST API; the websocket carries only
		// notifications addressed to the authenticated user.
		return true
	},
}

// MakeHandler returns the /ws endpoint. The client authenticates with a
// "token" query parameter (mobile websocket clients cannot set headers),
// then holds the connection open to receive events. Client frames are
// drained and ignored.
func MakeHandler(hub *Hub, tokens *security.TokenService, users *store.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}
		userID, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		user, err := users.GetByID(r.Context(), userID)
		if err != nil || user == nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws: upgrade for %s: %v", userID, err)
			return
		}

		hub.Register(userID, conn)
		defer func() {
			hub.Unregister(userID, conn)
			conn.Close()
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}
}
