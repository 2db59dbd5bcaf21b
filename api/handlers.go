// Package api exposes a minimal HTTP surface alongside the WebSocket
// transport: a read-only snapshot of a session's board, for clients that
// want a one-shot look without holding a connection open.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"memory-scramble-server/render"
	"memory-scramble-server/session"
)

// lookResponse is the JSON body returned by the look endpoint.
type lookResponse struct {
	Session string `json:"session"`
	Text    string `json:"text"`
}

// NewLookHandler returns a handler for GET /api/sessions/{name}/look?player=ID
// that renders the named session's board from the given player's
// perspective. The session must already exist; it returns 404 otherwise.
func NewLookHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		name := sessionNameFromPath(r.URL.Path)
		if name == "" {
			http.Error(w, "missing session name", http.StatusBadRequest)
			return
		}
		player := r.URL.Query().Get("player")
		if player == "" {
			http.Error(w, "missing player query parameter", http.StatusBadRequest)
			return
		}

		b, ok := sessions.Get(name)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if !b.IsRegistered(player) {
			if err := b.RegisterPlayer(player, ""); err != nil {
				log.Printf("look: register player %q: %v", player, err)
				http.Error(w, "could not register player", http.StatusBadRequest)
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(lookResponse{Session: name, Text: render.Render(b.Snapshot(player))})
	}
}

// sessionNameFromPath extracts {name} from "/api/sessions/{name}/look".
func sessionNameFromPath(path string) string {
	const prefix = "/api/sessions/"
	const suffix = "/look"
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, suffix) {
		return ""
	}
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), suffix)
}
