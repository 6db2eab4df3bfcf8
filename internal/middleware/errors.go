package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes a {"error": message} JSON body.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
