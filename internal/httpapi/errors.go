package httpapi

import (
	"encoding/json"
	"net/http"

	"bedrockproxy/pkg/types"
)

// writeJSONError writes a consistent JSON error payload. Only used before a
// stream starts; once the body is streaming, failures are relayed in-band.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
