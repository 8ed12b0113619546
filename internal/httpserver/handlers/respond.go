package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"coachconnect/internal/backend"
)

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondDetail writes the canonical error envelope. Every error status this
// service produces locally carries the same {"detail": ...} shape.
func respondDetail(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"detail": msg})
}

// relay forwards an upstream status and body verbatim.
func relay(w http.ResponseWriter, resp backend.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	if len(resp.Body) == 0 {
		_, _ = w.Write([]byte("{}"))
		return
	}
	_, _ = w.Write(resp.Body)
}

// upstreamError maps backend transport failures to client statuses: timeout
// is 504, everything else 502. The real error is logged by the client, never
// surfaced here.
func upstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, backend.ErrTimeout) {
		respondDetail(w, http.StatusGatewayTimeout, "Request to backend timed out")
		return
	}
	respondDetail(w, http.StatusBadGateway, "Backend unavailable")
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
