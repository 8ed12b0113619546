package handlers

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"coachconnect/internal/auth"
	"coachconnect/internal/backend"
	"coachconnect/internal/models"
)

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]`)

// normalizeCode upper-cases a trainer code and strips everything outside
// A-Z0-9. Codes are always re-serialized this way before forwarding; the raw
// client input never reaches the backend.
func normalizeCode(code string) string {
	return nonAlnum.ReplaceAllString(strings.ToUpper(code), "")
}

// LinkTrainer links the authenticated client to a trainer by code. The
// client-role requirement is enforced by the route's middleware.
func LinkTrainer(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		var req struct {
			TrainerCode string `json:"trainer_code"`
		}
		if err := decodeJSON(r, &req); err != nil || req.TrainerCode == "" {
			respondDetail(w, http.StatusBadRequest, "Trainer code is required")
			return
		}
		code := normalizeCode(req.TrainerCode)
		if code == "" {
			respondDetail(w, http.StatusBadRequest, "Trainer code is required")
			return
		}

		resp, err := bc.Post(r.Context(), "/client/link-trainer", map[string]any{
			"client_email": claims.Email,
			"trainer_code": code,
		})
		if err != nil {
			lg.Errorw("link-trainer: backend call failed", "error", err, "client", claims.Email)
			upstreamError(w, err)
			return
		}

		data := resp.JSON()
		if success, _ := data["success"].(bool); resp.OK() && success {
			message, _ := data["message"].(string)
			if message == "" {
				message = "Successfully linked with trainer"
			}
			respondJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"message": message,
				"trainer": data["trainer"],
			})
			return
		}

		message, _ := data["message"].(string)
		if message == "" {
			message = "Failed to link trainer. Please check the code and try again."
		}
		status := resp.Status
		if resp.OK() {
			status = http.StatusBadRequest
		}
		respondDetail(w, status, message)
	}
}

// SelectTrainer marks one of the client's linked trainers as the selected
// one. The backend receives the verified session subject as client_id, never
// a client-supplied id.
func SelectTrainer(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		var req struct {
			TrainerID any `json:"trainer_id"`
		}
		if err := decodeJSON(r, &req); err != nil || req.TrainerID == nil || req.TrainerID == "" {
			respondDetail(w, http.StatusBadRequest, "trainer_id required")
			return
		}

		resp, err := bc.Post(r.Context(), "/client/select-trainer", map[string]any{
			"client_id":  claims.Subject,
			"trainer_id": req.TrainerID,
		})
		if err != nil {
			lg.Errorw("select-trainer: backend call failed", "error", err, "client", claims.Subject)
			upstreamError(w, err)
			return
		}
		if !resp.OK() {
			relay(w, resp)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"message":    "Trainer selected successfully",
			"trainer_id": req.TrainerID,
		})
	}
}

// CheckTrainer reports whether the current user has linked trainers.
// Non-client roles always report has_trainer true, and backend failures
// degrade to an empty result rather than an error.
func CheckTrainer(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		if !claims.HasRole(auth.RoleClient) {
			respondJSON(w, http.StatusOK, models.TrainerStatus{HasTrainer: true, Trainers: []models.Trainer{}})
			return
		}

		query := url.Values{"client_email": {claims.Email}}
		resp, err := bc.Get(r.Context(), "/client/check-trainer", query)
		if err != nil || !resp.OK() {
			if err != nil {
				lg.Warnw("check-trainer: backend call failed", "error", err, "client", claims.Email)
			}
			respondJSON(w, http.StatusOK, models.TrainerStatus{HasTrainer: false, Trainers: []models.Trainer{}})
			return
		}

		var status models.TrainerStatus
		if err := resp.Decode(&status); err != nil {
			lg.Warnw("check-trainer: bad upstream body", "error", err)
			respondJSON(w, http.StatusOK, models.TrainerStatus{HasTrainer: false, Trainers: []models.Trainer{}})
			return
		}
		if status.Trainers == nil {
			status.Trainers = []models.Trainer{}
		}
		respondJSON(w, http.StatusOK, status)
	}
}

// AvailableTrainers lists trainers the client may select.
func AvailableTrainers(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.FromContext(r.Context())
		resp, err := bc.Get(r.Context(), "/trainers/available", url.Values{"client_id": {claims.Subject}})
		if err != nil {
			lg.Errorw("trainers-available: backend call failed", "error", err, "client", claims.Subject)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// TrainerCode fetches the trainer's code. The session is best effort here:
// an invalid or missing session falls back to the placeholder query instead
// of failing the request.
func TrainerCode(bc *backend.Client, sessions *auth.CookieStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := url.Values{"code": {"fetch"}}
		if claims, ok := sessions.Read(r); ok {
			query.Set("email", claims.Email)
		}

		resp, err := bc.Get(r.Context(), "/trainercode", query)
		if err != nil {
			lg.Errorw("trainercode: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// RotateTrainerCode updates a trainer's link code.
func RotateTrainerCode(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TrainerCode string `json:"trainer_code"`
			Email       string `json:"email"`
		}
		if err := decodeJSON(r, &req); err != nil || req.TrainerCode == "" || req.Email == "" {
			respondDetail(w, http.StatusBadRequest, "Trainer code and email are required")
			return
		}

		resp, err := bc.Post(r.Context(), "/trainerchange", map[string]any{
			"code":  normalizeCode(req.TrainerCode),
			"email": req.Email,
		})
		if err != nil {
			lg.Errorw("trainerchange: backend call failed", "error", err, "email", req.Email)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}
