package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"coachconnect/internal/auth"
	"coachconnect/internal/backend"
	"coachconnect/internal/forms"
)

// FormShow returns the form schemas published under a trainer code. The code
// may arrive in the body or the query string.
func FormShow(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TrainerCode string `json:"trainer_code"`
		}
		_ = decodeJSON(r, &req)
		code := req.TrainerCode
		if code == "" {
			code = r.URL.Query().Get("trainer_code")
		}
		if code == "" {
			respondDetail(w, http.StatusUnprocessableEntity, "trainer_code is required")
			return
		}

		resp, err := bc.Post(r.Context(), "/form-show", map[string]any{"trainer_code": code})
		if err != nil {
			lg.Errorw("form-show: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

type formSaveReq struct {
	Email      string          `json:"email"`
	FormSchema json.RawMessage `json:"formSchema"`
}

// FormSave persists a trainer-authored schema to the backend. The schema is
// validated before forwarding, and when enforceTrainer is set only
// trainer-role sessions may save.
func FormSave(bc *backend.Client, enforceTrainer bool, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if enforceTrainer {
			claims := auth.FromContext(r.Context())
			if !claims.HasRole(auth.RoleTrainer) {
				respondDetail(w, http.StatusForbidden, "Forbidden: trainers only")
				return
			}
		}

		var req formSaveReq
		if err := decodeJSON(r, &req); err != nil {
			respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			respondDetail(w, http.StatusBadRequest, "A valid email is required")
			return
		}
		form, err := forms.Decode(req.FormSchema)
		if err != nil {
			lg.Debugw("form-save: rejected schema", "error", err, "email", req.Email)
			respondDetail(w, http.StatusBadRequest, "Invalid form schema")
			return
		}

		resp, err := bc.Post(r.Context(), "/form-resave", map[string]any{
			"email":      req.Email,
			"formSchema": form,
		})
		if err != nil {
			lg.Errorw("form-save: backend call failed", "error", err, "email", req.Email)
			upstreamError(w, err)
			return
		}
		if !resp.OK() {
			lg.Warnw("form-save: upstream rejected schema", "status", resp.Status, "email", req.Email)
			respondDetail(w, http.StatusBadGateway, "Upstream error")
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "data": resp.JSON()})
	}
}

type formSubmitReq struct {
	TrainerCode string      `json:"trainer_code"`
	FormID      string      `json:"form_id"`
	Values      forms.Values `json:"values"`
	Email       *string     `json:"email"`
}

// FormSubmitClient forwards a client's filled-in form. Email comes from the
// submitting client and may be null; that is not a submission error.
func FormSubmitClient(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req formSubmitReq
		if err := decodeJSON(r, &req); err != nil || req.TrainerCode == "" || req.FormID == "" || req.Values == nil {
			respondDetail(w, http.StatusUnprocessableEntity, "trainer_code, form_id, values required")
			return
		}

		resp, err := bc.Post(r.Context(), "/form-submit-client", map[string]any{
			"trainer_code": req.TrainerCode,
			"form_id":      req.FormID,
			"values":       req.Values,
			"email":        req.Email,
		})
		if err != nil {
			lg.Errorw("form-submit: backend call failed", "error", err, "form", req.FormID)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}

// FormSubmissions lists submissions for a trainer code or a respondent email.
func FormSubmissions(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		trainersCode := r.URL.Query().Get("trainers_code")
		email := r.URL.Query().Get("email")
		if trainersCode == "" && email == "" {
			respondDetail(w, http.StatusUnprocessableEntity, "trainers_code or email required")
			return
		}

		query := url.Values{}
		if trainersCode != "" {
			query.Set("trainers_code", trainersCode)
		} else {
			query.Set("email", email)
		}

		resp, err := bc.Get(r.Context(), "/form-submissions", query)
		if err != nil {
			lg.Errorw("form-submissions: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}
