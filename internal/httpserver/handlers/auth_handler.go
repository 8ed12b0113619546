package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"coachconnect/internal/auth"
	"coachconnect/internal/backend"
)

type loginReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role,omitempty"`
	TrainerCode string `json:"trainer_code,omitempty"`
}

// Login validates the request shape, forwards credentials to the backend and,
// on a confirmed login, sets the session cookie. The backend body is returned
// unchanged; a cookie failure never fails the login.
func Login(bc *backend.Client, sessions *auth.CookieStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeJSON(r, &req); err != nil {
			respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		if req.Email == "" || req.Password == "" {
			respondDetail(w, http.StatusBadRequest, "Email and password required")
			return
		}

		payload := map[string]any{"email": req.Email, "password": req.Password}
		if req.Role == auth.RoleTrainer || req.Role == auth.RoleClient {
			payload["role"] = req.Role
		}
		if req.TrainerCode != "" {
			payload["trainer_code"] = req.TrainerCode
		}

		resp, err := bc.Post(r.Context(), "/login", payload)
		if err != nil {
			lg.Errorw("login: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		if !resp.OK() {
			relay(w, resp)
			return
		}

		data := resp.JSON()
		if success, _ := data["success"].(bool); success {
			if user, _ := data["user"].(map[string]any); user != nil {
				sessions.Write(w, claimsFromUser(user, req.Email))
			}
		}
		relay(w, resp)
	}
}

func claimsFromUser(user map[string]any, fallbackEmail string) auth.Claims {
	sub := fallbackEmail
	switch id := user["id"].(type) {
	case string:
		sub = id
	case float64:
		sub = strconv.FormatFloat(id, 'f', -1, 64)
	}
	email := fallbackEmail
	if s, _ := user["email"].(string); s != "" {
		email = s
	}
	role := auth.RoleClient
	if s, _ := user["role"].(string); s == auth.RoleTrainer {
		role = auth.RoleTrainer
	}
	return auth.Claims{
		Subject:     sub,
		Email:       email,
		Role:        role,
		FirstName:   asString(user["first_name"]),
		LastName:    asString(user["last_name"]),
		Country:     asString(user["country"]),
		PhoneNumber: asString(user["phone_number"]),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func Logout(sessions *auth.CookieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions.Clear(w)
		respondJSON(w, http.StatusOK, map[string]any{"success": true})
	}
}

// Me reports the current session. It never errors: absent or invalid
// sessions produce {"user": null}.
func Me(sessions *auth.CookieStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := sessions.Read(r)
		if !ok {
			respondJSON(w, http.StatusOK, map[string]any{"user": nil})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"user": map[string]any{
			"id":           claims.Subject,
			"email":        claims.Email,
			"role":         claims.Role,
			"first_name":   claims.FirstName,
			"last_name":    claims.LastName,
			"country":      claims.Country,
			"phone_number": claims.PhoneNumber,
		}})
	}
}

type registerReq struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	Country     string `json:"country"`
	Role        string `json:"role"`
}

func Register(bc *backend.Client, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := decodeJSON(r, &req); err != nil {
			respondDetail(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" ||
			req.PhoneNumber == "" || req.Country == "" || req.Role == "" {
			respondDetail(w, http.StatusBadRequest, "Missing required fields")
			return
		}

		resp, err := bc.Post(r.Context(), "/register", req)
		if err != nil {
			lg.Errorw("register: backend call failed", "error", err)
			upstreamError(w, err)
			return
		}
		relay(w, resp)
	}
}
