package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ndewijer/Conversions-Report-Backend/internal/api/response"
	"github.com/ndewijer/Conversions-Report-Backend/internal/session"
)

// SessionHandler handles login and logout for the report UI.
type SessionHandler struct {
	sessions *session.Manager
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(sessions *session.Manager) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

// LoginRequest is the body of a login call.
type LoginRequest struct {
	Password string `json:"password"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Token     string `json:"token,omitempty"`
	ExpiresIn int    `json:"expires_in"`
	Enabled   bool   `json:"enabled"`
}

// Login checks the access password and sets the session cookie.
//
// Endpoint: POST /api/session
// Response: 200 OK with LoginResponse
// Error: 400 for an unreadable body, 401 for a wrong password
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Enabled() {
		response.RespondJSON(w, http.StatusOK, LoginResponse{Enabled: false})
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	token, err := h.sessions.Login(req.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidPassword) {
			response.RespondError(w, http.StatusUnauthorized, "invalid password", nil)
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to create session", err.Error())
		return
	}

	maxAge := int(h.sessions.TTL().Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	response.RespondJSON(w, http.StatusOK, LoginResponse{Token: token, ExpiresIn: maxAge, Enabled: true})
}

// Logout clears the session cookie.
//
// Endpoint: DELETE /api/session
// Response: 204 No Content
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}
