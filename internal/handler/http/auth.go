package http

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"authgate/backend/internal/identity/service"
	"authgate/backend/internal/logger"
)

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type registerResponse struct {
	UserID string `json:"userId"`
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo"`
}

type loginResponse struct {
	UserID     string `json:"userId"`
	CSRFToken  string `json:"csrfToken"`
	RedirectTo string `json:"redirectTo"`
}

type meResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.auth.Register(r.Context(), service.RegisterRequest{
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{UserID: result.UserID})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	result, err := h.auth.Login(r.Context(), service.LoginRequest{
		Email:      req.Email,
		Password:   req.Password,
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
		RedirectTo: req.RedirectTo,
	})
	if err != nil {
		writeError(w, log, err)
		return
	}

	h.setSessionCookie(w, result.SessionID)
	writeJSON(w, http.StatusOK, loginResponse{
		UserID:     result.UserID,
		CSRFToken:  result.CSRFToken,
		RedirectTo: result.RedirectTo,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			writeError(w, log, err)
			return
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		writeError(w, log, &service.UnauthorizedError{Message: "Invalid session"})
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), cookie.Value)
	if err != nil {
		writeError(w, log, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:          user.ID,
		Email:       user.Email,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	})
}

// setSessionCookie installs the opaque session id as an HttpOnly cookie. The
// CSRF token deliberately travels in the response body instead, so script can
// read it and echo it in a header while the cookie stays script-invisible.
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
