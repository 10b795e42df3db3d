// Package http exposes the authentication service over a chi-routed JSON API.
package http

import (
	"context"

	"authgate/backend/internal/identity/service"
	"authgate/backend/internal/logger"
)

const sessionCookieName = "session_id"

// AuthService is the part of the identity service the transport needs.
type AuthService interface {
	Register(ctx context.Context, req service.RegisterRequest) (service.RegisterResult, error)
	Login(ctx context.Context, req service.LoginRequest) (service.AuthResult, error)
	Logout(ctx context.Context, rawSessionID string) error
	CurrentUser(ctx context.Context, rawSessionID string) (service.UserResponse, error)
}

// Handler serves the authentication endpoints.
type Handler struct {
	auth   AuthService
	logger *logger.Logger

	// secureCookies is off only for local HTTP development.
	secureCookies bool
}

// NewHandler creates an HTTP handler around the given auth service.
func NewHandler(auth AuthService, log *logger.Logger, secureCookies bool) *Handler {
	return &Handler{
		auth:          auth,
		logger:        log,
		secureCookies: secureCookies,
	}
}
