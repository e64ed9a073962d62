// Package middleware contains HTTP middleware functions for request processing
package middleware

import (
	"errors"
	"strings"

	"github.com/amirphl/notification-hub/app/dto"
	"github.com/amirphl/notification-hub/app/services"
	"github.com/gofiber/fiber/v3"
)

// SessionMiddleware resolves the draft session token of draft-scoped endpoints
type SessionMiddleware struct {
	tokenService services.TokenService
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(tokenService services.TokenService) *SessionMiddleware {
	return &SessionMiddleware{
		tokenService: tokenService,
	}
}

// RequireSession validates the bearer session token and stores the session id in Locals
func (m *SessionMiddleware) RequireSession() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required", "MISSING_AUTHORIZATION_HEADER")
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Expected 'Bearer <token>'", "INVALID_AUTHORIZATION_FORMAT")
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return unauthorized(c, "Session token is required", "MISSING_SESSION_TOKEN")
		}

		claims, err := m.tokenService.ValidateSessionToken(token)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				return unauthorized(c, "Session token has expired", "TOKEN_EXPIRED")
			case errors.Is(err, services.ErrTokenInvalid):
				return unauthorized(c, "Invalid session token", "TOKEN_INVALID")
			default:
				return unauthorized(c, "Token validation failed", "TOKEN_VALIDATION_FAILED")
			}
		}

		c.Locals("session_id", claims.SessionID)
		c.Locals("token_id", claims.TokenID)

		if requestID := c.Get("X-Request-ID"); requestID != "" {
			c.Locals("request_id", requestID)
		}

		return c.Next()
	}
}

func unauthorized(c fiber.Ctx, message, code string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: code,
		},
	})
}
