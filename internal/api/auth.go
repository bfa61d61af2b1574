// Package api provides session verification for admin endpoints.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hanulzine/webzine/internal/models"
)

// Identity is the result of verifying a request's session token.
type Identity struct {
	Authenticated bool
	IsAdmin       bool
	UserID        string
}

// verifySession checks the request's bearer token against the admin HMAC
// secret. An absent or invalid token yields an unauthenticated identity
// rather than an error.
func (s *Server) verifySession(r *http.Request) Identity {
	header := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return Identity{}
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		slog.Warn("Server.verifySession: token rejected", "error", err)
		return Identity{}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}
	}
	id := Identity{Authenticated: true}
	if admin, ok := claims["admin"].(bool); ok {
		id.IsAdmin = admin
	}
	if sub, ok := claims["sub"].(string); ok {
		id.UserID = sub
	}
	return id
}

// requireAdmin guards a handler behind an authenticated admin session.
// Without a configured secret the admin surface is disabled entirely.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.jwtSecret) == 0 {
			slog.Warn("Server.requireAdmin: admin API disabled, no secret configured", "path", r.URL.Path)
			writeJSONResponse(w, http.StatusServiceUnavailable, models.Error("Admin API disabled"))
			return
		}
		identity := s.verifySession(r)
		if !identity.Authenticated {
			writeJSONResponse(w, http.StatusUnauthorized, models.Error("Authentication required"))
			return
		}
		if !identity.IsAdmin {
			slog.Warn("Server.requireAdmin: non-admin session rejected", "user_id", identity.UserID, "path", r.URL.Path)
			writeJSONResponse(w, http.StatusForbidden, models.Error("Admin privileges required"))
			return
		}
		next(w, r)
	}
}
