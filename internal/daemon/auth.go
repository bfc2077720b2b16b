package daemon

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"marquee/internal/api"
	"marquee/internal/logging"
)

var errUnauthorized = errors.New("unauthorized")

type sessionTokenKey struct{}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

func sessionToken(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey{}).(string)
	return token
}

// requireAdmin rejects requests that do not carry a live admin session token.
func (s *apiServer) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			s.writeServiceError(w, r, errUnauthorized)
			return
		}
		ok, err := s.daemon.store.ValidateSession(r.Context(), token)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !ok {
			s.writeServiceError(w, r, errUnauthorized)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionTokenKey{}, token)))
	}
}

func (s *apiServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if !s.decodeJSON(w, r, &req, false) {
		return
	}
	want := s.cfg.Admin.Password
	if want == "" || subtle.ConstantTimeCompare([]byte(req.Password), []byte(want)) != 1 {
		logging.WithContext(r.Context(), s.logger).Info("admin login rejected",
			logging.String(logging.FieldEventType, "admin_login_rejected"))
		s.writeError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	ttl := time.Duration(s.cfg.Admin.SessionHours) * time.Hour
	session, err := s.daemon.store.CreateSession(r.Context(), ttl)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	logging.WithContext(r.Context(), s.logger).Info("admin logged in",
		logging.String(logging.FieldEventType, "admin_login"),
		logging.String("expires_at", session.ExpiresAt.Format(time.RFC3339)))
	s.writeJSON(w, http.StatusOK, api.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
		Message:   "Login successful",
	})
}

func (s *apiServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if _, err := s.daemon.store.DeleteSession(r.Context(), sessionToken(r.Context())); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.MessageResponse{Message: "Logged out"})
}

func (s *apiServer) handleVerify(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, api.VerifyResponse{Valid: true})
}
