package auth

import (
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fdg312/ops-dashboard/internal/apierr"
	"github.com/fdg312/ops-dashboard/internal/config"
)

// Middleware applies AUTH_MODE to incoming requests.
//
//	none      bearer token is carried by the client but never checked
//	jwt, dev  a present token must verify; AUTH_REQUIRED makes it mandatory
type Middleware struct {
	config  *config.Config
	service *Service
	logger  logrus.FieldLogger
}

func NewMiddleware(cfg *config.Config, service *Service, logger logrus.FieldLogger) *Middleware {
	return &Middleware{
		config:  cfg,
		service: service,
		logger:  logger,
	}
}

// Wrap picks the handler chain for the configured mode.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	if m.config.AuthMode == config.AuthModeNone {
		return m.PassThrough(next)
	}
	if m.config.AuthRequired {
		return m.RequireAuth(next)
	}
	return m.OptionalAuth(next)
}

// PassThrough forwards every request. Tokens are noted, not verified.
func (m *Middleware) PassThrough(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := bearerToken(r.Header.Get("Authorization")); ok {
			m.logger.WithField("path", r.URL.Path).Debug("auth: bearer token present (not verified)")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a valid token, except public paths.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.authenticateHeader(r.Header.Get("Authorization"))
		if err != nil {
			apierr.Write(w, http.StatusUnauthorized, apierr.CodeUnauthorized, "Unauthorized", "")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// OptionalAuth validates Bearer token only when it is provided.
// Without token, requests pass through unchanged.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if strings.TrimSpace(authHeader) == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := m.authenticateHeader(authHeader)
		if err != nil {
			apierr.Write(w, http.StatusUnauthorized, apierr.CodeUnauthorized, "Invalid or expired token", "")
			return
		}

		m.logger.WithFields(logrus.Fields{
			"sub":    userID,
			"method": r.Method,
			"path":   r.URL.Path,
		}).Debug("auth: token accepted")
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func (m *Middleware) authenticateHeader(authHeader string) (string, error) {
	token, ok := bearerToken(authHeader)
	if !ok {
		return "", ErrInvalidToken
	}
	return m.service.VerifyJWT(token)
}

func bearerToken(authHeader string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(authHeader), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func isPublicPath(path string) bool {
	return path == "/healthz" || strings.HasPrefix(path, "/api/auth/")
}
