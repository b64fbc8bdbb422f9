package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/proposalhub/proposalhub-api/internal/config"
	"go.uber.org/zap"
)

// Middleware handles authentication for HTTP requests
type Middleware struct {
	tokens     *TokenManager
	cookieName string
	logger     *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AuthConfig, tokens *TokenManager, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens:     tokens,
		cookieName: cfg.CookieName,
		logger:     logger,
	}
}

// Authenticate is the main authentication middleware. The session
// token comes from the session cookie or an Authorization bearer
// header; either works so browser and API clients share one path.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		token := m.extractToken(r)
		if token == "" {
			http.Error(w, "Unauthorized: missing session token", http.StatusUnauthorized)
			return
		}

		tenant, err := m.tokens.Validate(token)
		if err != nil {
			m.logger.Warn("session token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			http.Error(w, "Unauthorized: invalid session token", http.StatusUnauthorized)
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("contact_id", tenant.ContactID.String()),
			zap.String("organization_id", tenant.OrganizationID.String()),
			zap.Duration("auth_duration", time.Since(start)),
		)

		ctx := WithTenantContext(r.Context(), tenant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuthenticate attempts authentication but allows unauthenticated requests
// Use this for public endpoints (shared proposal views) that record the
// viewer when a session is present
func (m *Middleware) OptionalAuthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.extractToken(r)
		if token != "" {
			if tenant, err := m.tokens.Validate(token); err == nil {
				ctx := WithTenantContext(r.Context(), tenant)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			m.logger.Debug("optional auth: token validation failed, continuing unauthenticated",
				zap.String("path", r.URL.Path),
			)
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
