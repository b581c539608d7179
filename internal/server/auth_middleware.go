package server

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/zeusync/autopilot/internal/core/observability/log"
)

// TokenAuthMiddleware rejects requests that do not carry the configured token,
// either as "Authorization: Bearer <token>" or as a "token" query parameter for
// websocket clients. An empty token disables the check.
type TokenAuthMiddleware struct {
	token  string
	logger log.Log
}

func NewTokenAuthMiddleware(token string, logger log.Log) *TokenAuthMiddleware {
	return &TokenAuthMiddleware{token: token, logger: logger}
}

func (m *TokenAuthMiddleware) Name() string {
	return "TokenAuthMiddleware"
}

func (m *TokenAuthMiddleware) Wrap(next http.Handler) http.Handler {
	if m.token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.authorized(r) {
			m.logger.Warn("Rejected unauthenticated request",
				log.String("remote", r.RemoteAddr),
				log.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *TokenAuthMiddleware) authorized(r *http.Request) bool {
	token := r.URL.Query().Get("token")
	if h := r.Header.Get("Authorization"); h != "" {
		token = strings.TrimPrefix(h, "Bearer ")
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(m.token)) == 1
}
