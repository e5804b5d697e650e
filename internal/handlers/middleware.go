package handlers

import (
	"crypto/subtle"
	"net/http"
)

// MiddlewareProvider guards mutating endpoints with the shared secret.
// The Authorization header must match the configured token exactly; read
// endpoints are left open.
type MiddlewareProvider struct {
	SecretOption string
}

func New(secret string) *MiddlewareProvider {
	return &MiddlewareProvider{
		SecretOption: secret,
	}
}

func (m *MiddlewareProvider) secret() []byte {
	return []byte(m.SecretOption)
}

// Authorize rejects requests whose Authorization header is absent or does
// not match the shared secret
func (m *MiddlewareProvider) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" || subtle.ConstantTimeCompare([]byte(token), m.secret()) != 1 {
			http.Error(w, "Unauthorized", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
