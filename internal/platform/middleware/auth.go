package middleware

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKeyDepositor struct{}

// ContextKeyDepositor is exported for use in handlers and tests.
var ContextKeyDepositor = contextKeyDepositor{}

// GetDepositor retrieves the authenticated depositor identity from the
// context.
func GetDepositor(ctx context.Context) string {
	depositor, ok := ctx.Value(ContextKeyDepositor).(string)
	if !ok {
		return ""
	}
	return depositor
}

// RequireAuth validates the bearer token and stores its subject as the
// depositor identity. Entries are attributed to the token subject, never to
// a caller-supplied body field.
func RequireAuth(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(signingKey), nil
			})
			if err != nil || !token.Valid {
				logger.Warn("rejected bearer token", "error", errString(err))
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				http.Error(w, "token has no subject", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyDepositor, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireProviderSecret restricts an endpoint to the configured randomness
// provider. The fulfillment callback is not a general-purpose entry point.
func RequireProviderSecret(secret string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get("X-Provider-Secret")
			if subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
				logger.Warn("rejected fulfillment caller", "path", r.URL.Path)
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func errString(err error) string {
	if err == nil {
		return "token invalid"
	}
	return err.Error()
}
