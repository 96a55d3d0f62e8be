package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type ctxKey int

const userIDKey ctxKey = iota

var ErrUnauthorized = errors.New("unauthorized")

// IdentityResolver is the access-control collaborator: it turns request
// credentials into a stable user identifier. The cart and order
// services treat a resolved identity as a precondition and never parse
// credentials themselves.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// StaticResolver maps bearer tokens to user IDs from configuration.
// Stands in for the real token service in local and test runs.
type StaticResolver map[string]string

func (r StaticResolver) Resolve(_ context.Context, token string) (string, error) {
	userID, ok := r[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return userID, nil
}

// AuthMiddleware resolves the Authorization bearer token and stores the
// user ID on the request context.
func AuthMiddleware(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			userID, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid credentials")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(userIDKey).(string); ok {
		return userID
	}
	return ""
}
