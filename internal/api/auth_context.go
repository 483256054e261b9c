package api

import (
	"context"
	"net/http"
	"strings"

	domainerrors "github.com/staybook/staybook-server/internal/errors"
	"github.com/staybook/staybook-server/internal/id"
	"github.com/staybook/staybook-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const authKey ctxKey = "auth"

// authResult is what the middleware learned from the Authorization header.
type authResult struct {
	userID id.ID
	err    error
}

// GetUserID returns the authenticated user ID from context. It fails with
// MISSING_TOKEN when no bearer token was sent and INVALID_TOKEN when the
// token did not verify.
func GetUserID(ctx context.Context) (id.ID, error) {
	res, ok := ctx.Value(authKey).(authResult)
	if !ok {
		return id.Nil, domainerrors.ErrMissingToken
	}
	if res.err != nil {
		return id.Nil, res.err
	}
	return res.userID, nil
}

// authMiddleware verifies the bearer token, if any, and records the outcome
// in the request context. It never rejects a request itself; handlers that
// need a user call GetUserID.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var res authResult

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				res.err = domainerrors.ErrMissingToken
			} else {
				res.userID, res.err = auth.Authenticate(token)
			}

			ctx := context.WithValue(r.Context(), authKey, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Bearer <token>". The scheme is
// matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// requireUser is GetUserID converted to an error body.
func (s *Server) requireUser(ctx context.Context) (id.ID, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return id.Nil, s.fail(err)
	}
	return userID, nil
}
