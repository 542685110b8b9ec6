// Package auth provides the trust boundary with the platform gateway.
//
// User login and session handling live upstream; this service receives the
// already-authenticated identity through forwarded headers alongside the
// service API key. The identity is loaded into the request context so
// handlers can attribute mutations and authz can check roles.
package auth

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Forwarded identity headers set by the gateway.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
	HeaderUserName = "X-User-Name"
)

// Identity is the authenticated user forwarded by the gateway.
type Identity struct {
	UserID primitive.ObjectID
	Role   string
	Name   string
}

type ctxKey struct{}

// LoadIdentity returns middleware that parses the forwarded identity headers
// into the request context. Requests without identity headers proceed with no
// identity; role-gated routes reject them downstream.
func LoadIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idStr := r.Header.Get(HeaderUserID)
		if idStr == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := primitive.ObjectIDFromHex(idStr)
		if err != nil {
			// Malformed forwarded id - fail closed and treat as anonymous.
			next.ServeHTTP(w, r)
			return
		}

		ident := Identity{
			UserID: userID,
			Role:   strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderUserRole))),
			Name:   strings.TrimSpace(r.Header.Get(HeaderUserName)),
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, ident)))
	})
}

// CurrentUser returns the forwarded identity, if any.
func CurrentUser(r *http.Request) (Identity, bool) {
	ident, ok := r.Context().Value(ctxKey{}).(Identity)
	return ident, ok
}

// WithTestIdentity injects an identity directly into the request context,
// bypassing the middleware. For tests that call handlers directly.
func WithTestIdentity(r *http.Request, ident Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, ident))
}
