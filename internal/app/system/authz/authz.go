// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/clubvault/clubvault/internal/app/system/auth"
	"github.com/clubvault/clubvault/internal/app/system/jsonutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the current user's role (lowercased), name, id, and a found
// flag. If no identity was forwarded, it returns "visitor", "", NilObjectID,
// false, so callers can trust that ok=true means an authenticated user.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	ident, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(ident.Role), ident.Name, ident.UserID, true
}

// ActorID returns the current user's id, or NilObjectID when anonymous.
func ActorID(r *http.Request) primitive.ObjectID {
	_, _, id, _ := UserCtx(r)
	return id
}

// IsAdmin reports whether the current request's user is an admin.
// Admin is the top-level role required for cascading deletes.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "admin"
}

// HasRole reports whether the current user has one of the specified roles.
func HasRole(r *http.Request, roles ...string) bool {
	role, _, _, ok := UserCtx(r)
	if !ok {
		return false
	}
	for _, allowed := range roles {
		if strings.ToLower(allowed) == role {
			return true
		}
	}
	return false
}

// RequireRole returns middleware that rejects requests whose forwarded
// identity lacks all of the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HasRole(r, roles...) {
				jsonutil.Forbidden(w, "Insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
