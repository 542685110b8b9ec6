package authz

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clubvault/clubvault/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestWithIdentity(role string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	return auth.WithTestIdentity(r, auth.Identity{
		UserID: primitive.NewObjectID(),
		Role:   role,
		Name:   "Someone",
	})
}

func TestUserCtx_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	role, name, id, ok := UserCtx(r)
	if ok {
		t.Error("ok should be false without an identity")
	}
	if role != "visitor" || name != "" || !id.IsZero() {
		t.Errorf("UserCtx() = %q, %q, %s", role, name, id.Hex())
	}
}

func TestIsAdmin(t *testing.T) {
	if !IsAdmin(requestWithIdentity("Admin")) {
		t.Error("IsAdmin() should match case-insensitively")
	}
	if IsAdmin(requestWithIdentity("editor")) {
		t.Error("IsAdmin() should be false for editors")
	}
	if IsAdmin(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Error("IsAdmin() should be false for anonymous requests")
	}
}

func TestHasRole(t *testing.T) {
	r := requestWithIdentity("editor")
	if !HasRole(r, "admin", "editor") {
		t.Error("HasRole() should match any of the given roles")
	}
	if HasRole(r, "admin") {
		t.Error("HasRole() should be false when the role is absent")
	}
}

func TestRequireRole(t *testing.T) {
	var reached bool
	handler := RequireRole("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("allows the role", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithIdentity("admin"))
		if !reached || rec.Code != http.StatusNoContent {
			t.Errorf("handler reached = %t, status = %d", reached, rec.Code)
		}
	})

	t.Run("rejects other roles", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithIdentity("editor"))
		if reached || rec.Code != http.StatusForbidden {
			t.Errorf("handler reached = %t, status = %d, want 403", reached, rec.Code)
		}
	})

	t.Run("rejects anonymous", func(t *testing.T) {
		reached = false
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if reached || rec.Code != http.StatusForbidden {
			t.Errorf("handler reached = %t, status = %d, want 403", reached, rec.Code)
		}
	})
}
