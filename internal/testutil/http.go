package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/clubvault/clubvault/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TestUser represents the forwarded identity for testing HTTP handlers.
type TestUser struct {
	ID   string
	Name string
	Role string
}

// AdminUser returns a TestUser with the admin role.
func AdminUser() TestUser {
	return TestUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test Admin",
		Role: "admin",
	}
}

// EditorUser returns a TestUser without admin privileges.
func EditorUser() TestUser {
	return TestUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test Editor",
		Role: "editor",
	}
}

// WithUser attaches the identity to the request the way the gateway would:
// headers are set for middleware-driven tests, and the parsed identity is
// injected into the context for tests that call handlers directly.
func WithUser(r *http.Request, user TestUser) *http.Request {
	r.Header.Set(auth.HeaderUserID, user.ID)
	r.Header.Set(auth.HeaderUserName, user.Name)
	r.Header.Set(auth.HeaderUserRole, user.Role)

	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return r
	}
	return auth.WithTestIdentity(r, auth.Identity{
		UserID: id,
		Role:   user.Role,
		Name:   user.Name,
	})
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates an HTTP request with a JSON-encoded body.
func NewJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		rdr = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes a JSON response body into out.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}
