package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestLoadIdentity(t *testing.T) {
	var got Identity
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = CurrentUser(r)
	})
	handler := LoadIdentity(next)

	t.Run("parses forwarded headers", func(t *testing.T) {
		id := primitive.NewObjectID()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderUserID, id.Hex())
		req.Header.Set(HeaderUserRole, " Admin ")
		req.Header.Set(HeaderUserName, " Alex Ferguson ")

		handler.ServeHTTP(httptest.NewRecorder(), req)
		if !ok {
			t.Fatal("identity should be present")
		}
		if got.UserID != id {
			t.Errorf("userID = %s, want %s", got.UserID.Hex(), id.Hex())
		}
		if got.Role != "admin" {
			t.Errorf("role = %q, want lowercased trimmed %q", got.Role, "admin")
		}
		if got.Name != "Alex Ferguson" {
			t.Errorf("name = %q, want trimmed", got.Name)
		}
	})

	t.Run("no headers means anonymous", func(t *testing.T) {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		if ok {
			t.Error("identity should be absent without headers")
		}
	})

	t.Run("malformed id means anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderUserID, "not-an-object-id")
		req.Header.Set(HeaderUserRole, "admin")

		handler.ServeHTTP(httptest.NewRecorder(), req)
		if ok {
			t.Error("a malformed forwarded id should not grant an identity")
		}
	})
}

func TestAPIKeyAuth(t *testing.T) {
	logger := zap.NewNop()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("valid key passes", func(t *testing.T) {
		handler := APIKeyAuth("secret", logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		handler := APIKeyAuth("secret", logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer wrong")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing header rejected", func(t *testing.T) {
		handler := APIKeyAuth("secret", logger)(next)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("non-bearer scheme rejected", func(t *testing.T) {
		handler := APIKeyAuth("secret", logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic secret")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("unconfigured key rejects everything", func(t *testing.T) {
		handler := APIKeyAuth("", logger)(next)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer anything")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}
