package jsonutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                string
		page, limit, total  int64
		wantPage, wantPages int64
	}{
		{"exact pages", 1, 10, 30, 1, 3},
		{"partial last page", 2, 10, 31, 2, 4},
		{"zero total", 1, 10, 0, 1, 0},
		{"defaults applied", 0, 0, 5, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.limit, tt.total)
			if p.Page != tt.wantPage {
				t.Errorf("page = %d, want %d", p.Page, tt.wantPage)
			}
			if p.Pages != tt.wantPages {
				t.Errorf("pages = %d, want %d", p.Pages, tt.wantPages)
			}
			if p.Total != tt.total {
				t.Errorf("total = %d, want %d", p.Total, tt.total)
			}
		})
	}
}

func TestEnvelopeWriters(t *testing.T) {
	decode := func(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
		t.Helper()
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		var env Envelope
		if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
			t.Fatalf("decoding envelope: %v", err)
		}
		return env
	}

	t.Run("OK", func(t *testing.T) {
		rec := httptest.NewRecorder()
		OK(rec, "done", map[string]string{"k": "v"})
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		env := decode(t, rec)
		if !env.Success || env.Message != "done" || env.Data == nil {
			t.Errorf("envelope = %+v", env)
		}
	})

	t.Run("Created", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Created(rec, "made", nil)
		if rec.Code != http.StatusCreated {
			t.Errorf("status = %d", rec.Code)
		}
		if env := decode(t, rec); !env.Success {
			t.Errorf("envelope = %+v", env)
		}
	})

	t.Run("OKPaged", func(t *testing.T) {
		rec := httptest.NewRecorder()
		OKPaged(rec, "list", []int{1, 2}, NewPagination(1, 2, 5))
		env := decode(t, rec)
		if env.Pagination == nil || env.Pagination.Pages != 3 {
			t.Errorf("pagination = %+v", env.Pagination)
		}
	})

	t.Run("error statuses", func(t *testing.T) {
		cases := []struct {
			write func(http.ResponseWriter)
			want  int
		}{
			{func(w http.ResponseWriter) { BadRequest(w, "bad") }, http.StatusBadRequest},
			{func(w http.ResponseWriter) { Forbidden(w, "no") }, http.StatusForbidden},
			{func(w http.ResponseWriter) { NotFound(w, "gone") }, http.StatusNotFound},
			{func(w http.ResponseWriter) { Conflict(w, "taken") }, http.StatusConflict},
		}
		for _, c := range cases {
			rec := httptest.NewRecorder()
			c.write(rec)
			if rec.Code != c.want {
				t.Errorf("status = %d, want %d", rec.Code, c.want)
			}
			if env := decode(t, rec); env.Success {
				t.Errorf("error envelope should have success=false: %+v", env)
			}
		}
	})
}

func TestErrorMessage(t *testing.T) {
	if got := ErrorMessage(nil, "fallback"); got != "fallback" {
		t.Errorf("ErrorMessage(nil) = %q", got)
	}
	if got := ErrorMessage(errors.New("boom"), "fallback"); got != "boom" {
		t.Errorf("ErrorMessage(err) = %q", got)
	}
	if got := ErrorMessage(errors.New(""), "fallback"); got != "fallback" {
		t.Errorf("ErrorMessage(empty err) = %q", got)
	}
}
