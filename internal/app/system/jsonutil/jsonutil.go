// Package jsonutil provides helper functions for JSON API responses.
//
// Every endpoint answers with the platform envelope:
//
//	{ "success": bool, "message": string, "data": any, "pagination": {...} }
//
// Use these helpers in API handlers to ensure consistent JSON responses
// with proper Content-Type headers and error formatting.
package jsonutil

import (
	"encoding/json"
	"net/http"
)

// Pagination describes the page window of a list response.
type Pagination struct {
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count from a total.
func NewPagination(page, limit, total int64) *Pagination {
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// Envelope is the uniform response body.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// JSON writes an envelope with the given status code.
func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a 200 success envelope.
func OK(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// OKPaged writes a 200 success envelope with pagination.
func OKPaged(w http.ResponseWriter, message string, data any, p *Pagination) {
	JSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Pagination: p})
}

// Created writes a 201 success envelope.
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Fail writes an error envelope with the given status code.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Message: message})
}

// BadRequest writes a 400 Bad Request error envelope.
func BadRequest(w http.ResponseWriter, message string) {
	Fail(w, http.StatusBadRequest, message)
}

// Forbidden writes a 403 Forbidden error envelope.
func Forbidden(w http.ResponseWriter, message string) {
	Fail(w, http.StatusForbidden, message)
}

// NotFound writes a 404 Not Found error envelope.
func NotFound(w http.ResponseWriter, message string) {
	Fail(w, http.StatusNotFound, message)
}

// Conflict writes a 409 Conflict error envelope.
func Conflict(w http.ResponseWriter, message string) {
	Fail(w, http.StatusConflict, message)
}

// InternalError writes a 500 envelope with a message derived from err.
// The fallback is used when err carries no useful text.
func InternalError(w http.ResponseWriter, err error, fallback string) {
	Fail(w, http.StatusInternalServerError, ErrorMessage(err, fallback))
}

// ErrorMessage extracts a message from err, falling back when empty.
func ErrorMessage(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// Decode reads and decodes JSON from the request body into v.
// Returns an error that can be passed to BadRequest if decoding fails.
func Decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
