// Package http implements the reference ledger service: the four
// transaction endpoints under /api plus a health check.
package http

import (
	"encoding/json"
	"net/http"

	"wallet/internal/ledger"
	applog "wallet/internal/log"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a response header.
func (b *JSONResponseBuilder) Header(key, value string) *JSONResponseBuilder {
	b.headers[key] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Message sets a {"message": ...} body, the envelope clients read errors
// from.
func (b *JSONResponseBuilder) Message(msg string) *JSONResponseBuilder {
	b.body = ledger.ErrorBody{Message: msg}
	return b
}

// Write sends the response.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(b.statusCode)
	if b.body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode response", applog.FieldError, err)
	}
}

// writeMessage is shorthand for a status plus {"message": msg}.
func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	NewJSONResponse().Status(status).Message(msg).Write(w, r)
}
