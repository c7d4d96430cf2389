// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses so
// every handler writes status, headers and body the same way.

package http

import (
	"encoding/json"
	"net/http"
)

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	body       any
	headers    map[string]string
}

// errorBody is the payload of every non-2xx response.
type errorBody struct {
	Error       string `json:"error"`
	Durable     *bool  `json:"durable,omitempty"`
	Transaction any    `json:"transaction,omitempty"`
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

// Error sets an error payload.
func (b *JSONResponseBuilder) Error(msg string) *JSONResponseBuilder {
	b.body = errorBody{Error: msg}
	return b
}

// NotDurable marks the response as a persistence failure. The change it
// carries lives in memory only.
func (b *JSONResponseBuilder) NotDurable(msg string, tx any) *JSONResponseBuilder {
	durable := false
	b.statusCode = http.StatusInternalServerError
	b.body = errorBody{Error: msg, Durable: &durable, Transaction: tx}
	return b
}

// Write sends the response. A 204 is written without a body.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) error {
	for k, v := range b.headers {
		w.Header().Set(k, v)
	}
	if b.statusCode == http.StatusNoContent || b.body == nil {
		w.WriteHeader(b.statusCode)
		return nil
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	return json.NewEncoder(w).Encode(b.body)
}

// BadRequest returns a 400 builder.
func BadRequest(msg string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusBadRequest).Error(msg)
}

// NotFound returns a 404 builder.
func NotFound(msg string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusNotFound).Error(msg)
}

// Unprocessable returns a 422 builder for drafts that fail validation.
func Unprocessable(msg string) *JSONResponseBuilder {
	return NewJSONResponse().Status(http.StatusUnprocessableEntity).Error(msg)
}

// TooManyRequests returns a 429 builder.
func TooManyRequests(retryAfter string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Header("Retry-After", retryAfter).
		Error("rate limit exceeded, please try again later")
}
