// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// list filters, numeric query parameters and JSON transaction drafts.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/core"
)

// maxBodyBytes bounds the size of a JSON request body.
const maxBodyBytes = 64 << 10

var errEmptyBody = errors.New("request body is empty")

// ParseFilter reads q, type and sort from the query string. Missing values
// fall back to all types ordered by date.
func ParseFilter(query url.Values) (core.Filter, error) {
	f := core.Filter{
		Type:   core.FilterAll,
		Search: sanitizeInput(query.Get("q")),
		SortBy: core.SortByDate,
	}

	if v := strings.ToLower(strings.TrimSpace(query.Get("type"))); v != "" {
		if v != core.FilterAll && !core.TransactionType(v).IsValid() {
			return core.Filter{}, fmt.Errorf("unknown type %q", v)
		}
		f.Type = v
	}
	if v := strings.ToLower(strings.TrimSpace(query.Get("sort"))); v != "" {
		if v != core.SortByDate && v != core.SortByAmount {
			return core.Filter{}, fmt.Errorf("unknown sort %q", v)
		}
		f.SortBy = v
	}
	return f, nil
}

// ParseLimit reads a non-negative integer query parameter, returning def when
// the parameter is absent.
func ParseLimit(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", key)
	}
	return n, nil
}

// DecodeDraft reads a JSON transaction draft from the request body. Unknown
// fields are rejected and text fields are sanitized.
func DecodeDraft(w http.ResponseWriter, r *http.Request) (core.TransactionDraft, error) {
	var d core.TransactionDraft

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return d, errEmptyBody
		}
		return d, fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return d, errors.New("invalid JSON body: trailing data")
	}

	d.Description = sanitizeInput(d.Description)
	d.Category = sanitizeInput(d.Category)
	d.Date = strings.TrimSpace(d.Date)
	d.Type = core.TransactionType(strings.ToLower(strings.TrimSpace(string(d.Type))))
	return d, nil
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
