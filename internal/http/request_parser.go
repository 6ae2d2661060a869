// Package http serves the table pages and their HTMX fragments.
package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// RequestBodyParser reads a small HTMX request body once. Checkbox posts
// arrive form-encoded and hx-vals arrive as JSON; both are read through Get.
type RequestBodyParser struct {
	body   []byte
	values map[string]any
	form   url.Values
	parsed bool
	err    error
}

// NewRequestBodyParser reads the body of r.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(r.Body)
	return p
}

// Parse decodes the body. Bodies starting with '{' are JSON objects,
// anything else is form-encoded. Repeated calls return the first result.
func (p *RequestBodyParser) Parse() error {
	if p.parsed || p.err != nil {
		p.parsed = true
		return p.err
	}
	p.parsed = true

	trimmed := strings.TrimSpace(string(p.body))
	if strings.HasPrefix(trimmed, "{") {
		p.values = map[string]any{}
		p.err = json.Unmarshal([]byte(trimmed), &p.values)
		return p.err
	}
	p.form, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns the trimmed value of key with control characters removed.
func (p *RequestBodyParser) Get(key string) string {
	var v string
	switch {
	case p.values != nil:
		v = stringValue(p.values[key])
	case p.form != nil:
		v = p.form.Get(key)
	}
	return sanitizeInput(v)
}

// IsJSON reports whether the body was a JSON object.
func (p *RequestBodyParser) IsJSON() bool {
	return p.values != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}
