package handlers

import (
	"encoding/json"

	"shopsim/internal/simerr"
)

// Request is the envelope consumers hand to the router. Body may be raw JSON
// bytes or any value that marshals to the handler's payload shape.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
	Params map[string]string // path parameters, filled by the router
}

func (r *Request) Param(name string) string { return r.Params[name] }

func (r *Request) QueryParam(name string) string {
	if r.Query == nil {
		return ""
	}
	return r.Query[name]
}

// Bind decodes the request body into dst, tolerating both raw JSON and
// already-typed values.
func (r *Request) Bind(dst any) error {
	var raw []byte
	switch b := r.Body.(type) {
	case nil:
		return simerr.Validation("request body is required")
	case json.RawMessage:
		raw = b
	case []byte:
		raw = b
	case string:
		raw = []byte(b)
	default:
		var err error
		raw, err = json.Marshal(b)
		if err != nil {
			return simerr.Validation("malformed request body")
		}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return simerr.Validation("malformed request body")
	}
	return nil
}

// Response is the {status, body} envelope every handler result is normalized
// into.
type Response struct {
	Status int `json:"status"`
	Body   any `json:"body,omitempty"`
}

func OK(body any) *Response { return &Response{Status: 200, Body: body} }

func Created(body any) *Response { return &Response{Status: 201, Body: body} }

func NoContent() *Response { return &Response{Status: 204} }
