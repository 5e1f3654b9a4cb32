package handlers_test

import (
	"encoding/json"
	"testing"

	"shopsim/internal/handlers"
	"shopsim/internal/repos"
	"shopsim/internal/store"
)

func testDeps(t *testing.T, opts handlers.Options) *handlers.Deps {
	t.Helper()
	s, err := store.OpenOrCreate(":memory:", repos.Schema())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return handlers.NewDeps(s, opts)
}

func req(params map[string]string, body any) *handlers.Request {
	return &handlers.Request{Params: params, Body: body}
}

func listReq(query map[string]string) *handlers.Request {
	return &handlers.Request{Query: query}
}

// decodeBody round-trips a response body through JSON into T, the same way a
// consumer reads an envelope.
func decodeBody[T any](t *testing.T, resp *handlers.Response) T {
	t.Helper()
	b, err := json.Marshal(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatal(err)
	}
	return out
}
