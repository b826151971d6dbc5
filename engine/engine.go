package engine

import (
	"context"
	"net/http"
	"time"
)

// Engine is the HTTP transport capability the fetcher depends on. Any
// client that can issue a GET and hand back status, headers and body
// satisfies it.
type Engine interface {
	// Name returns the engine identifier (e.g. "http").
	Name() string

	// Fetch issues one GET for the request. A non-2xx status is not an
	// error; only failures before a response is received are.
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a resource.
type FetchRequest struct {
	URL     string
	Headers map[string]string
	Timeout time.Duration
}

// FetchResult is the output of an engine fetch.
type FetchResult struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   string
	EngineName string
}
