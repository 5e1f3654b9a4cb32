// Package router is the sole entry point for consumers: it matches
// method+path against an ordered handler table, injects simulated network
// latency, and normalizes every handler result into a {status, body}
// envelope.
package router

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"shopsim/internal/domain"
	"shopsim/internal/handlers"
	applog "shopsim/internal/log"
	"shopsim/internal/simerr"
)

type HandlerFunc func(ctx context.Context, req *handlers.Request) (*handlers.Response, error)

type route struct {
	method string
	segs   []string // pattern segments; ":name" binds a path parameter
	fn     HandlerFunc
}

// Seeder populates an empty store with demo data. Its logic lives outside
// the router; the router only decides when to invoke it.
type Seeder interface {
	Seed(ctx context.Context) error
}

const (
	DefaultMinLatency = 300 * time.Millisecond
	DefaultMaxLatency = 800 * time.Millisecond
)

type Options struct {
	// Latency window for the simulated network delay. Zero MaxLatency
	// disables injection (used by tests).
	MinLatency time.Duration
	MaxLatency time.Duration

	// Seeder runs lazily before the first dispatch; nil disables bootstrap.
	Seeder Seeder
}

type Router struct {
	deps   *handlers.Deps
	routes []route

	minLat time.Duration
	maxLat time.Duration

	seeder   Seeder
	seedOnce sync.Once
	seedErr  error

	mu   sync.Mutex
	hist *hdrhistogram.Histogram
}

func New(deps *handlers.Deps, opts Options) *Router {
	r := &Router{
		deps:   deps,
		minLat: opts.MinLatency,
		maxLat: opts.MaxLatency,
		seeder: opts.Seeder,
		hist:   hdrhistogram.New(1, 60_000, 3), // milliseconds
	}
	r.routes = buildRoutes(deps)
	return r
}

// Route dispatches one request. It never fails: every outcome, including
// panics and unmatched paths, becomes an envelope, and a failed request
// leaves the router fully usable for the next one.
func (r *Router) Route(ctx context.Context, method, path string, body any, query map[string]string) handlers.Response {
	start := time.Now()
	resp := r.dispatch(ctx, method, path, body, query)
	elapsed := time.Since(start)

	r.mu.Lock()
	_ = r.hist.RecordValue(elapsed.Milliseconds())
	r.mu.Unlock()
	applog.Request(method, path, resp.Status, elapsed)
	return resp
}

func (r *Router) dispatch(ctx context.Context, method, path string, body any, query map[string]string) (resp handlers.Response) {
	defer func() {
		if rec := recover(); rec != nil {
			applog.Error("router.panic", nil, map[string]any{"method": method, "path": path, "panic": rec})
			resp = handlers.Response{Status: 500, Body: errBody("internal error")}
		}
	}()

	r.seedOnce.Do(func() { r.seedErr = r.bootstrap(ctx) })
	if r.seedErr != nil {
		applog.Error("router.bootstrap", r.seedErr, nil)
		return handlers.Response{Status: 500, Body: errBody("internal error")}
	}

	segs := splitPath(path)
	for _, rt := range r.routes {
		if rt.method != method {
			continue
		}
		params, ok := match(rt.segs, segs)
		if !ok {
			continue
		}
		if err := r.simulateLatency(ctx); err != nil {
			return handlers.Response{Status: 500, Body: errBody("internal error")}
		}
		req := &handlers.Request{Method: method, Path: path, Query: query, Body: body, Params: params}
		out, err := rt.fn(ctx, req)
		if err != nil {
			return errResponse(err)
		}
		return *out
	}
	return handlers.Response{Status: 404, Body: errBody("not found")}
}

// bootstrap seeds only when demo data is missing: an empty user collection,
// or a partially seeded one that lost its admin account.
func (r *Router) bootstrap(ctx context.Context) error {
	if r.seeder == nil {
		return nil
	}
	n, err := r.deps.Users.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		users, err := r.deps.Users.GetAll(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.Role == domain.RoleAdmin {
				return nil
			}
		}
	}
	applog.Info("router.seed", map[string]any{"users": n})
	return r.seeder.Seed(ctx)
}

func (r *Router) simulateLatency(ctx context.Context) error {
	if r.maxLat <= 0 {
		return nil
	}
	d := r.minLat
	if r.maxLat > r.minLat {
		d += rand.N(r.maxLat - r.minLat)
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func match(pattern, segs []string) (map[string]string, bool) {
	if len(pattern) != len(segs) {
		return nil, false
	}
	var params map[string]string
	for i, ps := range pattern {
		if strings.HasPrefix(ps, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[ps[1:]] = segs[i]
			continue
		}
		if ps != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func errBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// errResponse maps the error taxonomy onto the fixed status set. Store and
// unknown failures are logged and surfaced as a generic 500.
func errResponse(err error) handlers.Response {
	var (
		ve *simerr.ValidationError
		ae *simerr.AuthError
		ne *simerr.NotFoundError
		ce *simerr.ConflictError
		se *simerr.StoreError
	)
	switch {
	case errors.As(err, &ve):
		return handlers.Response{Status: 400, Body: errBody(ve.Msg)}
	case errors.As(err, &ae):
		return handlers.Response{Status: 401, Body: errBody(ae.Msg)}
	case errors.As(err, &ne):
		return handlers.Response{Status: 404, Body: errBody(ne.Error())}
	case errors.As(err, &ce):
		return handlers.Response{Status: 409, Body: errBody(ce.Msg)}
	case errors.As(err, &se):
		applog.Error("router.store", err, nil)
		return handlers.Response{Status: 500, Body: errBody("internal error")}
	default:
		applog.Error("router.unhandled", err, nil)
		return handlers.Response{Status: 500, Body: errBody("internal error")}
	}
}

// Stats summarizes the latency distribution of every dispatched request.
type Stats struct {
	Count int64
	P50   int64
	P95   int64
	P99   int64
	Max   int64
}

func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Stats{
		Count: r.hist.TotalCount(),
		P50:   r.hist.ValueAtQuantile(50),
		P95:   r.hist.ValueAtQuantile(95),
		P99:   r.hist.ValueAtQuantile(99),
		Max:   r.hist.Max(),
	}
}
