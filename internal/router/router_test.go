package router_test

import (
	"context"
	"testing"
	"time"

	"shopsim/internal/domain"
	"shopsim/internal/handlers"
	"shopsim/internal/repos"
	"shopsim/internal/router"
	"shopsim/internal/store"
)

func memdeps(t *testing.T) (*handlers.Deps, *store.Store) {
	t.Helper()
	s, err := store.OpenOrCreate(":memory:", repos.Schema())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return handlers.NewDeps(s, handlers.Options{}), s
}

// countingSeeder seeds one admin and remembers how often it ran.
type countingSeeder struct {
	users *repos.UserRepo
	runs  int
}

func (c *countingSeeder) Seed(ctx context.Context) error {
	c.runs++
	return c.users.Create(ctx, &domain.User{
		ID: "u-admin", Email: "admin@shop.test", Password: "pw", Role: domain.RoleAdmin,
	})
}

func TestUnregisteredRoutesAre404(t *testing.T) {
	deps, _ := memdeps(t)
	rt := router.New(deps, router.Options{})
	ctx := context.Background()

	for _, tc := range []struct{ method, path string }{
		{"GET", "/nope"},
		{"PATCH", "/categories"},
		{"DELETE", "/categories"},
		{"GET", "/users/u1/wishlist"},
		{"POST", "/orders/o1/status"},
		{"GET", "/"},
	} {
		resp := rt.Route(ctx, tc.method, tc.path, nil, nil)
		if resp.Status != 404 {
			t.Fatalf("%s %s: want 404, got %d", tc.method, tc.path, resp.Status)
		}
	}
}

func TestRegisteredRouteDispatch(t *testing.T) {
	deps, _ := memdeps(t)
	rt := router.New(deps, router.Options{})
	ctx := context.Background()

	resp := rt.Route(ctx, "POST", "/categories", map[string]any{"name": "Books"}, nil)
	if resp.Status != 201 {
		t.Fatalf("create: want 201, got %d (%v)", resp.Status, resp.Body)
	}
	resp = rt.Route(ctx, "GET", "/categories", nil, nil)
	if resp.Status != 200 {
		t.Fatalf("list: want 200, got %d", resp.Status)
	}
	// path parameter binding
	resp = rt.Route(ctx, "GET", "/categories/ghost", nil, nil)
	if resp.Status != 404 {
		t.Fatalf("missing id: want 404, got %d", resp.Status)
	}
}

func TestErrorTaxonomyMapping(t *testing.T) {
	deps, _ := memdeps(t)
	rt := router.New(deps, router.Options{})
	ctx := context.Background()

	// 400: validation
	if resp := rt.Route(ctx, "POST", "/categories", map[string]any{"description": "x"}, nil); resp.Status != 400 {
		t.Fatalf("want 400, got %d", resp.Status)
	}
	// 401: auth, generic message
	resp := rt.Route(ctx, "POST", "/auth/login", map[string]any{"email": "a@b.c", "password": "x"}, nil)
	if resp.Status != 401 {
		t.Fatalf("want 401, got %d", resp.Status)
	}
	// 404: not found
	if resp := rt.Route(ctx, "GET", "/orders/ghost", nil, nil); resp.Status != 404 {
		t.Fatalf("want 404, got %d", resp.Status)
	}

	// a failed request leaves the router usable
	if resp := rt.Route(ctx, "GET", "/categories", nil, nil); resp.Status != 200 {
		t.Fatalf("router state corrupted after errors: %d", resp.Status)
	}
}

func TestStoreFailureBecomes500(t *testing.T) {
	deps, s := memdeps(t)
	rt := router.New(deps, router.Options{})
	ctx := context.Background()

	if resp := rt.Route(ctx, "GET", "/categories", nil, nil); resp.Status != 200 {
		t.Fatalf("warmup failed: %d", resp.Status)
	}
	_ = s.Close()
	resp := rt.Route(ctx, "GET", "/categories", nil, nil)
	if resp.Status != 500 {
		t.Fatalf("want 500 after store failure, got %d", resp.Status)
	}
	if body, ok := resp.Body.(map[string]any); !ok || body["error"] != "internal error" {
		t.Fatalf("store failure must surface a generic message, got %v", resp.Body)
	}
}

func TestBootstrapSeedsEmptyStore(t *testing.T) {
	deps, s := memdeps(t)
	seeder := &countingSeeder{users: repos.NewUserRepo(s)}
	rt := router.New(deps, router.Options{Seeder: seeder})
	ctx := context.Background()

	rt.Route(ctx, "GET", "/users", nil, nil)
	rt.Route(ctx, "GET", "/users", nil, nil)
	if seeder.runs != 1 {
		t.Fatalf("seeder should run exactly once, ran %d times", seeder.runs)
	}
	if n, _ := deps.Users.Count(ctx); n != 1 {
		t.Fatalf("want 1 seeded user, got %d", n)
	}
}

func TestBootstrapSkipsWhenAdminExists(t *testing.T) {
	deps, s := memdeps(t)
	users := repos.NewUserRepo(s)
	ctx := context.Background()
	if err := users.Create(ctx, &domain.User{ID: "u-admin", Email: "a@b.c", Role: domain.RoleAdmin}); err != nil {
		t.Fatal(err)
	}

	seeder := &countingSeeder{users: users}
	rt := router.New(deps, router.Options{Seeder: seeder})
	rt.Route(ctx, "GET", "/users", nil, nil)
	if seeder.runs != 0 {
		t.Fatalf("seeder must not run when an admin exists, ran %d times", seeder.runs)
	}
}

func TestBootstrapToleratesPartialSeed(t *testing.T) {
	deps, s := memdeps(t)
	users := repos.NewUserRepo(s)
	ctx := context.Background()
	// a prior partial seed left plain users but no admin
	if err := users.Create(ctx, &domain.User{ID: "u-alice", Email: "alice@b.c", Role: domain.RoleUser}); err != nil {
		t.Fatal(err)
	}

	seeder := &countingSeeder{users: users}
	rt := router.New(deps, router.Options{Seeder: seeder})
	rt.Route(ctx, "GET", "/users", nil, nil)
	if seeder.runs != 1 {
		t.Fatalf("partial seed should be completed, seeder ran %d times", seeder.runs)
	}
}

func TestLatencyInjection(t *testing.T) {
	deps, _ := memdeps(t)
	rt := router.New(deps, router.Options{MinLatency: 20 * time.Millisecond, MaxLatency: 40 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	resp := rt.Route(ctx, "GET", "/categories", nil, nil)
	elapsed := time.Since(start)
	if resp.Status != 200 {
		t.Fatalf("want 200, got %d", resp.Status)
	}
	if elapsed < 20*time.Millisecond {
		t.Fatalf("latency not injected: %v", elapsed)
	}

	// unmatched paths skip the delay
	start = time.Now()
	rt.Route(ctx, "GET", "/nope", nil, nil)
	if time.Since(start) > 15*time.Millisecond {
		t.Fatal("404 should not pay the latency tax")
	}

	stats := rt.Stats()
	if stats.Count != 2 {
		t.Fatalf("want 2 recorded requests, got %d", stats.Count)
	}
	if stats.Max < 20 {
		t.Fatalf("histogram should have seen the injected delay, max=%dms", stats.Max)
	}
}
