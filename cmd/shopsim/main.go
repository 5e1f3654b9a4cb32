package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"

	"shopsim/internal/config"
	"shopsim/internal/handlers"
	"shopsim/internal/repos"
	"shopsim/internal/router"
	"shopsim/internal/seed"
)

type step struct {
	name   string
	method string
	path   string
	body   any
	query  map[string]string
}

func main() {
	cfgPath := flag.String("config", "shopsim.yaml", "path to yaml config")
	verbose := flag.Bool("v", false, "dump full response envelopes")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	st, err := repos.Open(cfg.StoreDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()

	deps := handlers.NewDeps(st, handlers.Options{StrictTransitions: cfg.Orders.StrictTransitions})
	opts := router.Options{
		MinLatency: time.Duration(cfg.LatencyMinMs) * time.Millisecond,
		MaxLatency: time.Duration(cfg.LatencyMaxMs) * time.Millisecond,
	}
	if cfg.Seed {
		opts.Seeder = seed.New(st)
	}
	rt := router.New(deps, opts)

	ctx := context.Background()
	var orderID string
	for _, s := range demoSession() {
		resp := rt.Route(ctx, s.method, s.path, s.body, s.query)
		fmt.Printf("%-28s %-6s %-40s -> %d\n", s.name, s.method, s.path, resp.Status)
		if *verbose {
			fmt.Print(spew.Sdump(resp))
		}
		if s.name == "place order" && resp.Status == 201 {
			orderID = extractID(resp.Body)
		}
	}

	if orderID != "" {
		for _, status := range []string{"paid", "warehouse", "courier_pickup", "in_transit", "delivered"} {
			resp := rt.Route(ctx, "PUT", "/orders/"+orderID+"/status",
				map[string]any{"status": status, "actor": "u-admin"}, nil)
			fmt.Printf("%-28s %-6s %-40s -> %d\n", "status "+status, "PUT", "/orders/"+orderID+"/status", resp.Status)
		}
		resp := rt.Route(ctx, "GET", "/orders/"+orderID+"/timeline", nil, nil)
		fmt.Printf("%-28s %-6s %-40s -> %d\n", "timeline", "GET", "/orders/"+orderID+"/timeline", resp.Status)
		if *verbose {
			fmt.Print(spew.Sdump(resp.Body))
		}
	}

	stats := rt.Stats()
	fmt.Printf("\nlatency: n=%d p50=%dms p95=%dms p99=%dms max=%dms\n",
		stats.Count, stats.P50, stats.P95, stats.P99, stats.Max)
}

func demoSession() []step {
	return []step{
		{"login admin", "POST", "/auth/login", map[string]any{"email": "admin@shopsim.test", "password": "admin123"}, nil},
		{"login bad password", "POST", "/auth/login", map[string]any{"email": "admin@shopsim.test", "password": "nope"}, nil},
		{"list categories", "GET", "/categories", nil, nil},
		{"search products", "GET", "/products", nil, map[string]string{"search": "headphones"}},
		{"add to cart", "POST", "/users/u-alice/cart/items", map[string]any{"productId": "p-headphones", "quantity": 2}, nil},
		{"add same again", "POST", "/users/u-alice/cart/items", map[string]any{"productId": "p-headphones", "quantity": 1}, nil},
		{"view cart", "GET", "/users/u-alice/cart", nil, nil},
		{"save address", "POST", "/users/u-alice/addresses", map[string]any{
			"recipient": "Alice", "phone": "555-0101", "line1": "1 Demo Way",
			"city": "Springfield", "postalCode": "12345", "isDefault": true,
		}, nil},
		{"place order", "POST", "/orders", map[string]any{
			"userId": "u-alice",
			"items":  []map[string]any{{"productId": "p-headphones", "quantity": 3}},
			"deliveryAddress": map[string]any{
				"recipient": "Alice", "phone": "555-0101", "line1": "1 Demo Way",
				"city": "Springfield", "postalCode": "12345",
			},
		}, nil},
		{"clear cart", "DELETE", "/users/u-alice/cart", nil, nil},
		{"unknown route", "GET", "/nope", nil, nil},
	}
}

func extractID(body any) string {
	b, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	var v struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return ""
	}
	return v.ID
}
