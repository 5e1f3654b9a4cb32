package handlers_test

import (
	"context"
	"errors"
	"testing"

	"shopsim/internal/domain"
	"shopsim/internal/handlers"
	"shopsim/internal/simerr"
)

func TestCartAddAccumulates(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, pid := seedCatalog(t, d)
	ctx := context.Background()

	if _, err := d.Cart.AddItem(ctx, req(map[string]string{"userId": "u1"},
		map[string]any{"productId": pid, "quantity": 2})); err != nil {
		t.Fatal(err)
	}
	resp, err := d.Cart.AddItem(ctx, req(map[string]string{"userId": "u1"},
		map[string]any{"productId": pid, "quantity": 3}))
	if err != nil {
		t.Fatal(err)
	}
	c := decodeBody[domain.Cart](t, resp)
	if len(c.Items) != 1 {
		t.Fatalf("repeated adds must keep one line, got %d", len(c.Items))
	}
	if c.Items[0].ProductID != pid || c.Items[0].Quantity != 5 {
		t.Fatalf("want quantity 5, got %+v", c.Items[0])
	}
}

func TestCartGetEmptyWhenAbsent(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	resp, err := d.Cart.Get(context.Background(), req(map[string]string{"userId": "nobody"}, nil))
	if err != nil {
		t.Fatal(err)
	}
	c := decodeBody[domain.Cart](t, resp)
	if c.UserID != "nobody" || len(c.Items) != 0 {
		t.Fatalf("want empty cart, got %+v", c)
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	cid, pid := seedCatalog(t, d)
	ctx := context.Background()

	presp, err := d.Product.Create(ctx, req(nil, map[string]any{
		"categoryId": cid, "name": "Speaker", "price": 39.50,
	}))
	if err != nil {
		t.Fatal(err)
	}
	pid2 := decodeBody[domain.Product](t, presp).ID

	for _, p := range []string{pid, pid2} {
		if _, err := d.Cart.AddItem(ctx, req(map[string]string{"userId": "u1"},
			map[string]any{"productId": p, "quantity": 1})); err != nil {
			t.Fatal(err)
		}
	}
	resp, err := d.Cart.RemoveItem(ctx, req(map[string]string{"userId": "u1", "productId": pid}, nil))
	if err != nil {
		t.Fatal(err)
	}
	c := decodeBody[domain.Cart](t, resp)
	if len(c.Items) != 1 || c.Items[0].ProductID != pid2 {
		t.Fatalf("remove left wrong items: %+v", c.Items)
	}

	if _, err := d.Cart.Clear(ctx, req(map[string]string{"userId": "u1"}, nil)); err != nil {
		t.Fatal(err)
	}
	resp, _ = d.Cart.Get(ctx, req(map[string]string{"userId": "u1"}, nil))
	if c := decodeBody[domain.Cart](t, resp); len(c.Items) != 0 {
		t.Fatalf("clear left items: %+v", c.Items)
	}
}

func TestCartUnknownProduct(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, err := d.Cart.AddItem(context.Background(), req(map[string]string{"userId": "u1"},
		map[string]any{"productId": "ghost", "quantity": 1}))
	var ve *simerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("unknown product should 400, got %v", err)
	}
}
