package handlers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"shopsim/internal/domain"
	"shopsim/internal/handlers"
	"shopsim/internal/simerr"
)

func seedCatalog(t *testing.T, d *handlers.Deps) (categoryID, productID string) {
	t.Helper()
	ctx := context.Background()
	resp, err := d.Category.Create(ctx, req(nil, map[string]any{
		"name": "Electronics", "description": "desc",
	}))
	if err != nil {
		t.Fatal(err)
	}
	categoryID = decodeBody[domain.Category](t, resp).ID

	presp, err := d.Product.Create(ctx, req(nil, map[string]any{
		"categoryId": categoryID, "name": "Headphones", "price": 79.99, "stock": 5,
	}))
	if err != nil {
		t.Fatal(err)
	}
	return categoryID, decodeBody[domain.Product](t, presp).ID
}

func placeOrder(t *testing.T, d *handlers.Deps, userID, productID string, qty int) domain.Order {
	t.Helper()
	resp, err := d.Order.Create(context.Background(), req(nil, map[string]any{
		"userId": userID,
		"items":  []map[string]any{{"productId": productID, "quantity": qty}},
		"deliveryAddress": map[string]any{
			"recipient": "Alice", "phone": "555-0101", "line1": "1 Demo Way",
			"city": "Springfield", "postalCode": "12345",
		},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != 201 {
		t.Fatalf("want 201, got %d", resp.Status)
	}
	return decodeBody[domain.Order](t, resp)
}

func TestUpdateStatusSameStatusIdempotent(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, pid := seedCatalog(t, d)
	o := placeOrder(t, d, "u1", pid, 1)

	resp, err := d.Order.UpdateStatus(context.Background(), req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusPendingPayment, "actor": "admin",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != 200 {
		t.Fatalf("want 200, got %d", resp.Status)
	}
	got := decodeBody[domain.Order](t, resp)
	if got.Status != domain.StatusPendingPayment {
		t.Fatalf("status changed: %s", got.Status)
	}
	if len(got.StatusHistory) != len(o.StatusHistory) {
		t.Fatalf("same-status update appended history: %d -> %d",
			len(o.StatusHistory), len(got.StatusHistory))
	}
}

func TestUpdateStatusAppendsOneEntry(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, pid := seedCatalog(t, d)
	o := placeOrder(t, d, "u1", pid, 1)

	resp, err := d.Order.UpdateStatus(context.Background(), req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusPaid, "actor": "u-admin",
	}))
	if err != nil {
		t.Fatal(err)
	}
	got := decodeBody[domain.Order](t, resp)
	if got.Status != domain.StatusPaid {
		t.Fatalf("want paid, got %s", got.Status)
	}
	if len(got.StatusHistory) != len(o.StatusHistory)+1 {
		t.Fatalf("want exactly one new history entry, got %d -> %d",
			len(o.StatusHistory), len(got.StatusHistory))
	}
	last := got.StatusHistory[len(got.StatusHistory)-1]
	prev := got.StatusHistory[len(got.StatusHistory)-2]
	if last.FromStatus != domain.StatusPendingPayment || last.ToStatus != domain.StatusPaid {
		t.Fatalf("bad entry: %+v", last)
	}
	if last.Actor != "u-admin" {
		t.Fatalf("bad actor: %q", last.Actor)
	}
	if last.Timestamp.Before(prev.Timestamp) {
		t.Fatal("history timestamps must be non-decreasing")
	}
	if got.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("paid status should mark payment paid, got %s", got.PaymentStatus)
	}
}

func TestUpdateStatusFreeTransitionAllowed(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, pid := seedCatalog(t, d)
	o := placeOrder(t, d, "u1", pid, 1)

	// non-adjacent jump succeeds in the default (free) mode
	resp, err := d.Order.UpdateStatus(context.Background(), req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusDelivered, "actor": "admin",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if decodeBody[domain.Order](t, resp).Status != domain.StatusDelivered {
		t.Fatal("free mode should allow non-adjacent transitions")
	}
}

func TestUpdateStatusStrictMode(t *testing.T) {
	d := testDeps(t, handlers.Options{StrictTransitions: true})
	_, pid := seedCatalog(t, d)
	o := placeOrder(t, d, "u1", pid, 1)
	ctx := context.Background()

	_, err := d.Order.UpdateStatus(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusDelivered, "actor": "admin",
	}))
	var ve *simerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("strict mode should reject a jump, got %v", err)
	}

	// the adjacent step still works, as does cancellation
	if _, err := d.Order.UpdateStatus(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusPaid, "actor": "admin",
	})); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Order.UpdateStatus(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusCancelled, "actor": "admin",
	})); err != nil {
		t.Fatal(err)
	}
}

func TestUpdateStatusTerminal(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, pid := seedCatalog(t, d)
	o := placeOrder(t, d, "u1", pid, 1)
	ctx := context.Background()

	if _, err := d.Order.UpdateStatus(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusCancelled, "actor": "admin",
	})); err != nil {
		t.Fatal(err)
	}
	_, err := d.Order.UpdateStatus(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusPaid, "actor": "admin",
	}))
	var ve *simerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("terminal order should reject moves, got %v", err)
	}

	// same-status on a terminal order stays an idempotent success
	resp, err := d.Order.UpdateStatus(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusCancelled, "actor": "admin",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != 200 {
		t.Fatalf("idempotent terminal no-op failed: %d", resp.Status)
	}
}

func TestUpdateStatusUnknownAndMissing(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, pid := seedCatalog(t, d)
	o := placeOrder(t, d, "u1", pid, 1)
	ctx := context.Background()

	_, err := d.Order.UpdateStatus(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"status": "teleported", "actor": "admin",
	}))
	var ve *simerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("unknown status should 400, got %v", err)
	}

	_, err = d.Order.UpdateStatus(ctx, req(map[string]string{"id": "missing"}, map[string]any{
		"status": domain.StatusPaid,
	}))
	var nf *simerr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("missing order should 404, got %v", err)
	}
}

func TestOrderPriceSnapshotImmutable(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, pid := seedCatalog(t, d)
	o := placeOrder(t, d, "u1", pid, 2)
	ctx := context.Background()

	if o.Items[0].Price != 79.99 || o.Total != 159.98 {
		t.Fatalf("bad snapshot: price=%v total=%v", o.Items[0].Price, o.Total)
	}

	// raising the product price must not touch the existing order
	if _, err := d.Product.Update(ctx, req(map[string]string{"id": pid}, map[string]any{
		"price": 199.99,
	})); err != nil {
		t.Fatal(err)
	}
	resp, err := d.Order.Get(ctx, req(map[string]string{"id": o.ID}, nil))
	if err != nil {
		t.Fatal(err)
	}
	got := decodeBody[domain.Order](t, resp)
	if got.Items[0].Price != 79.99 || got.Total != 159.98 {
		t.Fatalf("price change leaked into order: %+v", got.Items[0])
	}
}

func TestOrderCreateValidation(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	ctx := context.Background()

	var ve *simerr.ValidationError
	_, err := d.Order.Create(ctx, req(nil, map[string]any{"userId": "u1", "items": []any{}}))
	if !errors.As(err, &ve) {
		t.Fatalf("empty items should 400, got %v", err)
	}
	_, err = d.Order.Create(ctx, req(nil, map[string]any{
		"userId": "u1",
		"items":  []map[string]any{{"productId": "ghost", "quantity": 1}},
	}))
	if !errors.As(err, &ve) {
		t.Fatalf("unknown product should 400, got %v", err)
	}
}

type timelineRow struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	ToStatus  string    `json:"toStatus"`
	Text      string    `json:"text"`
}

func TestCommentsAndTimeline(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, pid := seedCatalog(t, d)
	o := placeOrder(t, d, "u1", pid, 1)
	ctx := context.Background()

	if _, err := d.Order.AddComment(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"text": "packed and ready", "actor": "warehouse", "isSystem": true,
	})); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Order.UpdateStatus(ctx, req(map[string]string{"id": o.ID}, map[string]any{
		"status": domain.StatusPaid, "actor": "admin",
	})); err != nil {
		t.Fatal(err)
	}

	var ve *simerr.ValidationError
	_, err := d.Order.AddComment(ctx, req(map[string]string{"id": o.ID}, map[string]any{"text": ""}))
	if !errors.As(err, &ve) {
		t.Fatalf("empty comment should 400, got %v", err)
	}

	resp, err := d.Order.Timeline(ctx, req(map[string]string{"id": o.ID}, nil))
	if err != nil {
		t.Fatal(err)
	}
	// three rows: creation entry, comment, paid transition — newest first
	rows := decodeBody[[]timelineRow](t, resp)
	if len(rows) != 3 {
		t.Fatalf("want 3 timeline entries, got %d", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].Timestamp.Before(rows[i].Timestamp) {
			t.Fatal("timeline must be descending by timestamp")
		}
	}
}
