package handlers_test

import (
	"context"
	"errors"
	"testing"

	"shopsim/internal/domain"
	"shopsim/internal/handlers"
	"shopsim/internal/simerr"
)

func addAddress(t *testing.T, d *handlers.Deps, userID string, body map[string]any) (*handlers.Response, domain.Address) {
	t.Helper()
	resp, err := d.Address.Create(context.Background(), req(map[string]string{"userId": userID}, body))
	if err != nil {
		t.Fatal(err)
	}
	return resp, decodeBody[domain.Address](t, resp)
}

func defaultCount(t *testing.T, d *handlers.Deps, userID string) (total, defaults int) {
	t.Helper()
	resp, err := d.Address.List(context.Background(), req(map[string]string{"userId": userID}, nil))
	if err != nil {
		t.Fatal(err)
	}
	addrs := decodeBody[[]domain.Address](t, resp)
	for _, a := range addrs {
		if a.IsDefault {
			defaults++
		}
	}
	return len(addrs), defaults
}

func home(extra map[string]any) map[string]any {
	body := map[string]any{
		"recipient": "Alice", "phone": "555-0101", "line1": "1 Demo Way",
		"city": "Springfield", "postalCode": "12345",
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestFirstAddressBecomesDefault(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	resp, a := addAddress(t, d, "u1", home(nil))
	if resp.Status != 201 {
		t.Fatalf("want 201, got %d", resp.Status)
	}
	if !a.IsDefault {
		t.Fatal("first address must become default")
	}
}

func TestDuplicateAddressReturnsExisting(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, first := addAddress(t, d, "u1", home(nil))

	// identical fields modulo case and whitespace
	resp, dup := addAddress(t, d, "u1", map[string]any{
		"recipient": "  alice ", "phone": "555-0101", "line1": "1 DEMO WAY",
		"city": "springfield", "postalCode": "12345", "label": "Home",
	})
	if resp.Status != 200 {
		t.Fatalf("duplicate create should return 200, got %d", resp.Status)
	}
	if dup.ID != first.ID {
		t.Fatalf("duplicate create should return the existing id: %s vs %s", dup.ID, first.ID)
	}
	if dup.Label != "Home" {
		t.Fatalf("duplicate create should merge label, got %q", dup.Label)
	}
	if total, _ := defaultCount(t, d, "u1"); total != 1 {
		t.Fatalf("address count changed: %d", total)
	}
}

func TestDefaultInvariantAcrossSequence(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	ctx := context.Background()

	_, a1 := addAddress(t, d, "u1", home(nil))
	_, a2 := addAddress(t, d, "u1", home(map[string]any{"line1": "2 Other St", "isDefault": true}))
	_, a3 := addAddress(t, d, "u1", home(map[string]any{"line1": "3 Third Rd"}))

	if total, defaults := defaultCount(t, d, "u1"); total != 3 || defaults != 1 {
		t.Fatalf("after creates: total=%d defaults=%d", total, defaults)
	}

	// flip default to a3 via update
	if _, err := d.Address.Update(ctx, req(map[string]string{"userId": "u1", "id": a3.ID},
		map[string]any{"isDefault": true})); err != nil {
		t.Fatal(err)
	}
	if _, defaults := defaultCount(t, d, "u1"); defaults != 1 {
		t.Fatalf("after update: defaults=%d", defaults)
	}

	// deleting the default promotes a sibling
	if _, err := d.Address.Delete(ctx, req(map[string]string{"userId": "u1", "id": a3.ID}, nil)); err != nil {
		t.Fatal(err)
	}
	if total, defaults := defaultCount(t, d, "u1"); total != 2 || defaults != 1 {
		t.Fatalf("after delete: total=%d defaults=%d", total, defaults)
	}

	// delete down to one, which must remain default and undeletable
	for _, id := range []string{a1.ID, a2.ID} {
		resp, err := d.Address.List(ctx, req(map[string]string{"userId": "u1"}, nil))
		if err != nil {
			t.Fatal(err)
		}
		left := decodeBody[[]domain.Address](t, resp)
		if len(left) == 1 {
			break
		}
		if _, err := d.Address.Delete(ctx, req(map[string]string{"userId": "u1", "id": id}, nil)); err != nil {
			t.Fatal(err)
		}
	}
	total, defaults := defaultCount(t, d, "u1")
	if total != 1 || defaults != 1 {
		t.Fatalf("after deletes: total=%d defaults=%d", total, defaults)
	}
}

func TestDeleteSoleDefaultRefused(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	_, a := addAddress(t, d, "u1", home(nil))

	_, err := d.Address.Delete(context.Background(), req(map[string]string{"userId": "u1", "id": a.ID}, nil))
	var ve *simerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("deleting the sole default should 400, got %v", err)
	}
	if total, _ := defaultCount(t, d, "u1"); total != 1 {
		t.Fatalf("address was deleted anyway: total=%d", total)
	}
}

func TestUnsetDefaultPromotesSibling(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	ctx := context.Background()
	_, a1 := addAddress(t, d, "u1", home(nil))
	addAddress(t, d, "u1", home(map[string]any{"line1": "2 Other St"}))

	if _, err := d.Address.Update(ctx, req(map[string]string{"userId": "u1", "id": a1.ID},
		map[string]any{"isDefault": false})); err != nil {
		t.Fatal(err)
	}
	if _, defaults := defaultCount(t, d, "u1"); defaults != 1 {
		t.Fatalf("unsetting default left %d defaults", defaults)
	}
}

func TestAddressValidationAndScoping(t *testing.T) {
	d := testDeps(t, handlers.Options{})
	ctx := context.Background()

	_, err := d.Address.Create(ctx, req(map[string]string{"userId": "u1"},
		map[string]any{"recipient": "Alice"}))
	var ve *simerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("missing fields should 400, got %v", err)
	}

	// another user's address id is not visible
	_, a := addAddress(t, d, "u1", home(nil))
	_, err = d.Address.Update(ctx, req(map[string]string{"userId": "u2", "id": a.ID},
		map[string]any{"label": "x"}))
	var nf *simerr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("cross-user access should 404, got %v", err)
	}
}
