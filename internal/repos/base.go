package repos

import (
	"context"
	"encoding/json"
	"errors"

	"shopsim/internal/simerr"
	"shopsim/internal/store"
)

// Collection is the typed CRUD base every entity repo embeds.
type Collection[T any] struct {
	store    *store.Store
	name     string
	resource string // singular label for not-found messages
	key      func(*T) string
}

func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	raws, err := c.store.GetAll(ctx, c.name)
	if err != nil {
		return nil, simerr.Store(err)
	}
	return decodeAll[T](raws)
}

// GetByID returns (nil, nil) when the record is absent.
func (c *Collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	raw, ok, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		return nil, simerr.Store(err)
	}
	if !ok {
		return nil, nil
	}
	return decode[T](raw)
}

// Create inserts rec. A duplicate-key conflict is swallowed as a harmless
// no-op so idempotent re-seeding works; real store failures propagate.
func (c *Collection[T]) Create(ctx context.Context, rec *T) error {
	err := c.store.Put(ctx, c.name, c.key(rec), rec, store.Insert)
	if errors.Is(err, simerr.ErrConflict) {
		return nil
	}
	if err != nil {
		return simerr.Store(err)
	}
	return nil
}

// Update loads the record, applies merge to it, then replaces it in full.
// Returns NotFound when the record is absent.
func (c *Collection[T]) Update(ctx context.Context, id string, merge func(*T)) (*T, error) {
	rec, err := c.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, simerr.NotFound(c.resource, id)
	}
	merge(rec)
	if err := c.UpdateFull(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateFull replaces the record unconditionally.
func (c *Collection[T]) UpdateFull(ctx context.Context, rec *T) error {
	if err := c.store.Put(ctx, c.name, c.key(rec), rec, store.Upsert); err != nil {
		return simerr.Store(err)
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, c.name, id); err != nil {
		return simerr.Store(err)
	}
	return nil
}

func (c *Collection[T]) Count(ctx context.Context) (int, error) {
	n, err := c.store.Count(ctx, c.name)
	if err != nil {
		return 0, simerr.Store(err)
	}
	return n, nil
}

func (c *Collection[T]) byIndex(ctx context.Context, index string, value any) ([]T, error) {
	raws, err := c.store.GetByIndex(ctx, c.name, index, value)
	if err != nil {
		return nil, simerr.Store(err)
	}
	return decodeAll[T](raws)
}

func (c *Collection[T]) oneByIndex(ctx context.Context, index string, value any) (*T, error) {
	raw, ok, err := c.store.GetOneByIndex(ctx, c.name, index, value)
	if err != nil {
		return nil, simerr.Store(err)
	}
	if !ok {
		return nil, nil
	}
	return decode[T](raw)
}

func decode[T any](raw json.RawMessage) (*T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, simerr.Store(err)
	}
	return &rec, nil
}

func decodeAll[T any](raws []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		rec, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}
