package repos

import (
	"context"

	"shopsim/internal/domain"
	"shopsim/internal/store"
)

// CartRepo stores carts keyed by the owning user id: one cart per user.
type CartRepo struct{ Collection[domain.Cart] }

func NewCartRepo(s *store.Store) *CartRepo {
	return &CartRepo{Collection[domain.Cart]{
		store:    s,
		name:     ColCarts,
		resource: "cart",
		key:      func(c *domain.Cart) string { return c.UserID },
	}}
}

// ByUser is the primary-key lookup under a finder name, for symmetry with
// the other per-user repos.
func (r *CartRepo) ByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	return r.GetByID(ctx, userID)
}
