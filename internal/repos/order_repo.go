package repos

import (
	"context"

	"shopsim/internal/domain"
	"shopsim/internal/store"
)

type OrderRepo struct{ Collection[domain.Order] }

func NewOrderRepo(s *store.Store) *OrderRepo {
	return &OrderRepo{Collection[domain.Order]{
		store:    s,
		name:     ColOrders,
		resource: "order",
		key:      func(o *domain.Order) string { return o.ID },
	}}
}

func (r *OrderRepo) ByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.byIndex(ctx, "user", userID)
}

func (r *OrderRepo) ByStatus(ctx context.Context, status string) ([]domain.Order, error) {
	return r.byIndex(ctx, "status", status)
}
