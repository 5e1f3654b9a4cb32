package repos

import (
	"context"

	"shopsim/internal/domain"
	"shopsim/internal/store"
)

type AddressRepo struct{ Collection[domain.Address] }

func NewAddressRepo(s *store.Store) *AddressRepo {
	return &AddressRepo{Collection[domain.Address]{
		store:    s,
		name:     ColAddresses,
		resource: "address",
		key:      func(a *domain.Address) string { return a.ID },
	}}
}

func (r *AddressRepo) ByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	return r.byIndex(ctx, "user", userID)
}

type PaymentMethodRepo struct{ Collection[domain.PaymentMethod] }

func NewPaymentMethodRepo(s *store.Store) *PaymentMethodRepo {
	return &PaymentMethodRepo{Collection[domain.PaymentMethod]{
		store:    s,
		name:     ColPaymentMethods,
		resource: "payment method",
		key:      func(p *domain.PaymentMethod) string { return p.ID },
	}}
}

func (r *PaymentMethodRepo) ByUser(ctx context.Context, userID string) ([]domain.PaymentMethod, error) {
	return r.byIndex(ctx, "user", userID)
}
