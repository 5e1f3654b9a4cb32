package repos

import (
	"context"

	"shopsim/internal/domain"
	"shopsim/internal/store"
)

type CategoryRepo struct{ Collection[domain.Category] }

func NewCategoryRepo(s *store.Store) *CategoryRepo {
	return &CategoryRepo{Collection[domain.Category]{
		store:    s,
		name:     ColCategories,
		resource: "category",
		key:      func(c *domain.Category) string { return c.ID },
	}}
}

type ProductRepo struct{ Collection[domain.Product] }

func NewProductRepo(s *store.Store) *ProductRepo {
	return &ProductRepo{Collection[domain.Product]{
		store:    s,
		name:     ColProducts,
		resource: "product",
		key:      func(p *domain.Product) string { return p.ID },
	}}
}

func (r *ProductRepo) ByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	return r.byIndex(ctx, "category", categoryID)
}
