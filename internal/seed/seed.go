// Package seed populates an empty store with demo data. Every record has a
// fixed id and goes through repo Create, whose duplicate-key no-op makes the
// whole run safe to repeat over a partially seeded store.
package seed

import (
	"context"
	"time"

	"shopsim/internal/domain"
	applog "shopsim/internal/log"
	"shopsim/internal/repos"
	"shopsim/internal/store"
)

type Demo struct {
	users      *repos.UserRepo
	categories *repos.CategoryRepo
	products   *repos.ProductRepo
}

func New(s *store.Store) *Demo {
	return &Demo{
		users:      repos.NewUserRepo(s),
		categories: repos.NewCategoryRepo(s),
		products:   repos.NewProductRepo(s),
	}
}

func (d *Demo) Seed(ctx context.Context) error {
	now := time.Now()

	users := []domain.User{
		{ID: "u-admin", Email: "admin@shopsim.test", Password: "admin123", Role: domain.RoleAdmin,
			Profile: domain.Profile{Name: "Admin"}},
		{ID: "u-manager", Email: "manager@shopsim.test", Password: "manager123", Role: domain.RoleManager,
			Profile: domain.Profile{Name: "Morgan Manager"}},
		{ID: "u-alice", Email: "alice@shopsim.test", Password: "alice123", Role: domain.RoleUser,
			Profile: domain.Profile{Name: "Alice"}},
		{ID: "u-bob", Email: "bob@shopsim.test", Password: "bob123", Role: domain.RoleUser,
			Profile: domain.Profile{Name: "Bob"}},
	}
	for i := range users {
		users[i].CreatedAt = now
		users[i].UpdatedAt = now
		if err := d.users.Create(ctx, &users[i]); err != nil {
			return err
		}
	}

	categories := []domain.Category{
		{ID: "cat-electronics", Name: "Electronics", Description: "Phones, audio and accessories"},
		{ID: "cat-books", Name: "Books", Description: "Paperbacks and hardcovers"},
		{ID: "cat-home", Name: "Home & Kitchen", Description: "Everyday household goods"},
		{ID: "cat-outdoors", Name: "Outdoors", Description: "Camping and sports gear"},
	}
	for i := range categories {
		categories[i].CreatedAt = now
		categories[i].UpdatedAt = now
		if err := d.categories.Create(ctx, &categories[i]); err != nil {
			return err
		}
	}

	products := []domain.Product{
		{ID: "p-headphones", Name: "Wireless Headphones", CategoryID: "cat-electronics",
			Description: "Over-ear, 30h battery", Price: 79.99, Stock: 25},
		{ID: "p-speaker", Name: "Bluetooth Speaker", CategoryID: "cat-electronics",
			Description: "Portable, splash resistant", Price: 39.50, Stock: 40},
		{ID: "p-novel", Name: "The Midnight Library", CategoryID: "cat-books",
			Description: "Matt Haig, paperback", Price: 12.99, Stock: 60},
		{ID: "p-kettle", Name: "Electric Kettle", CategoryID: "cat-home",
			Description: "1.7L, auto shut-off", Price: 24.00, Stock: 18},
		{ID: "p-tent", Name: "2-Person Tent", CategoryID: "cat-outdoors",
			Description: "Waterproof, 2.1kg", Price: 89.00, Stock: 7},
	}
	for i := range products {
		products[i].CreatedAt = now
		products[i].UpdatedAt = now
		if err := d.products.Create(ctx, &products[i]); err != nil {
			return err
		}
	}

	applog.Audit("seed.demo", map[string]any{
		"users":      len(users),
		"categories": len(categories),
		"products":   len(products),
	})
	return nil
}
