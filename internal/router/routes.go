package router

import "shopsim/internal/handlers"

// buildRoutes lays out the ordered handler table. Matching is first wins,
// so sub-resource routes sit above their parent's wildcard forms.
func buildRoutes(d *handlers.Deps) []route {
	table := []struct {
		method  string
		pattern string
		fn      HandlerFunc
	}{
		{"POST", "/auth/login", d.Auth.Login},
		{"POST", "/auth/register", d.Auth.Register},

		{"GET", "/users/:userId/orders", d.Order.ListByUser},
		{"GET", "/users/:userId/cart", d.Cart.Get},
		{"POST", "/users/:userId/cart/items", d.Cart.AddItem},
		{"DELETE", "/users/:userId/cart/items/:productId", d.Cart.RemoveItem},
		{"DELETE", "/users/:userId/cart", d.Cart.Clear},
		{"GET", "/users/:userId/addresses", d.Address.List},
		{"POST", "/users/:userId/addresses", d.Address.Create},
		{"PUT", "/users/:userId/addresses/:id", d.Address.Update},
		{"DELETE", "/users/:userId/addresses/:id", d.Address.Delete},
		{"GET", "/users/:userId/payment-methods", d.Payment.List},
		{"POST", "/users/:userId/payment-methods", d.Payment.Create},
		{"PUT", "/users/:userId/payment-methods/:id", d.Payment.Update},
		{"DELETE", "/users/:userId/payment-methods/:id", d.Payment.Delete},

		{"GET", "/users", d.User.List},
		{"GET", "/users/:id", d.User.Get},
		{"PUT", "/users/:id", d.User.Update},
		{"DELETE", "/users/:id", d.User.Delete},

		{"GET", "/categories", d.Category.List},
		{"POST", "/categories", d.Category.Create},
		{"GET", "/categories/:id", d.Category.Get},
		{"PUT", "/categories/:id", d.Category.Update},
		{"DELETE", "/categories/:id", d.Category.Delete},

		{"GET", "/products", d.Product.List},
		{"POST", "/products", d.Product.Create},
		{"GET", "/products/:id", d.Product.Get},
		{"PUT", "/products/:id", d.Product.Update},
		{"DELETE", "/products/:id", d.Product.Delete},

		{"GET", "/orders", d.Order.List},
		{"POST", "/orders", d.Order.Create},
		{"GET", "/orders/:id", d.Order.Get},
		{"PUT", "/orders/:id/status", d.Order.UpdateStatus},
		{"POST", "/orders/:id/comments", d.Order.AddComment},
		{"GET", "/orders/:id/timeline", d.Order.Timeline},

		{"POST", "/files", d.File.Upload},
		{"GET", "/files/:id", d.File.Get},
	}

	routes := make([]route, len(table))
	for i, e := range table {
		routes[i] = route{method: e.method, segs: splitPath(e.pattern), fn: e.fn}
	}
	return routes
}
