package handlers

import (
	"context"
	"time"

	"shopsim/internal/domain"
	"shopsim/internal/repos"
	"shopsim/internal/simerr"
	"shopsim/internal/validate"
)

type CartHandler struct {
	Carts    *repos.CartRepo
	Products *repos.ProductRepo
}

// Get returns the user's cart, or an empty one when none exists yet.
func (h *CartHandler) Get(ctx context.Context, req *Request) (*Response, error) {
	userID := req.Param("userId")
	c, err := h.Carts.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &domain.Cart{UserID: userID, Items: []domain.CartItem{}}
	}
	return OK(c), nil
}

type addItemReq struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// AddItem creates the cart on first use. Repeated adds of the same product
// accumulate quantity on the one existing line. Stock is not checked here.
func (h *CartHandler) AddItem(ctx context.Context, req *Request) (*Response, error) {
	var in addItemReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if in.ProductID == "" {
		return nil, simerr.Validation("productId is required")
	}
	p, err := h.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, simerr.Validation("unknown product %q", in.ProductID)
	}
	qty := validate.Qty(in.Quantity)

	userID := req.Param("userId")
	c, err := h.Carts.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &domain.Cart{UserID: userID}
	}
	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == in.ProductID {
			c.Items[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		c.Items = append(c.Items, domain.CartItem{ProductID: in.ProductID, Quantity: qty})
	}
	c.UpdatedAt = time.Now()
	if err := h.Carts.UpdateFull(ctx, c); err != nil {
		return nil, err
	}
	return OK(c), nil
}

// RemoveItem filters the line out; removing an absent line is a no-op.
func (h *CartHandler) RemoveItem(ctx context.Context, req *Request) (*Response, error) {
	userID := req.Param("userId")
	productID := req.Param("productId")
	c, err := h.Carts.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, simerr.NotFound("cart", userID)
	}
	items := c.Items[:0]
	for _, it := range c.Items {
		if it.ProductID != productID {
			items = append(items, it)
		}
	}
	c.Items = items
	c.UpdatedAt = time.Now()
	if err := h.Carts.UpdateFull(ctx, c); err != nil {
		return nil, err
	}
	return OK(c), nil
}

// Clear empties the cart; the checkout flow calls this after order creation.
func (h *CartHandler) Clear(ctx context.Context, req *Request) (*Response, error) {
	userID := req.Param("userId")
	c, err := h.Carts.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return NoContent(), nil
	}
	c.Items = []domain.CartItem{}
	c.UpdatedAt = time.Now()
	if err := h.Carts.UpdateFull(ctx, c); err != nil {
		return nil, err
	}
	return NoContent(), nil
}
