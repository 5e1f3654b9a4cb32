package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shopsim/internal/domain"
	applog "shopsim/internal/log"
	"shopsim/internal/repos"
	"shopsim/internal/simerr"
	"shopsim/internal/validate"
)

type CategoryHandler struct {
	Categories *repos.CategoryRepo
	Products   *repos.ProductRepo
}

func (h *CategoryHandler) List(ctx context.Context, req *Request) (*Response, error) {
	cats, err := h.Categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	cats = searchFilter(cats, req, func(c domain.Category) []string {
		return []string{c.Name, c.Description}
	})
	return OK(paginate(cats, req)), nil
}

func (h *CategoryHandler) Get(ctx context.Context, req *Request) (*Response, error) {
	c, err := h.Categories.GetByID(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, simerr.NotFound("category", req.Param("id"))
	}
	return OK(c), nil
}

type categoryReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *CategoryHandler) Create(ctx context.Context, req *Request) (*Response, error) {
	var in categoryReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if in.Name == nil {
		return nil, simerr.Validation("name is required")
	}
	name, ok := validate.Name(*in.Name)
	if !ok {
		return nil, simerr.Validation("name is required (max 32 characters)")
	}
	desc := ""
	if in.Description != nil {
		var ok bool
		if desc, ok = validate.Description(*in.Description); !ok {
			return nil, simerr.Validation("description must be at most 128 characters")
		}
	}
	now := time.Now()
	c := domain.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.Categories.Create(ctx, &c); err != nil {
		return nil, err
	}
	return Created(c), nil
}

// Update rewrites only the supplied fields.
func (h *CategoryHandler) Update(ctx context.Context, req *Request) (*Response, error) {
	var in categoryReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	var name, desc string
	if in.Name != nil {
		var ok bool
		if name, ok = validate.Name(*in.Name); !ok {
			return nil, simerr.Validation("name is required (max 32 characters)")
		}
	}
	if in.Description != nil {
		var ok bool
		if desc, ok = validate.Description(*in.Description); !ok {
			return nil, simerr.Validation("description must be at most 128 characters")
		}
	}
	c, err := h.Categories.Update(ctx, req.Param("id"), func(c *domain.Category) {
		if in.Name != nil {
			c.Name = name
		}
		if in.Description != nil {
			c.Description = desc
		}
		c.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, err
	}
	return OK(c), nil
}

// Delete refuses while any product still references the category. The check
// and the delete are separate store calls; see the concurrency notes.
func (h *CategoryHandler) Delete(ctx context.Context, req *Request) (*Response, error) {
	id := req.Param("id")
	c, err := h.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, simerr.NotFound("category", id)
	}
	prods, err := h.Products.ByCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(prods) > 0 {
		return nil, simerr.Validation("Cannot delete category with existing products")
	}
	if err := h.Categories.Delete(ctx, id); err != nil {
		return nil, err
	}
	applog.Audit("category.delete", map[string]any{"category": id})
	return NoContent(), nil
}
