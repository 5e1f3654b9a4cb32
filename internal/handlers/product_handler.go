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

// PlaceholderImageURL is served whenever none of a product's image ids
// resolve: a product view never carries an empty image list.
const PlaceholderImageURL = "/images/placeholder.png"

type ProductHandler struct {
	Products   *repos.ProductRepo
	Categories *repos.CategoryRepo
	Orders     *repos.OrderRepo
	Files      *repos.FileRepo
	Resolver   FileURLResolver
}

// productView is a product plus its resolved image URLs.
type productView struct {
	domain.Product
	Images []string `json:"images"`
}

func (h *ProductHandler) view(ctx context.Context, p domain.Product) productView {
	var urls []string
	for _, id := range p.ImageIDs {
		if url, ok := h.Resolver.Resolve(ctx, id); ok {
			urls = append(urls, url)
		}
	}
	if len(urls) == 0 {
		urls = []string{PlaceholderImageURL}
	}
	return productView{Product: p, Images: urls}
}

func (h *ProductHandler) List(ctx context.Context, req *Request) (*Response, error) {
	var (
		prods []domain.Product
		err   error
	)
	if catID := req.QueryParam("categoryId"); catID != "" {
		prods, err = h.Products.ByCategory(ctx, catID)
	} else {
		prods, err = h.Products.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	prods = searchFilter(prods, req, func(p domain.Product) []string {
		return []string{p.Name, p.Description}
	})
	page := paginate(prods, req)
	views := make([]productView, 0, len(page.Data))
	for _, p := range page.Data {
		views = append(views, h.view(ctx, p))
	}
	return OK(Page[productView]{
		Data:       views,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	}), nil
}

func (h *ProductHandler) Get(ctx context.Context, req *Request) (*Response, error) {
	p, err := h.Products.GetByID(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, simerr.NotFound("product", req.Param("id"))
	}
	return OK(h.view(ctx, *p)), nil
}

type productReq struct {
	Name           *string                 `json:"name"`
	Description    *string                 `json:"description"`
	Price          *float64                `json:"price"`
	CategoryID     *string                 `json:"categoryId"`
	Stock          *int                    `json:"stock"`
	ImageIDs       *[]string               `json:"imageIds"`
	Specifications *[]domain.Specification `json:"specifications"`
}

func (h *ProductHandler) Create(ctx context.Context, req *Request) (*Response, error) {
	var in productReq
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
	if in.Price == nil || !validate.Price(*in.Price) {
		return nil, simerr.Validation("price must be zero or positive")
	}
	if in.CategoryID == nil || *in.CategoryID == "" {
		return nil, simerr.Validation("categoryId is required")
	}
	cat, err := h.Categories.GetByID(ctx, *in.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, simerr.Validation("unknown category %q", *in.CategoryID)
	}

	now := time.Now()
	p := domain.Product{
		ID:         uuid.NewString(),
		Name:       name,
		Price:      *in.Price,
		CategoryID: *in.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Description != nil {
		desc, ok := validate.Description(*in.Description)
		if !ok {
			return nil, simerr.Validation("description must be at most 128 characters")
		}
		p.Description = desc
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return nil, simerr.Validation("stock must be zero or positive")
		}
		p.Stock = *in.Stock
	}
	if in.ImageIDs != nil {
		p.ImageIDs = *in.ImageIDs
	}
	if in.Specifications != nil {
		p.Specifications = *in.Specifications
	}
	if err := h.Products.Create(ctx, &p); err != nil {
		return nil, err
	}
	return Created(h.view(ctx, p)), nil
}

func (h *ProductHandler) Update(ctx context.Context, req *Request) (*Response, error) {
	var in productReq
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
	if in.Price != nil && !validate.Price(*in.Price) {
		return nil, simerr.Validation("price must be zero or positive")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return nil, simerr.Validation("stock must be zero or positive")
	}
	if in.CategoryID != nil {
		cat, err := h.Categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			return nil, simerr.Validation("unknown category %q", *in.CategoryID)
		}
	}
	p, err := h.Products.Update(ctx, req.Param("id"), func(p *domain.Product) {
		if in.Name != nil {
			p.Name = name
		}
		if in.Description != nil {
			p.Description = desc
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.CategoryID != nil {
			p.CategoryID = *in.CategoryID
		}
		if in.Stock != nil {
			p.Stock = *in.Stock
		}
		if in.ImageIDs != nil {
			p.ImageIDs = *in.ImageIDs
		}
		if in.Specifications != nil {
			p.Specifications = *in.Specifications
		}
		p.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, err
	}
	return OK(h.view(ctx, *p)), nil
}

// Delete refuses while any order line-item references the product, then
// removes the product's uploaded image blobs before the product itself.
func (h *ProductHandler) Delete(ctx context.Context, req *Request) (*Response, error) {
	id := req.Param("id")
	p, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, simerr.NotFound("product", id)
	}
	orders, err := h.Orders.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		for _, it := range o.Items {
			if it.ProductID == id {
				return nil, simerr.Conflict("Cannot delete product referenced by order %s", o.ID)
			}
		}
	}
	for _, fileID := range p.ImageIDs {
		if err := h.Files.Delete(ctx, fileID); err != nil {
			return nil, err
		}
	}
	if err := h.Products.Delete(ctx, id); err != nil {
		return nil, err
	}
	applog.Audit("product.delete", map[string]any{"product": id})
	return OK(map[string]any{"deleted": id}), nil
}
