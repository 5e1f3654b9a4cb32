package handlers

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"shopsim/internal/domain"
	applog "shopsim/internal/log"
	"shopsim/internal/repos"
	"shopsim/internal/simerr"
	"shopsim/internal/validate"
)

type OrderHandler struct {
	Orders    *repos.OrderRepo
	Products  *repos.ProductRepo
	Addresses *repos.AddressRepo
	Payments  *repos.PaymentMethodRepo

	// Strict rejects status moves that are not adjacent in the fulfilment
	// chain. The default leaves manual overrides possible.
	Strict bool
}

func (h *OrderHandler) List(ctx context.Context, req *Request) (*Response, error) {
	var (
		orders []domain.Order
		err    error
	)
	if status := req.QueryParam("status"); status != "" {
		orders, err = h.Orders.ByStatus(ctx, status)
	} else {
		orders, err = h.Orders.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return OK(paginate(orders, req)), nil
}

func (h *OrderHandler) Get(ctx context.Context, req *Request) (*Response, error) {
	o, err := h.Orders.GetByID(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, simerr.NotFound("order", req.Param("id"))
	}
	return OK(o), nil
}

func (h *OrderHandler) ListByUser(ctx context.Context, req *Request) (*Response, error) {
	orders, err := h.Orders.ByUser(ctx, req.Param("userId"))
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return OK(orders), nil
}

type createOrderReq struct {
	UserID string `json:"userId"`
	Items  []struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	AddressID       string          `json:"addressId"`
	DeliveryAddress *domain.Address `json:"deliveryAddress"`
	PaymentMethodID string          `json:"paymentMethodId"`
}

// Create builds an order with price snapshots taken at order time: later
// product price changes never alter the stored line items.
func (h *OrderHandler) Create(ctx context.Context, req *Request) (*Response, error) {
	var in createOrderReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if in.UserID == "" {
		return nil, simerr.Validation("userId is required")
	}
	if len(in.Items) == 0 {
		return nil, simerr.Validation("order must contain at least one item")
	}

	now := time.Now()
	var (
		items []domain.OrderItem
		total float64
	)
	for _, it := range in.Items {
		p, err := h.Products.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, simerr.Validation("unknown product %q", it.ProductID)
		}
		qty := validate.Qty(it.Quantity)
		items = append(items, domain.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  qty,
			Price:     p.Price,
		})
		total += p.Price * float64(qty)
	}

	addr, err := h.deliveryAddress(ctx, &in)
	if err != nil {
		return nil, err
	}
	payInfo, err := h.paymentInfo(ctx, &in)
	if err != nil {
		return nil, err
	}

	o := domain.Order{
		ID:              uuid.NewString(),
		UserID:          in.UserID,
		Status:          domain.StatusPendingPayment,
		PaymentStatus:   domain.PaymentStatusPending,
		Items:           items,
		Total:           total,
		DeliveryAddress: addr,
		PaymentInfo:     payInfo,
		StatusHistory: []domain.StatusEntry{{
			ToStatus:  domain.StatusPendingPayment,
			Actor:     "system",
			Timestamp: now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Orders.Create(ctx, &o); err != nil {
		return nil, err
	}
	applog.Audit("order.create", map[string]any{"order": o.ID, "user": o.UserID, "total": o.Total})
	return Created(o), nil
}

// deliveryAddress snapshots the address by value: the order keeps a copy,
// never a live reference to the saved record.
func (h *OrderHandler) deliveryAddress(ctx context.Context, in *createOrderReq) (domain.Address, error) {
	if in.AddressID != "" {
		a, err := h.Addresses.GetByID(ctx, in.AddressID)
		if err != nil {
			return domain.Address{}, err
		}
		if a == nil || a.UserID != in.UserID {
			return domain.Address{}, simerr.Validation("unknown address %q", in.AddressID)
		}
		return *a, nil
	}
	if in.DeliveryAddress == nil {
		return domain.Address{}, simerr.Validation("a delivery address is required")
	}
	return *in.DeliveryAddress, nil
}

// paymentInfo sanitizes the chosen payment method down to type plus last4 or
// paypal email; card numbers never reach an order record.
func (h *OrderHandler) paymentInfo(ctx context.Context, in *createOrderReq) (domain.PaymentInfo, error) {
	if in.PaymentMethodID == "" {
		return domain.PaymentInfo{}, nil
	}
	pm, err := h.Payments.GetByID(ctx, in.PaymentMethodID)
	if err != nil {
		return domain.PaymentInfo{}, err
	}
	if pm == nil || pm.UserID != in.UserID {
		return domain.PaymentInfo{}, simerr.Validation("unknown payment method %q", in.PaymentMethodID)
	}
	return domain.PaymentInfo{
		Type:        pm.Type,
		Last4:       pm.Last4,
		PayPalEmail: pm.PayPalEmail,
	}, nil
}

type updateStatusReq struct {
	Status string `json:"status"`
	Actor  string `json:"actor"`
}

// UpdateStatus moves an order through its lifecycle. Setting the current
// status again is an idempotent no-op; every real move appends exactly one
// statusHistory entry and persists via full replace.
func (h *OrderHandler) UpdateStatus(ctx context.Context, req *Request) (*Response, error) {
	var in updateStatusReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	id := req.Param("id")
	o, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, simerr.NotFound("order", id)
	}
	if in.Status == o.Status {
		return OK(o), nil
	}
	if !domain.ValidStatus(in.Status) {
		return nil, simerr.Validation("unknown status %q", in.Status)
	}
	if domain.TerminalStatus(o.Status) {
		return nil, simerr.Validation("order is %s and cannot change status", o.Status)
	}
	if h.Strict && !domain.AdjacentTransition(o.Status, in.Status) {
		return nil, simerr.Validation("cannot move order from %s to %s", o.Status, in.Status)
	}

	actor := in.Actor
	if actor == "" {
		actor = "system"
	}
	now := time.Now()
	o.StatusHistory = append(o.StatusHistory, domain.StatusEntry{
		FromStatus: o.Status,
		ToStatus:   in.Status,
		Actor:      actor,
		Timestamp:  now,
	})
	if in.Status == domain.StatusPaid {
		o.PaymentStatus = domain.PaymentStatusPaid
	}
	o.Status = in.Status
	o.UpdatedAt = now
	if err := h.Orders.UpdateFull(ctx, o); err != nil {
		return nil, err
	}
	applog.Audit("order.status", map[string]any{"order": id, "to": in.Status, "actor": actor})
	return OK(o), nil
}

type addCommentReq struct {
	Text     string `json:"text"`
	Actor    string `json:"actor"`
	IsSystem bool   `json:"isSystem"`
}

func (h *OrderHandler) AddComment(ctx context.Context, req *Request) (*Response, error) {
	var in addCommentReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if in.Text == "" {
		return nil, simerr.Validation("comment text is required")
	}
	o, err := h.Orders.Update(ctx, req.Param("id"), func(o *domain.Order) {
		o.Comments = append(o.Comments, domain.Comment{
			Text:      in.Text,
			Actor:     in.Actor,
			IsSystem:  in.IsSystem,
			Timestamp: time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}
	return Created(o), nil
}

// timelineEntry is one presentation row of the merged history.
type timelineEntry struct {
	Type       string    `json:"type"` // status | comment
	Timestamp  time.Time `json:"timestamp"`
	Actor      string    `json:"actor"`
	FromStatus string    `json:"fromStatus,omitempty"`
	ToStatus   string    `json:"toStatus,omitempty"`
	Text       string    `json:"text,omitempty"`
	IsSystem   bool      `json:"isSystem,omitempty"`
}

// Timeline merges status history and comments into one chronological view,
// newest first. The sort is stable so equal timestamps keep append order.
func (h *OrderHandler) Timeline(ctx context.Context, req *Request) (*Response, error) {
	o, err := h.Orders.GetByID(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, simerr.NotFound("order", req.Param("id"))
	}
	entries := make([]timelineEntry, 0, len(o.StatusHistory)+len(o.Comments))
	for _, s := range o.StatusHistory {
		entries = append(entries, timelineEntry{
			Type:       "status",
			Timestamp:  s.Timestamp,
			Actor:      s.Actor,
			FromStatus: s.FromStatus,
			ToStatus:   s.ToStatus,
		})
	}
	for _, c := range o.Comments {
		entries = append(entries, timelineEntry{
			Type:      "comment",
			Timestamp: c.Timestamp,
			Actor:     c.Actor,
			Text:      c.Text,
			IsSystem:  c.IsSystem,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return OK(entries), nil
}
