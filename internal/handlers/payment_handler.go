package handlers

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopsim/internal/domain"
	"shopsim/internal/repos"
	"shopsim/internal/simerr"
	"shopsim/internal/validate"
)

var reLast4 = regexp.MustCompile(`^[0-9]{4}$`)

func paymentKey(p *domain.PaymentMethod) string {
	if p.Type == domain.PaymentTypePayPal {
		return identityKey(p.Type, p.PayPalEmail)
	}
	return identityKey(p.Type, p.Last4, p.Holder, p.Expiry)
}

type PaymentMethodHandler struct {
	Payments *repos.PaymentMethodRepo
}

func (h *PaymentMethodHandler) List(ctx context.Context, req *Request) (*Response, error) {
	pms, err := h.Payments.ByUser(ctx, req.Param("userId"))
	if err != nil {
		return nil, err
	}
	return OK(pms), nil
}

type paymentReq struct {
	Type        *string `json:"type"`
	Last4       *string `json:"last4"`
	Holder      *string `json:"holder"`
	Expiry      *string `json:"expiry"`
	PayPalEmail *string `json:"paypalEmail"`
	Label       *string `json:"label"`
	IsDefault   *bool   `json:"isDefault"`
}

// Create deduplicates on type+last4+holder+expiry (card) or type+paypalEmail
// (paypal): a match updates the existing record in place and returns 200.
func (h *PaymentMethodHandler) Create(ctx context.Context, req *Request) (*Response, error) {
	var in paymentReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if in.Type == nil {
		return nil, simerr.Validation("type is required")
	}
	now := time.Now()
	userID := req.Param("userId")
	pm := domain.PaymentMethod{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      strings.TrimSpace(*in.Type),
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch pm.Type {
	case domain.PaymentTypeCard:
		if in.Last4 == nil || !reLast4.MatchString(strings.TrimSpace(*in.Last4)) {
			return nil, simerr.Validation("last4 must be exactly four digits")
		}
		if in.Holder == nil || strings.TrimSpace(*in.Holder) == "" {
			return nil, simerr.Validation("holder is required")
		}
		if in.Expiry == nil || strings.TrimSpace(*in.Expiry) == "" {
			return nil, simerr.Validation("expiry is required")
		}
		pm.Last4 = strings.TrimSpace(*in.Last4)
		pm.Holder = strings.TrimSpace(*in.Holder)
		pm.Expiry = strings.TrimSpace(*in.Expiry)
	case domain.PaymentTypePayPal:
		if in.PayPalEmail == nil {
			return nil, simerr.Validation("paypalEmail is required")
		}
		email, ok := validate.Email(*in.PayPalEmail)
		if !ok {
			return nil, simerr.Validation("a valid paypalEmail is required")
		}
		pm.PayPalEmail = email
	default:
		return nil, simerr.Validation("type must be card or paypal")
	}
	if in.IsDefault != nil {
		pm.IsDefault = *in.IsDefault
	}

	existing, err := h.Payments.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := paymentKey(&pm)
	for i := range existing {
		dup := existing[i]
		if paymentKey(&dup) != key {
			continue
		}
		if in.IsDefault != nil && *in.IsDefault {
			dup.IsDefault = true
		}
		dup.UpdatedAt = now
		if err := h.Payments.UpdateFull(ctx, &dup); err != nil {
			return nil, err
		}
		if dup.IsDefault {
			if err := h.clearOtherDefaults(ctx, userID, dup.ID); err != nil {
				return nil, err
			}
		}
		return OK(dup), nil
	}

	if len(existing) == 0 {
		pm.IsDefault = true
	}
	if err := h.Payments.Create(ctx, &pm); err != nil {
		return nil, err
	}
	if pm.IsDefault {
		if err := h.clearOtherDefaults(ctx, userID, pm.ID); err != nil {
			return nil, err
		}
	}
	return Created(pm), nil
}

func (h *PaymentMethodHandler) Update(ctx context.Context, req *Request) (*Response, error) {
	var in paymentReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	userID := req.Param("userId")
	id := req.Param("id")

	pm, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pm == nil || pm.UserID != userID {
		return nil, simerr.NotFound("payment method", id)
	}
	siblings, err := h.Payments.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Holder != nil {
		pm.Holder = strings.TrimSpace(*in.Holder)
	}
	if in.Expiry != nil {
		pm.Expiry = strings.TrimSpace(*in.Expiry)
	}
	if in.IsDefault != nil {
		if *in.IsDefault || len(siblings) > 1 {
			pm.IsDefault = *in.IsDefault
		}
	}
	pm.UpdatedAt = time.Now()
	if err := h.Payments.UpdateFull(ctx, pm); err != nil {
		return nil, err
	}

	if pm.IsDefault {
		if err := h.clearOtherDefaults(ctx, userID, pm.ID); err != nil {
			return nil, err
		}
	} else if in.IsDefault != nil && !*in.IsDefault {
		if err := h.promoteAnyDefault(ctx, userID, pm.ID); err != nil {
			return nil, err
		}
	}
	return OK(pm), nil
}

func (h *PaymentMethodHandler) Delete(ctx context.Context, req *Request) (*Response, error) {
	userID := req.Param("userId")
	id := req.Param("id")

	pm, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pm == nil || pm.UserID != userID {
		return nil, simerr.NotFound("payment method", id)
	}
	siblings, err := h.Payments.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if pm.IsDefault {
		if len(siblings) <= 1 {
			return nil, simerr.Validation("cannot delete the only default payment method")
		}
		for i := range siblings {
			if siblings[i].ID == id {
				continue
			}
			siblings[i].IsDefault = true
			siblings[i].UpdatedAt = time.Now()
			if err := h.Payments.UpdateFull(ctx, &siblings[i]); err != nil {
				return nil, err
			}
			break
		}
	}
	if err := h.Payments.Delete(ctx, id); err != nil {
		return nil, err
	}
	return NoContent(), nil
}

func (h *PaymentMethodHandler) clearOtherDefaults(ctx context.Context, userID, keepID string) error {
	pms, err := h.Payments.ByUser(ctx, userID)
	if err != nil {
		return err
	}
	for i := range pms {
		if pms[i].ID == keepID || !pms[i].IsDefault {
			continue
		}
		pms[i].IsDefault = false
		pms[i].UpdatedAt = time.Now()
		if err := h.Payments.UpdateFull(ctx, &pms[i]); err != nil {
			return err
		}
	}
	return nil
}

func (h *PaymentMethodHandler) promoteAnyDefault(ctx context.Context, userID, skipID string) error {
	pms, err := h.Payments.ByUser(ctx, userID)
	if err != nil {
		return err
	}
	for i := range pms {
		if pms[i].IsDefault {
			return nil
		}
	}
	for i := range pms {
		if pms[i].ID == skipID {
			continue
		}
		pms[i].IsDefault = true
		pms[i].UpdatedAt = time.Now()
		return h.Payments.UpdateFull(ctx, &pms[i])
	}
	return nil
}
