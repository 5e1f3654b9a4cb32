package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopsim/internal/domain"
	"shopsim/internal/repos"
	"shopsim/internal/simerr"
)

// identityKey normalizes identifying fields (trim + lower) into one
// comparable key, used for duplicate detection via scan-and-compare.
func identityKey(fields ...string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = strings.ToLower(strings.TrimSpace(f))
	}
	return strings.Join(parts, "|")
}

func addressKey(a *domain.Address) string {
	return identityKey(a.Recipient, a.Line1, a.Line2, a.City, a.PostalCode, a.Phone)
}

type AddressHandler struct {
	Addresses *repos.AddressRepo
}

func (h *AddressHandler) List(ctx context.Context, req *Request) (*Response, error) {
	addrs, err := h.Addresses.ByUser(ctx, req.Param("userId"))
	if err != nil {
		return nil, err
	}
	return OK(addrs), nil
}

type addressReq struct {
	Label      *string `json:"label"`
	Recipient  *string `json:"recipient"`
	Phone      *string `json:"phone"`
	Line1      *string `json:"line1"`
	Line2      *string `json:"line2"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode"`
	IsDefault  *bool   `json:"isDefault"`
}

// Create deduplicates against the user's saved addresses: a field-identical
// payload updates the existing record in place (merging label and default
// flag) and returns 200 with the existing id instead of 201.
func (h *AddressHandler) Create(ctx context.Context, req *Request) (*Response, error) {
	var in addressReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	for name, f := range map[string]*string{
		"recipient": in.Recipient, "phone": in.Phone, "line1": in.Line1,
		"city": in.City, "postalCode": in.PostalCode,
	} {
		if f == nil || strings.TrimSpace(*f) == "" {
			return nil, simerr.Validation("%s is required", name)
		}
	}

	userID := req.Param("userId")
	now := time.Now()
	a := domain.Address{
		ID:         uuid.NewString(),
		UserID:     userID,
		Recipient:  strings.TrimSpace(*in.Recipient),
		Phone:      strings.TrimSpace(*in.Phone),
		Line1:      strings.TrimSpace(*in.Line1),
		City:       strings.TrimSpace(*in.City),
		PostalCode: strings.TrimSpace(*in.PostalCode),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if in.Label != nil {
		a.Label = strings.TrimSpace(*in.Label)
	}
	if in.Line2 != nil {
		a.Line2 = strings.TrimSpace(*in.Line2)
	}
	if in.IsDefault != nil {
		a.IsDefault = *in.IsDefault
	}

	existing, err := h.Addresses.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	key := addressKey(&a)
	for i := range existing {
		dup := existing[i]
		if addressKey(&dup) != key {
			continue
		}
		if in.Label != nil {
			dup.Label = a.Label
		}
		if in.IsDefault != nil && *in.IsDefault {
			dup.IsDefault = true
		}
		dup.UpdatedAt = now
		if err := h.Addresses.UpdateFull(ctx, &dup); err != nil {
			return nil, err
		}
		if dup.IsDefault {
			if err := h.clearOtherDefaults(ctx, userID, dup.ID); err != nil {
				return nil, err
			}
		}
		return OK(dup), nil
	}

	// First saved address for a user is always the default.
	if len(existing) == 0 {
		a.IsDefault = true
	}
	if err := h.Addresses.Create(ctx, &a); err != nil {
		return nil, err
	}
	if a.IsDefault {
		if err := h.clearOtherDefaults(ctx, userID, a.ID); err != nil {
			return nil, err
		}
	}
	return Created(a), nil
}

func (h *AddressHandler) Update(ctx context.Context, req *Request) (*Response, error) {
	var in addressReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	userID := req.Param("userId")
	id := req.Param("id")

	a, err := h.Addresses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || a.UserID != userID {
		return nil, simerr.NotFound("address", id)
	}

	siblings, err := h.Addresses.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Label != nil {
		a.Label = strings.TrimSpace(*in.Label)
	}
	if in.Recipient != nil {
		a.Recipient = strings.TrimSpace(*in.Recipient)
	}
	if in.Phone != nil {
		a.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.Line1 != nil {
		a.Line1 = strings.TrimSpace(*in.Line1)
	}
	if in.Line2 != nil {
		a.Line2 = strings.TrimSpace(*in.Line2)
	}
	if in.City != nil {
		a.City = strings.TrimSpace(*in.City)
	}
	if in.PostalCode != nil {
		a.PostalCode = strings.TrimSpace(*in.PostalCode)
	}
	if in.IsDefault != nil {
		// The sole record stays default regardless: a user with addresses
		// always has exactly one default.
		if *in.IsDefault || len(siblings) > 1 {
			a.IsDefault = *in.IsDefault
		}
	}
	a.UpdatedAt = time.Now()
	if err := h.Addresses.UpdateFull(ctx, a); err != nil {
		return nil, err
	}

	if a.IsDefault {
		if err := h.clearOtherDefaults(ctx, userID, a.ID); err != nil {
			return nil, err
		}
	} else if in.IsDefault != nil && !*in.IsDefault {
		if err := h.promoteAnyDefault(ctx, userID, a.ID); err != nil {
			return nil, err
		}
	}
	return OK(a), nil
}

// Delete refuses to remove the sole remaining default record; deleting a
// default with siblings promotes one of them first.
func (h *AddressHandler) Delete(ctx context.Context, req *Request) (*Response, error) {
	userID := req.Param("userId")
	id := req.Param("id")

	a, err := h.Addresses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil || a.UserID != userID {
		return nil, simerr.NotFound("address", id)
	}
	siblings, err := h.Addresses.ByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if a.IsDefault {
		if len(siblings) <= 1 {
			return nil, simerr.Validation("cannot delete the only default address")
		}
		for i := range siblings {
			if siblings[i].ID == id {
				continue
			}
			siblings[i].IsDefault = true
			siblings[i].UpdatedAt = time.Now()
			if err := h.Addresses.UpdateFull(ctx, &siblings[i]); err != nil {
				return nil, err
			}
			break
		}
	}
	if err := h.Addresses.Delete(ctx, id); err != nil {
		return nil, err
	}
	return NoContent(), nil
}

// clearOtherDefaults sweeps the user's other records. Each clear is an
// independent write: two interleaved sweeps can transiently leave two
// defaults, a known single-session limitation.
func (h *AddressHandler) clearOtherDefaults(ctx context.Context, userID, keepID string) error {
	addrs, err := h.Addresses.ByUser(ctx, userID)
	if err != nil {
		return err
	}
	for i := range addrs {
		if addrs[i].ID == keepID || !addrs[i].IsDefault {
			continue
		}
		addrs[i].IsDefault = false
		addrs[i].UpdatedAt = time.Now()
		if err := h.Addresses.UpdateFull(ctx, &addrs[i]); err != nil {
			return err
		}
	}
	return nil
}

// promoteAnyDefault ensures some record is default after skipID gave it up.
func (h *AddressHandler) promoteAnyDefault(ctx context.Context, userID, skipID string) error {
	addrs, err := h.Addresses.ByUser(ctx, userID)
	if err != nil {
		return err
	}
	for i := range addrs {
		if addrs[i].IsDefault {
			return nil
		}
	}
	for i := range addrs {
		if addrs[i].ID == skipID {
			continue
		}
		addrs[i].IsDefault = true
		addrs[i].UpdatedAt = time.Now()
		return h.Addresses.UpdateFull(ctx, &addrs[i])
	}
	return nil
}
