package handlers

import (
	"context"
	"time"

	"shopsim/internal/domain"
	applog "shopsim/internal/log"
	"shopsim/internal/repos"
	"shopsim/internal/simerr"
	"shopsim/internal/validate"
)

type UserHandler struct {
	Users *repos.UserRepo
}

func (h *UserHandler) List(ctx context.Context, req *Request) (*Response, error) {
	users, err := h.Users.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = users[i].Public()
	}
	users = searchFilter(users, req, func(u domain.User) []string {
		return []string{u.Email, u.Profile.Name}
	})
	return OK(paginate(users, req)), nil
}

func (h *UserHandler) Get(ctx context.Context, req *Request) (*Response, error) {
	u, err := h.Users.GetByID(ctx, req.Param("id"))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, simerr.NotFound("user", req.Param("id"))
	}
	return OK(u.Public()), nil
}

type updateUserReq struct {
	Role    *string         `json:"role"`
	Profile *domain.Profile `json:"profile"`
}

func (h *UserHandler) Update(ctx context.Context, req *Request) (*Response, error) {
	var in updateUserReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	if in.Role != nil && !domain.ValidRole(*in.Role) {
		return nil, simerr.Validation("invalid role %q", *in.Role)
	}
	if in.Profile != nil {
		if _, ok := validate.Name(in.Profile.Name); !ok {
			return nil, simerr.Validation("profile name is required (max 32 characters)")
		}
	}
	u, err := h.Users.Update(ctx, req.Param("id"), func(u *domain.User) {
		if in.Role != nil {
			u.Role = *in.Role
		}
		if in.Profile != nil {
			u.Profile = *in.Profile
		}
		u.UpdatedAt = time.Now()
	})
	if err != nil {
		return nil, err
	}
	return OK(u.Public()), nil
}

func (h *UserHandler) Delete(ctx context.Context, req *Request) (*Response, error) {
	id := req.Param("id")
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, simerr.NotFound("user", id)
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		return nil, err
	}
	applog.Audit("user.delete", map[string]any{"user": id})
	return NoContent(), nil
}
