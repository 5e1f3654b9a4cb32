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

// errBadCreds never discloses whether the email or the password was wrong.
var errBadCreds = &simerr.AuthError{Msg: "invalid email or password"}

type AuthHandler struct {
	Users *repos.UserRepo
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(ctx context.Context, req *Request) (*Response, error) {
	var in loginReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	u, err := h.Users.ByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	// Demo store keeps plaintext passwords; comparison is intentionally plain.
	if u == nil || u.Password != in.Password {
		return nil, errBadCreds
	}
	return OK(u.Public()), nil
}

type registerReq struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Profile  domain.Profile `json:"profile"`
}

func (h *AuthHandler) Register(ctx context.Context, req *Request) (*Response, error) {
	var in registerReq
	if err := req.Bind(&in); err != nil {
		return nil, err
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		return nil, simerr.Validation("a valid email is required")
	}
	if in.Password == "" {
		return nil, simerr.Validation("password is required")
	}
	if existing, err := h.Users.ByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, simerr.Conflict("an account with this email already exists")
	}
	now := time.Now()
	u := domain.User{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  in.Password,
		Role:      domain.RoleUser,
		Profile:   in.Profile,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		return nil, err
	}
	applog.Audit("auth.register", map[string]any{"user": u.ID})
	return Created(u.Public()), nil
}
