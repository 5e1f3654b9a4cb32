package repos

import (
	"context"
	"strings"

	"shopsim/internal/domain"
	"shopsim/internal/store"
)

type UserRepo struct{ Collection[domain.User] }

func NewUserRepo(s *store.Store) *UserRepo {
	return &UserRepo{Collection[domain.User]{
		store:    s,
		name:     ColUsers,
		resource: "user",
		key:      func(u *domain.User) string { return u.ID },
	}}
}

// ByEmail looks the user up by normalized (lower-cased) email; emails are
// stored normalized, so the index match is case-insensitive.
func (r *UserRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.oneByIndex(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}
