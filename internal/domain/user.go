package domain

import "time"

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"` // demo plaintext; stripped from responses
	Role      string    `json:"role"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Profile struct {
	Name   string `json:"name"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Public returns a copy safe to place in a response body.
func (u User) Public() User {
	u.Password = ""
	return u
}

func ValidRole(r string) bool {
	return r == RoleUser || r == RoleManager || r == RoleAdmin
}
