package user

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

// ErrUsernameTaken is returned by stores when the username uniqueness
// constraint rejects an insert.
var ErrUsernameTaken = errors.New("username already exists")

// ErrUnknownRole is returned by stores when role_id references no role.
var ErrUnknownRole = errors.New("role does not exist")

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Hint         *string   `json:"hint"`
	RoleID       *string   `json:"roleId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WithRole is a user joined with the name of its role, if any.
type WithRole struct {
	User
	RoleName *string `json:"role"`
}

// NewUser carries what a store needs to insert a user.
type NewUser struct {
	Username     string
	PasswordHash string
	Hint         *string
	RoleID       *string
}

// Summary is the listing projection.
type Summary struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Role *string `json:"role"`
}

// Profile is what the current-user lookup returns.
type Profile struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Role     *string `json:"role"`
}
