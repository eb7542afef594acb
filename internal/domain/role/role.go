package role

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("role not found")

// ErrNameTaken is returned by stores when the role name uniqueness
// constraint rejects an insert.
var ErrNameTaken = errors.New("role already exists")

type Role struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

func New(name string, description *string) Role {
	return Role{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}
