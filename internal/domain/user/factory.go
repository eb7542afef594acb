package user

import (
	"time"

	"github.com/google/uuid"
)

func NewFromInput(in NewUser) User {
	return User{
		ID:           uuid.NewString(),
		Username:     in.Username,
		PasswordHash: in.PasswordHash,
		Hint:         in.Hint,
		RoleID:       in.RoleID,
		CreatedAt:    time.Now().UTC(),
	}
}
