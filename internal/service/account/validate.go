package account

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const (
	MaxUsernameLen = 25
	MaxPasswordLen = 50
	MaxHintLen     = 100
)

// lengths are counted in runes by the max tag
type signUpFields struct {
	Username string `validate:"required,max=25"`
	Password string `validate:"required,max=50"`
	Hint     string `validate:"max=100"`
	RoleID   string `validate:"omitempty,uuid"`
}

type roleFields struct {
	Name string `validate:"required"`
}

// signUpMessage turns validator output into the single client message.
// Presence failures win over length failures.
func signUpMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return MsgCredentialsMissing
	}

	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return MsgCredentialsMissing
		}
	}

	switch verrs[0].StructField() {
	case "Username":
		return MsgUsernameTooLong
	case "Password":
		return MsgPasswordTooLong
	case "Hint":
		return MsgHintTooLong
	case "RoleID":
		return MsgRoleIDInvalid
	default:
		return verrs[0].Error()
	}
}
