package domain

import (
	"github.com/go-playground/validator/v10"
)

// validate is shared by every domain check that leans on validator tags.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateEmail checks the syntactic form of an already normalized address.
func ValidateEmail(email string) error {
	if err := validate.Var(email, "required,email,max=254"); err != nil {
		return invalid("email", "must be a valid email address")
	}
	return nil
}
