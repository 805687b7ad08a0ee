package auth

import (
	"github.com/go-playground/validator/v10"

	"pairchat/domain"
)

var validate = validator.New()

type accountFields struct {
	ID          string `validate:"required"`
	DisplayName string `validate:"required"`
	AvatarURL   string `validate:"omitempty,url"`
}

// ValidateAccount checks the fields the provider must supply before
// the account enters the sync core.
func ValidateAccount(account domain.Account) error {
	return validate.Struct(accountFields{
		ID:          account.ID,
		DisplayName: account.DisplayName,
		AvatarURL:   account.AvatarURL,
	})
}
