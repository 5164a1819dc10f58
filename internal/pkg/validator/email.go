package validator

import (
	"errors"
	"net/mail"
)

func ValidEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email format")
	}
	return nil
}
