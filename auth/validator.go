package auth

import (
	"errors"
	apperrors "event-lab/errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// SignUpRequest mirrors the account creation form.
type SignUpRequest struct {
	FullName        string `validate:"required,max=120"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6,max=72"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
}

type SignInRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// ValidateSignUp reports password problems as ErrInvalidPassword and the rest as ErrInvalidUser.
func ValidateSignUp(req SignUpRequest) error {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.TrimSpace(req.Email)
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		for _, fe := range errs {
			if fe.Field() == "Password" || fe.Field() == "ConfirmPassword" {
				return fmt.Errorf("%w: %v", apperrors.ErrInvalidPassword, err)
			}
		}
	}
	return fmt.Errorf("%w: %v", apperrors.ErrInvalidUser, err)
}

func ValidateSignIn(req SignInRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidCredentials, err)
	}
	return nil
}
