package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AlexZinkM/guest-wallet/internal/common"
)

// requestValidator wraps go-playground/validator with the wallet's custom tags.
type requestValidator struct {
	v *validator.Validate
}

func newValidator() *requestValidator {
	v := validator.New()
	// numeric_amount: a non-negative NEAR decimal amount, e.g. "1.5"
	_ = v.RegisterValidation("numeric_amount", func(fl validator.FieldLevel) bool {
		_, err := common.NEARToYocto(fl.Field().String())
		return err == nil
	})
	return &requestValidator{v: v}
}

// Validate returns a joined, human-readable error for invalid requests.
func (rv *requestValidator) Validate(i any) error {
	if err := rv.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "numeric_amount":
		return field + " must be a NEAR amount like 1.5"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
