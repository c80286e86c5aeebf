package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/verif-backoffice/pkg/util"
)

// Validator checks request payloads against their struct tags.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a validator with the default rule set.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate reports every failing field of i as a VALIDATION_FAILED error.
func (v *Validator) Validate(i interface{}) error {
	if i == nil {
		return apperrors.NewValidationError("invalid request body", nil)
	}
	if err := v.validate.Struct(i); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return apperrors.NewValidationError(err.Error(), nil)
		}
		details := make(map[string]any, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[toSnake(fe.Field())] = fe.Tag()
		}
		return apperrors.NewValidationError("request validation failed", details)
	}
	return nil
}

// bind decodes the JSON body into out and validates it.
func (v *Validator) bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return v.Validate(out)
}

func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
