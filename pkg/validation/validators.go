package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegisterValidators adds the custom tags used by request structs.
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("notblank", NotBlank)
}

// NotBlank rejects strings that are empty after trimming whitespace.
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
