package httpapi

import (
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidators installs the custom password rule on gin's validator
// engine. Safe to call more than once.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("password", passwordStrength)
	}
}

// passwordStrength requires 8-128 characters including an upper-case
// letter, a lower-case letter, a digit and a special character.
func passwordStrength(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if len(p) < 8 || len(p) > 128 {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}
