package http

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// phonePattern matches local phone numbers: leading zero, ten digits.
var phonePattern = regexp.MustCompile(`^0\d{9}$`)

// RegisterValidators installs custom binding validators on gin's
// validator engine. Call once before building the router.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
	}
}
