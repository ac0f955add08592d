package utils

import (
	"sync"

	"cityportal/i18n"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	validatorsOnce sync.Once
	validatorsErr  error
)

// RegisterValidators adds the custom binding tags to gin's validator. Safe to call more than once.
func RegisterValidators() error {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		validatorsErr = v.RegisterValidation("lang", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "" || i18n.IsSupported(s)
		})
	})
	return validatorsErr
}
