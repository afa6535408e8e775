package accounts

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/schooldesk/internal/entities"
)

const serviceTag = "service"

func newValidator() *validator.Validate {
	v := validator.New()

	// Report JSON names in errors.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(serviceTag, serviceValidation)
	return v
}

func serviceValidation(fl validator.FieldLevel) bool {
	return entities.Service(fl.Field().String()).Valid()
}
