package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"

	"github.com/Domenick1991/domora/internal/domain"
)

// RegisterValidators adds the domain binding tags used by request types:
// "service_type" and "role".
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.NotSupportedf("binding engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		return domain.ServiceType(fl.Field().String()).Valid()
	}); err != nil {
		return errors.Annotate(err, "register service_type validator")
	}
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return domain.Role(fl.Field().String()).Valid()
	}); err != nil {
		return errors.Annotate(err, "register role validator")
	}
	return nil
}
