package utils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/maskserve/maskserve/internal/gperr"
)

var validate = validator.New()

var ErrValidationError = gperr.New("validation error")

// ValidateWithFieldTags validates s by its `validate` struct tags
// and reports every failing field.
func ValidateWithFieldTags(s any) gperr.Error {
	errs := gperr.NewBuilder("validate error")
	err := validate.Struct(s)
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		for _, e := range valErrs {
			detail := e.ActualTag()
			if e.Param() != "" {
				detail += ":" + e.Param()
			}
			errs.Add(ErrValidationError.
				Subject(e.Namespace()).
				Withf("require %q", detail))
		}
	} else if err != nil {
		errs.Add(err)
	}
	return errs.Error()
}
