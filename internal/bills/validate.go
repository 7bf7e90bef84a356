package bills

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/massikone/massikone/internal/id"
	"github.com/massikone/massikone/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("imageid", func(fl validator.FieldLevel) bool {
		return id.ValidImageID(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("failed to register imageid validation: %v", err))
	}
	return v
}

// checkStruct runs the struct tags of v and reports the first failure as
// a *model.ValidationError named by its json field.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		reason := fmt.Sprintf("%v fails %s", fe.Value(), fe.Tag())
		if fe.Param() != "" {
			reason += "=" + fe.Param()
		}
		return &model.ValidationError{Field: fe.Field(), Reason: reason}
	}
	return fmt.Errorf("validating %T: %w", v, err)
}
