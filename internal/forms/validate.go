// Package forms implements the console's form flows: login, add hospital,
// and edit hospital. Each flow holds a draft record, runs client-side
// validation before anything touches the network, and funnels submission
// through the gateway. Validation failures never leave the form; gateway
// failures keep the draft intact for a retry.
package forms

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// Indian pincode: six digits, no leading zero.
	pincodeRe = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	// Indian mobile number: ten digits starting 6-9.
	phoneRe = regexp.MustCompile(`^[6-9][0-9]{9}$`)
)

// FieldErrors maps a form field (by its json name) to a human-readable
// validation message.
type FieldErrors map[string]string

// Any reports whether any field failed validation.
func (fe FieldErrors) Any() bool { return len(fe) > 0 }

// Validator validates form drafts with the console's field rules.
type Validator struct {
	v *validator.Validate
}

// NewValidator registers the custom pincode and phone rules on top of the
// standard tag set.
func NewValidator() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterValidation("pincode", func(fl validator.FieldLevel) bool {
		return pincodeRe.MatchString(fl.Field().String())
	})
	v.RegisterValidation("inphone", func(fl validator.FieldLevel) bool {
		return phoneRe.MatchString(fl.Field().String())
	})

	return &Validator{v: v}
}

// Check validates the draft and returns per-field messages. An empty map
// means the draft may be submitted.
func (val *Validator) Check(form any) FieldErrors {
	err := val.v.Struct(form)
	if err == nil {
		return FieldErrors{}
	}

	fieldErrs := FieldErrors{}
	var verrs validator.ValidationErrors
	if !asValidationErrors(err, &verrs) {
		fieldErrs["form"] = "Please check the form and try again"
		return fieldErrs
	}

	for _, fe := range verrs {
		fieldErrs[fe.Field()] = message(fe)
	}
	return fieldErrs
}

func asValidationErrors(err error, out *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*out = verrs
	}
	return ok
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Field() == "departments" {
			return "Select at least one department"
		}
		return "This field is required"
	case "email":
		return "Enter a valid email address"
	case "pincode":
		return "Enter a valid 6-digit pincode"
	case "inphone":
		return "Enter a valid 10-digit phone number"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "Select at least one department"
		}
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}
