package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"tableorder-backend/utils"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// indexedField matches the slice part of a namespace such as items[2].quantity.
var indexedField = regexp.MustCompile(`^\w+\[(\d+)\]\.`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Messages name fields the way clients send them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
			return name
		}
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return strings.ToLower(f.Name)
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return utils.ValidatePhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// checkStruct runs the validate tags on s and reports the first failure as
// a validation error.
func checkStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate %T: %w", s, err)
	}
	return validationError("%s", fieldMessage(fieldErrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	name := fe.Field()
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	if m := indexedField.FindStringSubmatch(ns); m != nil {
		n, _ := strconv.Atoi(m[1])
		name = fmt.Sprintf("item %d: %s", n+1, name)
	}

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " is not a valid email address"
	case "phone":
		return name + " is not a valid phone number"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters long", name, fe.Param())
		case reflect.Slice:
			return name + " must not be empty"
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	}
	return name + " is invalid"
}
