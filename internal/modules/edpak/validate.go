package edpak

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func manifestValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		validate = v
	})
	return validate
}

// ValidateManifest checks the required fields in order (title, version,
// author, modules) and reports the first failure.
func ValidateManifest(m *Manifest) error {
	if m == nil {
		return newError(KindManifestValidation, "manifest is missing", nil)
	}
	err := manifestValidator().Struct(m)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return newError(KindManifestValidation, "manifest validation failed", err)
	}
	// validator reports fields in struct declaration order, which is the check order.
	fe := fieldErrs[0]
	switch fe.Field() {
	case "modules":
		msg := "modules must be a non-empty array"
		if m.modulesErr != nil {
			return newError(KindManifestValidation, msg, m.modulesErr)
		}
		return newError(KindManifestValidation, msg, nil)
	default:
		return newError(KindManifestValidation, fe.Field()+" is required and must be a non-empty string", nil)
	}
}
