package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError describes one rejected field, named by its JSON key.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator validates request payloads and renders English messages.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// New returns a Validator that reports fields by their json tag.
func New() (*Validator, error) {
	locale := en.New()
	uni := ut.New(locale, locale)

	trans, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	if err := entranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Validator{validate: validate, trans: trans}, nil
}

// Struct validates s. It returns nil when s is valid, the per-field failures when it is not,
// and an error only when s cannot be validated at all.
func (v *Validator) Struct(s any) ([]FieldError, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil, err
	}

	fieldErrs := make([]FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrs = append(fieldErrs, FieldError{
			Field:   fe.Field(),
			Message: fe.Translate(v.trans),
		})
	}

	return fieldErrs, nil
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
