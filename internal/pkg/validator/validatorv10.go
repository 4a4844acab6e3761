package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

// Password length bounds. 72 is the bcrypt input ceiling.
const (
	PasswordMinLen = 8
	PasswordMaxLen = 72
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// V10ValidationError is a field-to-message map returned when validation fails.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

// First returns the message of the alphabetically first field, for callers
// that can only surface a single line.
func (vs V10ValidationError) First() string {
	keys := lo.Keys(vs)
	if len(keys) == 0 {
		return ""
	}

	return vs[lo.Min(keys)]
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(fieldName)

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerPassword(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerAlphaSpace(validate, enTrans); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var validateErrs validator.ValidationErrors
	if !errors.As(err, &validateErrs) {
		return err
	}

	errV10 := make(V10ValidationError, len(validateErrs))
	for _, fe := range validateErrs {
		errV10[fe.Field()] = fe.Translate(v.translator)
	}

	return errV10
}

// fieldName prefers the json tag, then the form tag, then the snake-cased Go name.
func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}

	return lo.SnakeCase(fld.Name)
}

func registerPassword(validate *validator.Validate, enTrans ut.Translator) error {
	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		p, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		return len(p) >= PasswordMinLen && len(p) <= PasswordMaxLen
	})
	if err != nil {
		return err
	}

	return registerMessage(validate, enTrans, "password",
		fmt.Sprintf("{0} must be %d-%d characters", PasswordMinLen, PasswordMaxLen))
}

// alphaspace accepts letters, spaces, apostrophes, dots and hyphens, as found in personal names.
func registerAlphaSpace(validate *validator.Validate, enTrans ut.Translator) error {
	err := validate.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}

		for _, r := range s {
			if !unicode.IsLetter(r) && r != ' ' && r != '\'' && r != '-' && r != '.' {
				return false
			}
		}
		return true
	})
	if err != nil {
		return err
	}

	return registerMessage(validate, enTrans, "alphaspace", "{0} can only contain letters and spaces")
}

// registerMessage replaces any built-in English translation for tag.
func registerMessage(validate *validator.Validate, enTrans ut.Translator, tag, msg string) error {
	return validate.RegisterTranslation(tag, enTrans,
		func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				slog.Warn("failed to translate validation error", "tag", fe.Tag(), "error", err)
				return fe.Error()
			}
			return t
		},
	)
}
