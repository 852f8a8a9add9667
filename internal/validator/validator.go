package validator

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// TagStrongPassword is the custom tag for password strength rules.
const TagStrongPassword = "strongpassword"

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		register(v)
	}
}

// New returns a standalone validator configured like the binding engine,
// reading the same `binding` struct tags. Used by CLI tools that validate
// input outside of a request.
func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	register(v)
	return v
}

func register(v *govalidator.Validate) {
	// Use JSON tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation(TagStrongPassword, func(fl govalidator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})

	// Register English translations.
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	_ = v.RegisterTranslation(TagStrongPassword, trans,
		func(ut ut.Translator) error {
			return ut.Add(TagStrongPassword,
				"{0} must be at least 8 characters and contain an uppercase letter, a lowercase letter, a digit and a special character", true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			t, _ := ut.T(TagStrongPassword, fe.Field())
			return t
		},
	)
}

// IsStrongPassword reports whether a password has at least 8 characters with
// an uppercase letter, a lowercase letter, a digit and a special character.
func IsStrongPassword(p string) bool {
	if len([]rune(p)) < MinPasswordLength {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}

// Translate is TranslateErrors for callers outside a request, such as CLI
// tools; it flattens the field map into one message.
func Translate(err error) string {
	fields := TranslateErrors(err)
	msgs := make([]string, 0, len(fields))
	for _, m := range fields {
		msgs = append(msgs, m)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans != nil {
				fields[fe.Field()] = fe.Translate(trans)
			} else {
				fields[fe.Field()] = fe.Error()
			}
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
