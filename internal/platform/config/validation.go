package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// databaseSchemes lists the URL prefixes the storage layer can open.
var databaseSchemes = []string{
	"sqlite://",
	"postgres://",
	"postgresql://",
	"mysql://",
	"mysql+",
	"jdbc:mysql://",
}

var validate = newValidator()

// newValidator returns a validator that names fields by their koanf keys, so
// errors point at the setting as it is written in YAML or APP_ variables.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	// Registration only fails for an empty tag or a nil func.
	_ = v.RegisterValidation("dburl", func(fl validator.FieldLevel) bool {
		return supportedDatabaseURL(fl.Field().String())
	})

	return v
}

func supportedDatabaseURL(raw string) bool {
	for _, prefix := range databaseSchemes {
		if strings.HasPrefix(raw, prefix) {
			return true
		}
	}

	return false
}

// Validate checks the configuration. The service refuses to start on error.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	return nil
}

func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	lines := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		lines = append(lines, formatFieldError(e))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

func formatFieldError(e validator.FieldError) string {
	field := formatFieldPath(e.Namespace())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", field, formatCondition(e.Param()))
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "url":
		return field + " must be a valid URL"
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", field, snakeCase(e.Param()))
	case "dburl":
		return fmt.Sprintf("%s has an unsupported scheme (want one of %s)", field, strings.Join(databaseSchemes, " "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}

// formatCondition turns a required_if parameter such as "Enabled true" into
// "enabled is true".
func formatCondition(param string) string {
	field, value, ok := strings.Cut(param, " ")
	if !ok {
		return param
	}

	return fmt.Sprintf("%s is %s", snakeCase(field), value)
}

// snakeCase converts a Go field name to its koanf key: InitialInterval
// becomes initial_interval.
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	return b.String()
}

// formatFieldPath drops the root struct name: "Config.server.port" becomes
// "server.port".
func formatFieldPath(namespace string) string {
	_, path, ok := strings.Cut(namespace, ".")
	if !ok {
		return strings.ToLower(namespace)
	}

	return strings.ToLower(path)
}
