package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field errors name fields by their koanf key so messages match the YAML
// and environment variable names operators actually edit.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		key, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if key == "" || key == "-" {
			return fld.Name
		}

		return key
	})

	return v
}()

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "config validation failed:\n  " + strings.Join(e.Problems, "\n  ")
}

// Validate checks c against its struct tags. The service refuses to start
// on any failure.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &ValidationError{Problems: make([]string, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Problems = append(out.Problems, describe(fe))
	}

	return out
}

// ruleText renders one failed rule. The argument is the rule parameter.
var ruleText = map[string]func(param string) string{
	"required":    func(string) string { return "is required" },
	"required_if": func(p string) string { return "is required when " + p },
	"min":         func(p string) string { return "must be at least " + p },
	"max":         func(p string) string { return "must be at most " + p },
	"oneof":       func(p string) string { return "must be one of: " + p },
	"url":         func(string) string { return "must be a valid URL" },
}

func describe(fe validator.FieldError) string {
	key := keyPath(fe.Namespace())

	if text, ok := ruleText[fe.Tag()]; ok {
		return key + " " + text(fe.Param())
	}

	return key + " failed validation: " + fe.Tag()
}

// keyPath turns "Config.server.port" into "server.port".
func keyPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		rest = namespace
	}

	return strings.ToLower(rest)
}
