package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration against its struct tags and cross-field
// rules. Call after SetDefaults.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := registerCustomValidators(v); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}

	if err := v.Struct(c); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validate config: %w", err)
	}

	if c.TransformerBee.ClientID == "" && c.TransformerBee.ClientSecret != "" {
		return fmt.Errorf("invalid configuration: transformerbee.client_secret is set but transformerbee.client_id is empty")
	}
	return nil
}

// registerCustomValidators adds the validations the struct tags reference.
func registerCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("origin_list", validateOriginList)
}

// validateOriginList accepts a comma-separated list of origins, each with an
// http or https scheme and a host.
func validateOriginList(fl validator.FieldLevel) bool {
	for _, origin := range strings.Split(fl.Field().String(), ",") {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			return false
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return false
		}
	}
	return true
}

// formatValidationErrors turns validator errors into a readable message
// naming each offending field.
func formatValidationErrors(errs validator.ValidationErrors) error {
	var parts []string
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("%s failed %q validation", e.Namespace(), e.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(parts, "; "))
}
