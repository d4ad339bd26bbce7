package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// RegisterCustomValidators registers wept-specific validation rules.
// Must be called before validating Config.
func RegisterCustomValidators(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"storage_driver": validateStorageDriver,
		"backend_url":    validateBackendURL,
		"duration":       validateDuration,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// validateStorageDriver accepts "file", "sqlite" or "memory".
func validateStorageDriver(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "file", "sqlite", "memory":
		return true
	}
	return false
}

// validateBackendURL requires an absolute http(s) URL without query or fragment.
func validateBackendURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != "" && u.RawQuery == "" && u.Fragment == ""
}

// validateDuration accepts any non-negative time.ParseDuration string.
func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d >= 0
}

// Validate validates the Config using struct tags and cross-field rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := RegisterCustomValidators(v); err != nil {
		return err
	}

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateStoragePath(); err != nil {
		return err
	}

	return nil
}

// validateStoragePath ensures persistent drivers have somewhere to write.
func (c *Config) validateStoragePath() error {
	if c.Storage.Driver != "memory" && strings.TrimSpace(c.Storage.Path) == "" {
		return fmt.Errorf("storage.path is required for driver %q", c.Storage.Driver)
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to user-friendly messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()
	tag := e.Tag()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range (%s %s)", field, tag, e.Param())
	case "gtefield":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a valid host:port", field)
	case "storage_driver":
		return fmt.Sprintf("%s must be one of: file, sqlite, memory", field)
	case "backend_url":
		return fmt.Sprintf("%s must be an absolute http(s) URL", field)
	case "duration":
		return fmt.Sprintf("%s must be a duration like \"30s\"", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, tag)
	}
}
