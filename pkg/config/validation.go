package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom
// rules.
//
// Struct tags cover field-level constraints; custom rules cover the
// cross-field invariants tags cannot express (name uniqueness, profile
// to backend references).
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	backendNames := make(map[string]bool)
	for i, b := range cfg.Backends {
		if backendNames[b.Name] {
			return fmt.Errorf("backends[%d]: duplicate backend name %q", i, b.Name)
		}
		backendNames[b.Name] = true
	}

	profileNames := make(map[string]bool)
	for i, p := range cfg.Profiles {
		if profileNames[p.Name] {
			return fmt.Errorf("profiles[%d]: duplicate profile name %q", i, p.Name)
		}
		profileNames[p.Name] = true

		if !backendNames[p.Backend] {
			return fmt.Errorf("profiles[%d]: profile %q references unknown backend %q", i, p.Name, p.Backend)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
