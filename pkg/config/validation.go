package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ShipFail/promptware-sub001/pkg/driver/code"
	"github.com/ShipFail/promptware-sub001/pkg/vfs"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules.
//
// Struct tags cover the declarative constraints (required fields, enum
// selectors, non-negative durations); custom rules cover what tags cannot
// express: mount-table coherence and path well-formedness.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// The mount table constructor enforces the full rule set: two-scheme
	// restriction on root and bases, unique prefixes, and no "/" entry
	// duplicating the root. Building a throwaway table is the validation.
	if _, err := code.NewMountTable(cfg.Code.RootLocation, cfg.Code.Mounts); err != nil {
		return fmt.Errorf("code: %w", err)
	}

	// Boot ingest paths must be well-formed logical paths.
	for i, p := range cfg.Boot.Ingest {
		if _, err := vfs.ParsePath(p); err != nil {
			return fmt.Errorf("boot.ingest[%d]: invalid path %q", i, p)
		}
	}

	// A non-empty origin must normalize; surfacing this at load time beats
	// failing the first storage operation.
	if cfg.Origin != "" {
		if _, err := vfs.NormalizeOrigin(cfg.Origin, cfg.Code.RootLocation); err != nil {
			return fmt.Errorf("origin: %w", err)
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly messages.
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
