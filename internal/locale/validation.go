package locale

import (
	"fmt"
	"sort"
	"strings"
)

// Validation error types
const (
	MissingDefaultTranslation = "missing_default_translation"
	MissingTranslation        = "missing_translation"
	EmptyTranslation          = "empty_translation"
	UnusedKey                 = "unused_key"
)

// ValidationError represents a problem found in the locale files
type ValidationError struct {
	Type    string
	Message string
	Key     string
	Locale  string
	// Fatal errors stop the catalog from loading; the rest are warnings.
	Fatal bool
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// ValidationResult contains all validation errors found
type ValidationResult struct {
	Errors []ValidationError
}

// HasErrors returns true if there are any validation errors
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// Fatal returns the errors that make the catalog unusable
func (r *ValidationResult) Fatal() []ValidationError {
	var fatal []ValidationError
	for _, e := range r.Errors {
		if e.Fatal {
			fatal = append(fatal, e)
		}
	}
	return fatal
}

// Warnings returns the non-fatal errors
func (r *ValidationResult) Warnings() []ValidationError {
	var warnings []ValidationError
	for _, e := range r.Errors {
		if !e.Fatal {
			warnings = append(warnings, e)
		}
	}
	return warnings
}

// String returns a formatted string of all errors
func (r *ValidationResult) String() string {
	if !r.HasErrors() {
		return "No validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d validation errors:\n", len(r.Errors)))
	for i, err := range r.Errors {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the loaded locale files against the keys the bot renders.
//
// A key missing or blank in the default locale is fatal: there is nothing to
// fall back to. A key missing in another locale only loses its translation.
// Keys present in a file but not in keys are reported as unused.
func (c *Catalog) Validate(keys []string) *ValidationResult {
	result := &ValidationResult{}

	result.checkMissingTranslations(keys, c.messages, c.locales, c.defaultLocale)
	result.checkUnusedKeys(keys, c.messages, c.locales)

	return result
}

// checkMissingTranslations checks if all message keys have translations
func (r *ValidationResult) checkMissingTranslations(
	keys []string,
	translations map[string]map[string]string,
	locales []string,
	defaultLocale string,
) {
	for _, key := range keys {
		for _, code := range locales {
			value, exists := translations[code][key]
			isDefault := code == defaultLocale

			switch {
			case !exists:
				errType := MissingTranslation
				if isDefault {
					errType = MissingDefaultTranslation
				}
				r.Errors = append(r.Errors, ValidationError{
					Type:    errType,
					Message: fmt.Sprintf("Missing %s translation for key: %s", code, key),
					Key:     key,
					Locale:  code,
					Fatal:   isDefault,
				})
			case strings.TrimSpace(value) == "":
				r.Errors = append(r.Errors, ValidationError{
					Type:    EmptyTranslation,
					Message: fmt.Sprintf("Empty %s translation for key: %s", code, key),
					Key:     key,
					Locale:  code,
					Fatal:   isDefault,
				})
			}
		}
	}
}

// checkUnusedKeys checks for keys in translation files that are not rendered by the bot
func (r *ValidationResult) checkUnusedKeys(
	keys []string,
	translations map[string]map[string]string,
	locales []string,
) {
	keySet := make(map[string]bool, len(keys))
	for _, key := range keys {
		keySet[key] = true
	}

	for _, code := range locales {
		unused := make([]string, 0)
		for key := range translations[code] {
			if !keySet[key] {
				unused = append(unused, key)
			}
		}
		sort.Strings(unused)

		for _, key := range unused {
			r.Errors = append(r.Errors, ValidationError{
				Type:    UnusedKey,
				Message: fmt.Sprintf("Key %s exists in %s.yaml but is never rendered", key, code),
				Key:     key,
				Locale:  code,
			})
		}
	}
}
