package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localedata embed.FS

const (
	En = "en"
	Ru = "ru"
)

// SupportedLocales is the menu order of the bundled locale files
var SupportedLocales = []string{En, Ru}

// Catalog maps (message key, locale) to a template. It is read-only after
// construction and safe for concurrent use.
type Catalog struct {
	bundle        *i18n.Bundle
	defaultLocale string
	locales       []string
	messages      map[string]map[string]string
	localizers    map[string]*i18n.Localizer
	validation    *ValidationResult
}

// LoadCatalog loads the embedded locale files
func LoadCatalog(defaultLocale string) (*Catalog, error) {
	return NewCatalog(localedata, defaultLocale, SupportedLocales...)
}

// NewCatalog loads locales/<code>.yaml from fsys for every code and validates
// the result. A key from Keys without a default-locale entry is an error.
func NewCatalog(fsys fs.FS, defaultLocale string, locales ...string) (*Catalog, error) {
	if len(locales) == 0 {
		return nil, fmt.Errorf("no locales configured")
	}

	tag, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}

	c := &Catalog{
		bundle:        i18n.NewBundle(tag),
		defaultLocale: defaultLocale,
		locales:       make([]string, 0, len(locales)),
		messages:      make(map[string]map[string]string, len(locales)),
		localizers:    make(map[string]*i18n.Localizer, len(locales)),
	}
	c.bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	for _, code := range locales {
		if _, dup := c.messages[code]; dup {
			return nil, fmt.Errorf("locale %q listed twice", code)
		}

		filename := path.Join("locales", code+".yaml")
		data, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to load translation data: %s: %w", filename, err)
		}

		var messages map[string]string
		if err := yaml.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
		}

		if _, err := c.bundle.ParseMessageFileBytes(data, filename); err != nil {
			return nil, fmt.Errorf("failed to register %s: %w", filename, err)
		}

		c.locales = append(c.locales, code)
		c.messages[code] = messages
	}

	if _, ok := c.messages[defaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q is not one of %v", defaultLocale, c.locales)
	}

	for _, code := range c.locales {
		c.localizers[code] = i18n.NewLocalizer(c.bundle, code, defaultLocale)
	}

	c.validation = c.Validate(Keys)
	if fatal := c.validation.Fatal(); len(fatal) > 0 {
		return nil, fmt.Errorf("locale catalog is incomplete: %s", joinErrors(fatal))
	}

	return c, nil
}

// Locales returns the loaded locale codes in menu order
func (c *Catalog) Locales() []string {
	return c.locales
}

// DefaultLocale returns the fallback locale
func (c *Catalog) DefaultLocale() string {
	return c.defaultLocale
}

// IsSupported reports whether the catalog has a file for the locale code
func (c *Catalog) IsSupported(code string) bool {
	_, ok := c.messages[code]
	return ok
}

// Validation returns the result of the startup validation, including warnings
func (c *Catalog) Validation() *ValidationResult {
	return c.validation
}

// Render returns the template for key in locale, executed with data.
// Unsupported locales and keys missing from a locale fall back to the default
// locale. A key unknown to every locale renders as the key itself.
func (c *Catalog) Render(key, locale string, data map[string]interface{}) string {
	localizer, ok := c.localizers[locale]
	if !ok {
		localizer = c.localizers[c.defaultLocale]
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
	})
	if err != nil {
		var notFound *i18n.MessageNotFoundErr
		if errors.As(err, &notFound) && msg != "" {
			return msg
		}
		return key
	}

	return msg
}

// Has reports whether locale has its own entry for key, without fallback
func (c *Catalog) Has(key, locale string) bool {
	_, ok := c.messages[locale][key]
	return ok
}

func joinErrors(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Message)
	}
	return strings.Join(parts, "; ")
}
