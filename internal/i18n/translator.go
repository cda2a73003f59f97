package i18n

import (
	"fmt"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/id"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	id_translations "github.com/go-playground/validator/v10/translations/id"
)

// Message keys.
const (
	KeyUnknownSource = "activity.unknown_source"
)

var catalog = map[string]map[string]string{
	"en": {
		KeyUnknownSource: "Unknown source",
	},
	"id": {
		KeyUnknownSource: "Sumber tidak diketahui",
	},
}

// Translator resolves message keys for a locale, falling back to the default locale.
type Translator struct {
	universal     *ut.UniversalTranslator
	defaultLocale string
}

// New builds a translator for the bundled locales. Unsupported default
// locales fall back to English.
func New(defaultLocale string) (*Translator, error) {
	english := en.New()
	universal := ut.New(english, english, id.New())

	for locale, messages := range catalog {
		trans, ok := universal.GetTranslator(locale)
		if !ok {
			return nil, fmt.Errorf("locale %q not registered", locale)
		}
		for key, text := range messages {
			if err := trans.Add(key, text, false); err != nil {
				return nil, fmt.Errorf("add %s/%s: %w", locale, key, err)
			}
		}
	}

	normalized := normalizeLocale(defaultLocale)
	if _, ok := catalog[normalized]; !ok {
		normalized = "en"
	}

	return &Translator{universal: universal, defaultLocale: normalized}, nil
}

// DefaultLocale reports the locale used when none is requested.
func (t *Translator) DefaultLocale() string {
	return t.defaultLocale
}

// Translate returns the message for key in locale. Unknown keys come back unchanged.
func (t *Translator) Translate(locale, key string) string {
	text, err := t.translator(locale).T(key)
	if err != nil || text == "" {
		return key
	}
	return text
}

// RegisterValidation installs validator error messages for every bundled locale.
func (t *Translator) RegisterValidation(validate *validator.Validate) error {
	english, _ := t.universal.GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(validate, english); err != nil {
		return fmt.Errorf("register en validation messages: %w", err)
	}
	indonesian, _ := t.universal.GetTranslator("id")
	if err := id_translations.RegisterDefaultTranslations(validate, indonesian); err != nil {
		return fmt.Errorf("register id validation messages: %w", err)
	}

	for locale, text := range notBlankMessages {
		trans, _ := t.universal.GetTranslator(locale)
		if err := validate.RegisterTranslation("notblank", trans, addTranslation("notblank", text), translateField); err != nil {
			return fmt.Errorf("register %s notblank message: %w", locale, err)
		}
	}
	return nil
}

var notBlankMessages = map[string]string{
	"en": "{0} must not be blank",
	"id": "{0} tidak boleh kosong",
}

func addTranslation(tag, text string) validator.RegisterTranslationsFunc {
	return func(trans ut.Translator) error {
		return trans.Add(tag, text, true)
	}
}

func translateField(trans ut.Translator, fieldErr validator.FieldError) string {
	text, err := trans.T(fieldErr.Tag(), fieldErr.Field())
	if err != nil {
		return fieldErr.Error()
	}
	return text
}

// ValidationMessages flattens validator errors into field -> message for locale.
func (t *Translator) ValidationMessages(locale string, errs validator.ValidationErrors) map[string]string {
	trans := t.translator(locale)
	messages := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		messages[fieldPath(fieldErr)] = fieldErr.Translate(trans)
	}
	return messages
}

func (t *Translator) translator(locale string) ut.Translator {
	candidates := []string{normalizeLocale(locale), t.defaultLocale}
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if trans, ok := t.universal.GetTranslator(candidate); ok {
			return trans
		}
	}
	return t.universal.GetFallback()
}

// Supported maps a locale or language tag such as "id-ID" onto a bundled
// locale. ok is false when no bundled locale matches.
func Supported(locale string) (string, bool) {
	normalized := normalizeLocale(locale)
	_, ok := catalog[normalized]
	return normalized, ok
}

// LanguageTags lists the tags offered during Accept-Language negotiation.
// Regional ranges such as id-ID match their base tag.
func LanguageTags() []string {
	return []string{"en", "id"}
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if idx := strings.IndexAny(locale, "-_"); idx > 0 {
		locale = locale[:idx]
	}
	return locale
}

func fieldPath(fieldErr validator.FieldError) string {
	namespace := fieldErr.Namespace()
	if idx := strings.Index(namespace, "."); idx >= 0 {
		namespace = namespace[idx+1:]
	}
	return strings.ToLower(namespace)
}
