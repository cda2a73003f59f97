package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/easyaudit-api/internal/i18n"
)

const localLocale = "locale"

// Locale picks the response locale from the lang query parameter, else by
// negotiating Accept-Language against the bundled locales.
func Locale() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if locale, ok := i18n.Supported(c.Query("lang")); ok {
			c.Locals(localLocale, locale)
			return c.Next()
		}

		if c.Get(fiber.HeaderAcceptLanguage) != "" {
			if locale, ok := i18n.Supported(c.AcceptsLanguages(i18n.LanguageTags()...)); ok {
				c.Locals(localLocale, locale)
			}
		}
		return c.Next()
	}
}

// GetLocale returns the negotiated locale, or an empty string for the default.
func GetLocale(c *fiber.Ctx) string {
	locale, _ := c.Locals(localLocale).(string)
	return locale
}
