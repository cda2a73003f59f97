package i18n

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/stretchr/testify/require"
)

func TestTranslatorUnknownSource(t *testing.T) {
	translator, err := New("en")
	require.NoError(t, err)

	require.Equal(t, "Unknown source", translator.Translate("en", KeyUnknownSource))
	require.Equal(t, "Sumber tidak diketahui", translator.Translate("id-ID", KeyUnknownSource))
	require.Equal(t, "Unknown source", translator.Translate("fr", KeyUnknownSource), "unsupported locale uses default")
	require.Equal(t, "missing.key", translator.Translate("en", "missing.key"))
}

func TestTranslatorDefaultLocaleFallsBackToEnglish(t *testing.T) {
	translator, err := New("xx")
	require.NoError(t, err)
	require.Equal(t, "en", translator.DefaultLocale())

	indonesian, err := New("id")
	require.NoError(t, err)
	require.Equal(t, "Sumber tidak diketahui", indonesian.Translate("", KeyUnknownSource))
}

func TestSupported(t *testing.T) {
	locale, ok := Supported("id-ID")
	require.True(t, ok)
	require.Equal(t, "id", locale)

	locale, ok = Supported(" EN ")
	require.True(t, ok)
	require.Equal(t, "en", locale)

	_, ok = Supported("de")
	require.False(t, ok)
}

func TestValidationMessages(t *testing.T) {
	translator, err := New("en")
	require.NoError(t, err)

	validate := validator.New(validator.WithRequiredStructEnabled())
	require.NoError(t, translator.RegisterValidation(validate))

	type payload struct {
		Event string `validate:"required"`
	}

	err = validate.Struct(payload{})
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	messages := translator.ValidationMessages("en", validationErrors)
	require.Contains(t, messages, "event")
	require.Contains(t, messages["event"], "required")
}

func TestValidationMessagesForBlankValues(t *testing.T) {
	translator, err := New("en")
	require.NoError(t, err)

	validate := validator.New(validator.WithRequiredStructEnabled())
	require.NoError(t, validate.RegisterValidation("notblank", validators.NotBlank))
	require.NoError(t, translator.RegisterValidation(validate))

	type payload struct {
		Event string `validate:"required,notblank"`
	}

	err = validate.Struct(payload{Event: "   "})
	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	require.Equal(t, "Event must not be blank", translator.ValidationMessages("en", validationErrors)["event"])
	require.Equal(t, "Event tidak boleh kosong", translator.ValidationMessages("id", validationErrors)["event"])
}
