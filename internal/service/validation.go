package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"

	"github.com/noah-isme/easyaudit-api/internal/i18n"
	"github.com/noah-isme/easyaudit-api/internal/models"
)

// DefaultMaxPropertiesBytes bounds the encoded size of an activity's properties.
const DefaultMaxPropertiesBytes = 64 * 1024

// ErrValidation marks every validation failure.
var ErrValidation = errors.New("activity validation failed")

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidator builds a validator that reports fields by their JSON names.
func NewValidator(translator *i18n.Translator) (*validator.Validate, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	if err := validate.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return nil, err
	}
	if translator != nil {
		if err := translator.RegisterValidation(validate); err != nil {
			return nil, err
		}
	}
	return validate, nil
}

// ValidateActivityInput rejects input that must not reach the store. The
// event is measured as given; reference halves are trimmed in place first.
func ValidateActivityInput(validate *validator.Validate, translator *i18n.Translator, locale string, input *models.ActivityInput, maxPropertiesBytes int) error {
	trimReference(input.Subject)
	trimReference(input.Source)

	fields := map[string]string{}
	if err := validate.Struct(input); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return err
		}
		if translator != nil {
			fields = translator.ValidationMessages(locale, validationErrors)
		} else {
			for _, fieldErr := range validationErrors {
				fields[strings.ToLower(fieldErr.Field())] = fieldErr.Error()
			}
		}
	}

	if maxPropertiesBytes <= 0 {
		maxPropertiesBytes = DefaultMaxPropertiesBytes
	}
	if len(input.Properties) > 0 {
		encoded, err := json.Marshal(input.Properties)
		switch {
		case err != nil:
			fields["properties"] = "properties must be JSON encodable"
		case len(encoded) > maxPropertiesBytes:
			fields["properties"] = fmt.Sprintf("properties must not exceed %d bytes when encoded", maxPropertiesBytes)
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func trimReference(ref *models.Reference) {
	if ref == nil {
		return
	}
	ref.Type = strings.TrimSpace(ref.Type)
	ref.ID = strings.TrimSpace(ref.ID)
}
