// Package validation checks entity structs against their validation tags.
// It uses the go-playground/validator library and maps failures onto the
// apperrors taxonomy so repositories can reject invalid writes uniformly.
package validation

import (
	"fmt"
	"regexp"

	"github.com/colabhub/colabhub/internal/apperrors"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func init() {
	// The "entity_id" tag accepts UUID-shaped and other opaque identifiers:
	// letters, digits, hyphens and underscores only.
	err := validate.RegisterValidation("entity_id", func(fl validator.FieldLevel) bool {
		if fl.Field().String() == "" {
			// Empty values are the 'required' tag's concern.
			return true
		}

		re := regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

		return re.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("failed to register entity_id validation: %v", err))
	}
}

// Struct validates s against its tags. On failure it returns a
// *apperrors.ValidationError naming the entity kind and every failed field.
func Struct(entity string, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var messages []string

	for _, fieldErr := range err.(validator.ValidationErrors) {
		var message string

		switch fieldErr.Tag() {
		case "entity_id":
			message = fmt.Sprintf(
				"field '%s' must contain only letters, numbers, hyphens, and underscores",
				fieldErr.Field(),
			)
		default:
			message = fmt.Sprintf(
				"field '%s' failed on the '%s' tag",
				fieldErr.Field(),
				fieldErr.Tag(),
			)
		}
		messages = append(messages, message)
	}

	return &apperrors.ValidationError{Entity: entity, Messages: messages}
}
