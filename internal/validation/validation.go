package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	}
}

// FieldError describes one rejected request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

var birthdayLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05.000Z07:00",
}

var messages = map[string]string{
	"Name.required":     "Name is required",
	"Name.notblank":     "Name is required",
	"Email.required":    "Email does not appear to be valid",
	"Email.email":       "Email does not appear to be valid",
	"Password.required": "Password is required",
	"Password.max":      "Password must be at most 72 bytes",
	"Birthday.required": "Birthday is required",
}

// FromBinding converts gin/validator binding errors into field errors.
// ok is false when err is not a validation failure (for example malformed JSON).
func FromBinding(err error) (fields []FieldError, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	for _, fe := range verrs {
		msg, found := messages[fe.Field()+"."+fe.Tag()]
		if !found {
			msg = fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
		}
		field := FieldError{Field: fe.Field(), Message: msg}
		// Never echo secrets back.
		if fe.Field() != "Password" {
			if s, isString := fe.Value().(string); !isString || s != "" {
				field.Value = fe.Value()
			}
		}
		fields = append(fields, field)
	}
	return fields, true
}

// PasswordTooLong is reported when a password exceeds the bcrypt input limit in bytes.
func PasswordTooLong() FieldError {
	return FieldError{Field: "Password", Message: messages["Password.max"]}
}

// ParseBirthday accepts a calendar date or an RFC3339 timestamp.
func ParseBirthday(raw string) (time.Time, *FieldError) {
	raw = strings.TrimSpace(raw)
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, &FieldError{Field: "Birthday", Message: "Birthday is required", Value: raw}
}
