package notify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldError is one failed validation rule.
type FieldError struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

// ValidationError lists every rule a payload broke.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.FailedField + ":" + f.Tag
	}
	return "invalid notification: " + strings.Join(parts, ", ")
}

// Validate checks p's struct rules. Email payloads additionally require an
// email address, SMS payloads a phone number.
func Validate(p Payload) error {
	var fields []FieldError
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate notification: %w", err)
		}
		for _, fe := range verrs {
			fields = append(fields, FieldError{FailedField: fe.StructNamespace(), Tag: fe.Tag(), Value: fe.Param()})
		}
	}
	switch {
	case p.Type == ChannelSMS && p.Recipient.Phone == "":
		fields = append(fields, FieldError{FailedField: "Payload.Recipient.Phone", Tag: "required"})
	case p.Type == ChannelEmail && p.Recipient.Email == "":
		fields = append(fields, FieldError{FailedField: "Payload.Recipient.Email", Tag: "required"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
