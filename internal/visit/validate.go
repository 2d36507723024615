package visit

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MinContactDigits is the fewest digits a phone contact may carry.
const MinContactDigits = 10

// WalkInRequest is the payload for registering a visitor at the front desk.
// ConvertVisit turns an existing scheduled visit into a walk-in instead.
type WalkInRequest struct {
	FullName     string `json:"full_name" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Contact      string `json:"contact,omitempty" validate:"omitempty,contact"`
	Address      string `json:"address,omitempty"`
	Purpose      string `json:"purpose" validate:"required"`
	Scheduled    string `json:"scheduled_time,omitempty"`
	ConvertVisit int64  `json:"convert_visit,omitempty"`
}

// NewRequest is the payload an employee sends to invite a visitor.
type NewRequest struct {
	Purpose   string `json:"purpose" validate:"required"`
	Scheduled string `json:"scheduled_time" validate:"required"`
	Type      Type   `json:"visit_type,omitempty" validate:"omitempty,oneof=scheduled walkin"`
}

// Validator checks request payloads before they are sent to the API.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator with the contact rule registered.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("contact", validateContact)
	return &Validator{validate: v}
}

// Validate checks i and returns a readable error naming the first bad field.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "email":
		return fmt.Errorf("%s must be a valid email address", field)
	case "contact":
		return fmt.Errorf("%s must contain at least %d digits", field, MinContactDigits)
	default:
		return fmt.Errorf("%s is invalid (%s)", field, fe.Tag())
	}
}

func validateContact(fl validator.FieldLevel) bool {
	return ContactDigits(fl.Field().String()) >= MinContactDigits
}

// ContactDigits counts the digits in a phone number.
func ContactDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
