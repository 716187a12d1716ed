package authclient

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// defaultPhoneRegion is assumed for phone numbers given without a country
// prefix.
const defaultPhoneRegion = "US"

// Credentials are transient login inputs. They are used only as call input
// and never persisted.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate checks the credentials before any network call.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username, validation.Required),
		validation.Field(&c.Password, validation.Required),
	)
}

// RegistrationData is the registration payload. ConfirmPassword and Extra
// never leave the client; Extra lets hosts forward optional backend fields
// without the client enumerating them.
type RegistrationData struct {
	Username        string         `json:"username"`
	Email           string         `json:"email"`
	Password        string         `json:"password"`
	ConfirmPassword string         `json:"-"`
	Phone           string         `json:"phone,omitempty"`
	Extra           map[string]any `json:"-"`
}

// Validate checks the registration payload, including password confirmation,
// before any network call.
func (r RegistrationData) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 150)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
		validation.Field(&r.Phone, validation.By(validatePhoneNumber)),
	)
}

// NormalizedPhone returns the E.164 rendering of Phone, or the raw value when
// it does not parse. Empty stays empty.
func (r RegistrationData) NormalizedPhone() string {
	if r.Phone == "" {
		return ""
	}

	num, err := phonenumbers.Parse(r.Phone, defaultPhoneRegion)
	if err != nil {
		return r.Phone
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}

// ValidateStringEquals builds a rule asserting the value matches str.
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

func validatePhoneNumber(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	num, err := phonenumbers.Parse(s, defaultPhoneRegion)
	if err != nil {
		return errors.New("must be a valid phone number")
	}

	if !phonenumbers.IsValidNumber(num) {
		return errors.New("must be a valid phone number")
	}

	return nil
}
