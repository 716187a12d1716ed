package authclient

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
)

// Identity is the minimal user-identifying record returned by the backend.
// All three fields must be present for the identity to be usable; a partial
// identity on a successful response is a data-integrity failure, not a
// partial session.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Validate checks the identity for completeness.
func (i Identity) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.ID, validation.Required),
		validation.Field(&i.Username, validation.Required),
		validation.Field(&i.Email, validation.Required),
	)
}

// Session pairs an authentication token with the identity it authorizes. A
// session exists in durable storage if and only if the state machine is in
// StateAuthenticated.
type Session struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// Validate checks the session carries a token and a complete identity.
func (s Session) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Token, validation.Required),
		validation.Field(&s.User),
	)
}

func (s Session) String() string {
	return fmt.Sprintf("session user=%s id=%d token=****", s.User.Username, s.User.ID)
}
