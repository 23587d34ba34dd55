package authn

import (
	"strings"

	"github.com/ansycloud/console/sdk"
)

// minPasswordLength is the shortest password the backend accepts at
// registration.
const minPasswordLength = 6

// Credentials are what a user presents to log in or to register.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidateForRegistration applies the checks the backend would otherwise
// reject a registration for, so that the user gets feedback without a round
// trip. confirmation is the password as typed a second time.
func (c Credentials) ValidateForRegistration(confirmation string) error {
	if strings.TrimSpace(c.Username) == "" {
		return &sdk.ErrBadRequest{Reason: "an email address is required"}
	}
	if c.Password != confirmation {
		return &sdk.ErrBadRequest{Reason: "passwords do not match"}
	}
	if len(c.Password) < minPasswordLength {
		return &sdk.ErrBadRequest{
			Reason: "passwords must be at least 6 characters long",
		}
	}
	return nil
}
