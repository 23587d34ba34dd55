package authn

import (
	"testing"

	"github.com/ansycloud/console/sdk"
	"github.com/stretchr/testify/require"
)

func TestValidateForRegistration(t *testing.T) {
	testCases := []struct {
		name         string
		creds        Credentials
		confirmation string
		reason       string
	}{
		{
			name:         "valid",
			creds:        Credentials{Username: "a@b.com", Password: "secret"},
			confirmation: "secret",
		},
		{
			name:         "missing username",
			creds:        Credentials{Username: "  ", Password: "secret"},
			confirmation: "secret",
			reason:       "an email address is required",
		},
		{
			name:         "mismatched confirmation",
			creds:        Credentials{Username: "a@b.com", Password: "secret"},
			confirmation: "secrets",
			reason:       "passwords do not match",
		},
		{
			name:         "short password",
			creds:        Credentials{Username: "a@b.com", Password: "five5"},
			confirmation: "five5",
			reason:       "passwords must be at least 6 characters long",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			err := testCase.creds.ValidateForRegistration(testCase.confirmation)
			if testCase.reason == "" {
				require.NoError(t, err)
				return
			}
			require.IsType(t, &sdk.ErrBadRequest{}, err)
			require.Equal(t, testCase.reason, err.(*sdk.ErrBadRequest).Reason)
		})
	}
}
