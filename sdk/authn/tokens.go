package authn

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// tokenResponse captures every field name the backend has been observed to
// return an access token under.
type tokenResponse struct {
	JWTToken    string `json:"jwtToken"`
	Message     string `json:"message"`
	AccessToken string `json:"accessToken"`
	Token       string `json:"token"`
}

// accessTokenFromBody extracts an access token from a login or refresh
// response body. Fields are consulted in a fixed order: jwtToken, message,
// accessToken, token. The first non-empty one wins.
//
// TODO: Drop the fallbacks once the backend confirms jwtToken is
// authoritative.
func accessTokenFromBody(body []byte) (string, error) {
	resp := tokenResponse{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "error unmarshaling token response body")
	}
	for _, candidate := range []string{
		resp.JWTToken,
		resp.Message,
		resp.AccessToken,
		resp.Token,
	} {
		if candidate != "" {
			return candidate, nil
		}
	}
	return "", errors.New("token response body did not contain an access token")
}
