package authn

import (
	"context"
	"crypto/tls"
	"net/http"

	"github.com/ansycloud/console/sdk/internal/restmachinery"
)

// RegistrationClient creates new user accounts. Registration needs no
// session.
type RegistrationClient interface {
	Register(context.Context, Credentials) error
}

type registrationClient struct {
	*restmachinery.BaseClient
}

// NewRegistrationClient returns a client for creating user accounts with the
// API server at the specified address.
func NewRegistrationClient(
	apiAddress string,
	allowInsecure bool,
) RegistrationClient {
	return &registrationClient{
		BaseClient: &restmachinery.BaseClient{
			APIAddress: apiAddress,
			HTTPClient: &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{
						InsecureSkipVerify: allowInsecure,
					},
				},
			},
		},
	}
}

func (r *registrationClient) Register(
	ctx context.Context,
	creds Credentials,
) error {
	return r.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:     http.MethodPost,
			Path:       "api/auth/register",
			ReqBodyObj: creds,
		},
	)
}
