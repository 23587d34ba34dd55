package console

import (
	"context"

	"github.com/ansycloud/console/sdk/authn"
	"github.com/ansycloud/console/sdk/core"
	"github.com/pkg/errors"
)

// New builds the process-wide session described by the config, starts
// resolving it, and returns a Server bound to it. The session's background
// refresh, if any, runs until ctx is canceled.
func New(ctx context.Context, config Config) (Server, error) {
	marker, err := authn.NewFileMarker(config.MarkerPath())
	if err != nil {
		return nil, errors.Wrap(err, "error locating session marker")
	}
	store, err := authn.NewStore(
		config.APIAddress(),
		marker,
		&authn.StoreOptions{AllowInsecure: config.IgnoreAPICertWarnings()},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating session store")
	}
	store.Init(ctx)
	return NewWithSession(
		config,
		store,
		authn.NewRegistrationClient(
			config.APIAddress(),
			config.IgnoreAPICertWarnings(),
		),
	)
}

// NewWithSession returns a Server bound to an existing session.
func NewWithSession(
	config Config,
	session Session,
	registration authn.RegistrationClient,
) (Server, error) {
	renderer, err := NewRenderer(session, config.LoginPath())
	if err != nil {
		return nil, err
	}
	guard := authn.NewGuard(
		session,
		&authn.GuardOptions{LoginPath: config.LoginPath()},
	)
	apiClient := core.NewAPIClient(
		config.APIAddress(),
		authn.NewClient(
			session,
			&authn.ClientOptions{
				APIAddress:    config.APIAddress(),
				AllowInsecure: config.IgnoreAPICertWarnings(),
				Navigator:     requestNavigator,
				LoginPath:     config.LoginPath(),
			},
		),
	)
	baseEndpoints := &BaseEndpoints{
		Renderer: renderer,
		Guard:    guard,
	}
	return NewServer(
		config,
		baseEndpoints,
		newCookieGate(session, config.RefreshCookieName(), config.LoginPath()),
		[]Endpoints{
			&authEndpoints{
				BaseEndpoints: baseEndpoints,
				session:       session,
				registration:  registration,
				loginPath:     config.LoginPath(),
			},
			&publicEndpoints{
				BaseEndpoints:   baseEndpoints,
				communityClient: apiClient.Community(),
			},
			&sitesEndpoints{
				BaseEndpoints: baseEndpoints,
				sitesClient:   apiClient.Sites(),
			},
			&scriptsEndpoints{
				BaseEndpoints:    baseEndpoints,
				scriptsClient:    apiClient.Scripts(),
				executionsClient: apiClient.Executions(),
			},
		},
	), nil
}
