package core

import "github.com/ansycloud/console/sdk/internal/restmachinery"

// APIClient is the general interface for the platform's backend API. It does
// little more than expose functions for obtaining more specialized clients for
// different areas of concern, like Sites or Scripts.
type APIClient interface {
	// Sites returns a specialized client for reading Sites.
	Sites() SitesClient
	// Scripts returns a specialized client for reading and running Scripts.
	Scripts() ScriptsClient
	// Executions returns a specialized client for reading Execution history.
	Executions() ExecutionsClient
	// Community returns a specialized client for reading the community board.
	Community() CommunityClient
}

type apiClient struct {
	sitesClient      SitesClient
	scriptsClient    ScriptsClient
	executionsClient ExecutionsClient
	communityClient  CommunityClient
}

// NewAPIClient returns an APIClient whose requests are all sent through
// httpClient. For anything other than the public community board, that should
// be the authenticated request wrapper.
func NewAPIClient(
	apiAddress string,
	httpClient restmachinery.Doer,
) APIClient {
	return &apiClient{
		sitesClient:      NewSitesClient(apiAddress, httpClient),
		scriptsClient:    NewScriptsClient(apiAddress, httpClient),
		executionsClient: NewExecutionsClient(apiAddress, httpClient),
		communityClient:  NewCommunityClient(apiAddress, httpClient),
	}
}

func (a *apiClient) Sites() SitesClient {
	return a.sitesClient
}

func (a *apiClient) Scripts() ScriptsClient {
	return a.scriptsClient
}

func (a *apiClient) Executions() ExecutionsClient {
	return a.executionsClient
}

func (a *apiClient) Community() CommunityClient {
	return a.communityClient
}
