package core

import (
	"context"
	"net/http"

	"github.com/ansycloud/console/sdk/internal/restmachinery"
)

// Site is a named group of servers: one master and any number of slaves.
type Site struct {
	// SiteName is the Site's unique name.
	SiteName string `json:"siteName"`
	// MasterName is the name of the Site's master server, if it has one.
	MasterName string `json:"masterName,omitempty"`
	// MasterIP is the address of the Site's master server, if it has one.
	MasterIP string `json:"masterIP,omitempty"`
	// SlaveIPs are the addresses of the Site's slave servers.
	SlaveIPs []string `json:"slaveIPs,omitempty"`
}

// SiteList is an ordered list of Sites.
type SiteList struct {
	Items []Site `json:"sites"`
}

// SitesClient is the specialized client for reading Sites.
type SitesClient interface {
	// List returns every Site visible to the current user.
	List(context.Context) (SiteList, error)
}

type sitesClient struct {
	*restmachinery.BaseClient
}

// NewSitesClient returns a specialized client for reading Sites. Requests are
// sent through httpClient, which is normally the authenticated request
// wrapper.
func NewSitesClient(
	apiAddress string,
	httpClient restmachinery.Doer,
) SitesClient {
	return &sitesClient{
		BaseClient: &restmachinery.BaseClient{
			APIAddress: apiAddress,
			HTTPClient: httpClient,
		},
	}
}

func (s *sitesClient) List(ctx context.Context) (SiteList, error) {
	sites := SiteList{}
	items := []Site{}
	err := executeListRequest(
		ctx,
		s.BaseClient,
		restmachinery.OutboundRequest{
			Method: http.MethodGet,
			Path:   "api/site/site",
		},
		&sites,
		&items,
	)
	if err != nil {
		return sites, err
	}
	if sites.Items == nil {
		sites.Items = items
	}
	return sites, nil
}
