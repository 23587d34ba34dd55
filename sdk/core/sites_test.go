package core

import (
	"context"
	"net/http"
	"testing"

	"github.com/ansycloud/console/sdk"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNewSitesClient(t *testing.T) {
	client := NewSitesClient("http://localhost:8080", http.DefaultClient)
	require.IsType(t, &sitesClient{}, client)
	require.Equal(
		t,
		"http://localhost:8080",
		client.(*sitesClient).APIAddress,
	)
	require.Equal(t, http.DefaultClient, client.(*sitesClient).HTTPClient)
}

func TestSitesClientList(t *testing.T) {
	testCases := []struct {
		name       string
		statusCode int
		body       string
		assertions func(*testing.T, SiteList, error)
	}{
		{
			name:       "wrapped",
			statusCode: http.StatusOK,
			body: `{"sites":[{"siteName":"seoul","masterName":"m1",` +
				`"masterIP":"10.0.0.1","slaveIPs":["10.0.0.2","10.0.0.3"]}]}`,
			assertions: func(t *testing.T, sites SiteList, err error) {
				require.NoError(t, err)
				require.Equal(
					t,
					[]Site{
						{
							SiteName:   "seoul",
							MasterName: "m1",
							MasterIP:   "10.0.0.1",
							SlaveIPs:   []string{"10.0.0.2", "10.0.0.3"},
						},
					},
					sites.Items,
				)
			},
		},
		{
			name:       "bare array",
			statusCode: http.StatusOK,
			body:       `[{"siteName":"busan"}]`,
			assertions: func(t *testing.T, sites SiteList, err error) {
				require.NoError(t, err)
				require.Equal(t, []Site{{SiteName: "busan"}}, sites.Items)
			},
		},
		{
			name:       "empty body",
			statusCode: http.StatusOK,
			body:       ``,
			assertions: func(t *testing.T, sites SiteList, err error) {
				require.NoError(t, err)
				require.Empty(t, sites.Items)
			},
		},
		{
			name:       "forbidden",
			statusCode: http.StatusForbidden,
			body:       `{"message":"nope"}`,
			assertions: func(t *testing.T, _ SiteList, err error) {
				require.IsType(t, &sdk.ErrAuthorization{}, errors.Cause(err))
			},
		},
		{
			name:       "unexpected status",
			statusCode: http.StatusBadGateway,
			body:       ``,
			assertions: func(t *testing.T, _ SiteList, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "received 502")
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			server := newJSONServer(
				t,
				http.MethodGet,
				"/api/site/site",
				testCase.statusCode,
				testCase.body,
				nil,
			)
			client := NewSitesClient(server.URL, http.DefaultClient)
			sites, err := client.List(context.Background())
			testCase.assertions(t, sites, err)
		})
	}
}
