package main

import (
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ansycloud/console/sdk/authn"
	"github.com/ansycloud/console/sdk/core"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func getAPIAddress(c *cli.Context) (string, error) {
	address := strings.TrimSuffix(c.String(flagServer), "/")
	if address == "" {
		return "", errors.Errorf(
			"no API server address was specified; please use --%s or set "+
				"ANSYCLOUD_SERVER",
			flagServer,
		)
	}
	return address, nil
}

// getClient returns a client for the API server whose address was given with
// the --server flag. The session lives only as long as the command. If
// requireLogin is false, the user is logged in only if they've named
// themselves with the --username flag.
func getClient(c *cli.Context, requireLogin bool) (core.APIClient, error) {
	address, err := getAPIAddress(c)
	if err != nil {
		return nil, err
	}
	insecure := c.Bool(flagInsecure)
	store, err := authn.NewStore(
		address,
		authn.NewMemoryMarker(false),
		&authn.StoreOptions{AllowInsecure: insecure},
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating session")
	}
	<-store.Init(c.Context)
	if requireLogin || c.String(flagUsername) != "" {
		creds, err := getCredentials(c)
		if err != nil {
			return nil, err
		}
		if err = store.Login(c.Context, creds); err != nil {
			return nil, err
		}
	}
	return core.NewAPIClient(
		address,
		authn.NewClient(
			store,
			&authn.ClientOptions{
				APIAddress:    address,
				AllowInsecure: insecure,
			},
		),
	), nil
}

// getCredentials collects the user's credentials from flags, prompting for
// anything that's missing.
func getCredentials(c *cli.Context) (authn.Credentials, error) {
	creds := authn.Credentials{
		Username: c.String(flagUsername),
		Password: c.String(flagPassword),
	}
	for creds.Username == "" {
		if err := survey.AskOne(
			&survey.Input{Message: "Email"},
			&creds.Username,
		); err != nil {
			return creds, err
		}
	}
	for creds.Password == "" {
		if err := survey.AskOne(
			&survey.Password{Message: "Password"},
			&creds.Password,
		); err != nil {
			return creds, err
		}
	}
	return creds, nil
}
