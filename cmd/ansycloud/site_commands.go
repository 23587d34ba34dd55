package main

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/urfave/cli/v2"
)

func newSiteCommand() *cli.Command {
	return &cli.Command{
		Name:  "site",
		Usage: "Manage sites",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Retrieve all sites",
				Flags: []cli.Flag{
					cliFlagOutput,
				},
				Action: siteList,
			},
		},
	}
}

func siteList(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c, true)
	if err != nil {
		return err
	}

	sites, err := client.Sites().List(c.Context)
	if err != nil {
		return err
	}

	if len(sites.Items) == 0 {
		fmt.Fprintln(c.App.Writer, "No sites found.")
		return nil
	}

	return writeOutput(
		c.App.Writer,
		output,
		sites,
		[]interface{}{"NAME", "MASTER", "MASTER IP", "SLAVE IPS"},
		func(table *uitable.Table) {
			for _, site := range sites.Items {
				table.AddRow(
					site.SiteName,
					orDefault(site.MasterName, "No master"),
					site.MasterIP,
					orDefault(strings.Join(site.SlaveIPs, ", "), "No slaves"),
				)
			}
		},
	)
}
