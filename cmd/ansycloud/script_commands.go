package main

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ansycloud/console/sdk/core"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func newScriptCommand() *cli.Command {
	return &cli.Command{
		Name:  "script",
		Usage: "Manage and run automation scripts",
		Subcommands: []*cli.Command{
			{
				Name:  "abort",
				Usage: "Abort a running execution",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagID,
						Aliases:  []string{"i"},
						Usage:    "Abort the specified execution (required)",
						Required: true,
					},
					cliFlagYes,
				},
				Action: scriptAbort,
			},
			{
				Name:  "dashboard",
				Usage: "Retrieve a script along with its servers and recent executions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagName,
						Aliases:  []string{"n"},
						Usage:    "Retrieve the specified script (required)",
						Required: true,
					},
					cliFlagOutput,
				},
				Action: scriptDashboard,
			},
			{
				Name:  "execute",
				Usage: "Run a script",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagName,
						Aliases:  []string{"n"},
						Usage:    "Run the specified script (required)",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    flagTarget,
						Aliases: []string{"t"},
						Usage: "Run on the specified server, given as IP or NAME=IP; may " +
							"be repeated; defaults to all of the script's slave servers",
					},
					&cli.BoolFlag{
						Name:  flagDryRun,
						Usage: "Check the script without changing anything on the servers",
					},
					cliFlagYes,
				},
				Action: scriptExecute,
			},
			{
				Name:  "list",
				Usage: "Retrieve all scripts",
				Flags: []cli.Flag{
					cliFlagOutput,
				},
				Action: scriptList,
			},
		},
	}
}

func scriptList(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c, true)
	if err != nil {
		return err
	}

	scripts, err := client.Scripts().List(c.Context)
	if err != nil {
		return err
	}

	if len(scripts.Items) == 0 {
		fmt.Fprintln(c.App.Writer, "No scripts found.")
		return nil
	}

	return writeOutput(
		c.App.Writer,
		output,
		scripts,
		[]interface{}{"NAME", "DESCRIPTION", "CREATED", "UPDATED"},
		func(table *uitable.Table) {
			for _, script := range scripts.Items {
				table.AddRow(
					script.ScriptName,
					orDefault(script.Description, "No description"),
					orDefault(script.CreatedAt, "N/A"),
					orDefault(script.UpdatedAt, "N/A"),
				)
			}
		},
	)
}

func scriptDashboard(c *cli.Context) error {
	name := c.String(flagName)
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c, true)
	if err != nil {
		return err
	}

	dashboard, err := client.Scripts().Dashboard(c.Context, name)
	if err != nil {
		return err
	}

	return writeOutput(
		c.App.Writer,
		output,
		dashboard,
		[]interface{}{"ROLE", "NAME", "IP", "DESCRIPTION"},
		func(table *uitable.Table) {
			for _, master := range dashboard.MasterServers {
				table.AddRow("master", master.MasterName, master.IPAddress, "")
			}
			for _, slave := range dashboard.SlaveServers {
				table.AddRow(
					"slave",
					strings.Join(slave.Tags, ","),
					slave.IPAddress,
					slave.Description,
				)
			}
		},
	)
}

// parseTargets parses servers given as IP or NAME=IP.
func parseTargets(targets []string) ([]core.ServerTarget, error) {
	servers := make([]core.ServerTarget, len(targets))
	for i, target := range targets {
		var server core.ServerTarget
		if eq := strings.Index(target, "="); eq >= 0 {
			server.Name, server.IP = target[:eq], target[eq+1:]
		} else {
			server.IP = target
		}
		if server.IP == "" {
			return nil, errors.Errorf("target %q names no IP address", target)
		}
		servers[i] = server
	}
	return servers, nil
}

func scriptExecute(c *cli.Context) error {
	name := c.String(flagName)

	servers, err := parseTargets(c.StringSlice(flagTarget))
	if err != nil {
		return err
	}

	client, err := getClient(c, true)
	if err != nil {
		return err
	}

	if len(servers) == 0 {
		dashboard, err := client.Scripts().Dashboard(c.Context, name)
		if err != nil {
			return err
		}
		for _, slave := range dashboard.SlaveServers {
			servers = append(
				servers,
				core.ServerTarget{
					IP:          slave.IPAddress,
					Description: slave.Description,
				},
			)
		}
		if len(servers) == 0 {
			return errors.Errorf("script %q has no servers to run on", name)
		}
	}

	ips := make([]string, len(servers))
	for i, server := range servers {
		ips[i] = server.IP
	}
	if confirmed, err := confirm(
		c,
		fmt.Sprintf(
			"Run script %q on %s?",
			name,
			strings.Join(ips, ", "),
		),
	); err != nil || !confirmed {
		return err
	}

	resp, err := client.Scripts().Execute(
		c.Context,
		core.ExecuteRequest{
			ScriptName: name,
			Servers:    servers,
			DryRun:     c.Bool(flagDryRun),
		},
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Started execution %q.\n", resp.ExecutionID)

	return nil
}

func scriptAbort(c *cli.Context) error {
	id := core.ID(c.String(flagID))

	if confirmed, err := confirm(
		c,
		fmt.Sprintf("Abort execution %q?", id),
	); err != nil || !confirmed {
		return err
	}

	client, err := getClient(c, true)
	if err != nil {
		return err
	}

	if err := client.Scripts().Abort(c.Context, id); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Aborted execution %q.\n", id)

	return nil
}

// confirm asks the user to confirm an action unless the --yes flag was given.
func confirm(c *cli.Context, msg string) (bool, error) {
	if c.Bool(flagYes) {
		return true, nil
	}
	confirmed := false
	if err := survey.AskOne(
		&survey.Confirm{Message: msg},
		&confirmed,
	); err != nil {
		return false, errors.Wrap(err, "error confirming action")
	}
	return confirmed, nil
}
