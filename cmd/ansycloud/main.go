package main

import (
	"fmt"
	"os"

	"github.com/ansycloud/console/internal/signals"
	"github.com/ansycloud/console/internal/version"
	"github.com/urfave/cli/v2"
)

func main() {
	app := newApp()
	fmt.Println()
	if err := app.RunContext(signals.Context(), os.Args); err != nil {
		fmt.Printf("\n%s\n\n", err)
		os.Exit(1)
	}
	fmt.Println()
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ansycloud"
	app.Usage = "Manage sites and run automation scripts with AnsyCloud"
	app.Version = fmt.Sprintf(
		"%s -- commit %s",
		version.Version(),
		version.Commit(),
	)
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagServer,
			Aliases: []string{"s"},
			Usage:   "The address of the AnsyCloud API server",
			EnvVars: []string{"ANSYCLOUD_SERVER"},
		},
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
			Usage:   "Allow insecure API server connections when using TLS",
			EnvVars: []string{"ANSYCLOUD_INSECURE"},
		},
		&cli.StringFlag{
			Name:    flagUsername,
			Aliases: []string{"u"},
			Usage:   "Log in as the specified user (an email address)",
			EnvVars: []string{"ANSYCLOUD_USERNAME"},
		},
		&cli.StringFlag{
			Name:    flagPassword,
			Aliases: []string{"p"},
			Usage: "Specify the password for non-interactive login; if omitted, " +
				"you will be prompted",
			EnvVars: []string{"ANSYCLOUD_PASSWORD"},
		},
	}
	app.Commands = []*cli.Command{
		newCommunityCommand(),
		newExecutionCommand(),
		newRegisterCommand(),
		newScriptCommand(),
		newServeCommand(),
		newSiteCommand(),
	}
	return app
}
