package main

import (
	"github.com/ansycloud/console/internal/console"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func newServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the AnsyCloud web console",
		Description: "Settings not given as flags are read from CONSOLE_* " +
			"environment variables.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  flagPort,
				Usage: "Listen on the specified port; defaults to 3000",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	config, err := console.GetConfig(
		console.ConfigOverrides{
			APIAddress:            c.String(flagServer),
			IgnoreAPICertWarnings: c.Bool(flagInsecure),
			Port:                  c.Int(flagPort),
		},
	)
	if err != nil {
		return errors.Wrap(err, "error reading console configuration")
	}
	server, err := console.New(c.Context, config)
	if err != nil {
		return errors.Wrap(err, "error initializing console")
	}
	return server.ListenAndServe(c.Context)
}
