package main

import "github.com/urfave/cli/v2"

const (
	flagDateRange = "date-range"
	flagDryRun    = "dry-run"
	flagID        = "id"
	flagInsecure  = "insecure"
	flagName      = "name"
	flagOutput    = "output"
	flagPage      = "page"
	flagPassword  = "password"
	flagPort      = "port"
	flagServer    = "server"
	flagStatus    = "status"
	flagTarget    = "target"
	flagUsername  = "username"
	flagYes       = "yes"
)

var (
	cliFlagOutput = &cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage: "Return output in the specified format; supported formats: table, " +
			"yaml, json",
		Value: "table",
	}
	cliFlagYes = &cli.BoolFlag{
		Name:    flagYes,
		Aliases: []string{"y"},
		Usage:   "Non-interactively confirm",
	}
)
