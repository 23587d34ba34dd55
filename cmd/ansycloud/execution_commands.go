package main

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ansycloud/console/sdk/core"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
)

func newExecutionCommand() *cli.Command {
	return &cli.Command{
		Name:  "execution",
		Usage: "Follow script executions",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Retrieve an execution and its per-server results",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagID,
						Aliases:  []string{"i"},
						Usage:    "Retrieve the specified execution (required)",
						Required: true,
					},
					cliFlagOutput,
				},
				Action: executionGet,
			},
			{
				Name:  "list",
				Usage: "Retrieve a script's execution history",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     flagName,
						Aliases:  []string{"n"},
						Usage:    "Retrieve executions of the specified script (required)",
						Required: true,
					},
					&cli.StringFlag{
						Name: flagStatus,
						Usage: "Retrieve only executions in the specified status; one of " +
							"RUNNING, SUCCESS, FAILURE, ABORTED",
					},
					&cli.StringFlag{
						Name:  flagDateRange,
						Usage: "Retrieve only executions within the specified range, e.g. 7d",
					},
					&cli.IntFlag{
						Name:  flagPage,
						Usage: "Start at the specified page",
						Value: 1,
					},
					cliFlagOutput,
				},
				Action: executionList,
			},
		},
	}
}

func executionList(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	selector := core.ExecutionsSelector{
		ScriptName: c.String(flagName),
		Status:     core.ExecutionStatus(c.String(flagStatus)),
		DateRange:  c.String(flagDateRange),
		Page:       c.Int(flagPage),
	}
	if selector.Page < 1 {
		return errors.Errorf("--%s must be a positive integer", flagPage)
	}

	client, err := getClient(c, true)
	if err != nil {
		return err
	}

	for {
		executions, err := client.Executions().List(c.Context, selector)
		if err != nil {
			return err
		}

		if len(executions.Items) == 0 {
			fmt.Fprintln(c.App.Writer, "No executions found.")
			return nil
		}

		if err = writeOutput(
			c.App.Writer,
			output,
			executions,
			[]interface{}{"ID", "STATUS", "STARTED", "DURATION", "RESULT", "BY"},
			func(table *uitable.Table) {
				for _, execution := range executions.Items {
					var result string
					if execution.TotalCount > 0 {
						result = fmt.Sprintf(
							"%d/%d",
							execution.SuccessCount,
							execution.TotalCount,
						)
					}
					table.AddRow(
						execution.ExecutionID,
						execution.Status,
						execution.StartedAt,
						orDefault(execution.Duration, "--"),
						result,
						execution.ExecutedBy,
					)
				}
			},
		); err != nil {
			return err
		}

		if executions.Pagination == nil || !executions.Pagination.HasNext {
			break
		}

		// Exit after one page of output if this isn't a terminal
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			break
		}

		var shouldContinue bool
		fmt.Println()
		if err := survey.AskOne(
			&survey.Confirm{
				Message: fmt.Sprintf(
					"Page %d of %d. Fetch more?",
					executions.Pagination.CurrentPage,
					executions.Pagination.TotalPages,
				),
			},
			&shouldContinue,
		); err != nil {
			return errors.Wrap(
				err,
				"error confirming if user wishes to continue",
			)
		}
		fmt.Println()
		if !shouldContinue {
			break
		}

		selector.Page = executions.Pagination.CurrentPage + 1
	}

	return nil
}

func executionGet(c *cli.Context) error {
	id := core.ID(c.String(flagID))
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c, true)
	if err != nil {
		return err
	}

	execution, err := client.Executions().Get(c.Context, id)
	if err != nil {
		return err
	}

	if err = writeOutput(
		c.App.Writer,
		output,
		execution,
		[]interface{}{"SERVER", "IP", "STATUS", "RETURN CODE", "DURATION"},
		func(table *uitable.Table) {
			for _, result := range execution.ServerResults {
				table.AddRow(
					result.ServerName,
					result.IP,
					result.Status,
					result.ReturnCode,
					orDefault(result.Duration, "--"),
				)
			}
		},
	); err != nil {
		return err
	}

	if output == "table" {
		for _, result := range execution.ServerResults {
			if result.ErrorMessage != "" {
				fmt.Fprintf(
					c.App.Writer,
					"\n%s: %s\n",
					result.IP,
					result.ErrorMessage,
				)
			}
		}
	}

	return nil
}
