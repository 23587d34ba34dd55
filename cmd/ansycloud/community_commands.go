package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/urfave/cli/v2"
)

func newCommunityCommand() *cli.Command {
	return &cli.Command{
		Name:  "community",
		Usage: "Browse the community board",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Retrieve all community posts",
				Flags: []cli.Flag{
					cliFlagOutput,
				},
				Action: communityList,
			},
		},
	}
}

func communityList(c *cli.Context) error {
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getClient(c, false)
	if err != nil {
		return err
	}

	posts, err := client.Community().List(c.Context)
	if err != nil {
		return err
	}

	if len(posts.Items) == 0 {
		fmt.Fprintln(c.App.Writer, "No posts found.")
		return nil
	}

	return writeOutput(
		c.App.Writer,
		output,
		posts,
		[]interface{}{"ID", "CATEGORY", "TITLE", "AUTHOR", "LIKES"},
		func(table *uitable.Table) {
			for _, post := range posts.Items {
				table.AddRow(
					post.ID,
					post.Category,
					post.Title,
					post.Author,
					post.Likes,
				)
			}
		},
	)
}
