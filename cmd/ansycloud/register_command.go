package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ansycloud/console/sdk/authn"
	"github.com/urfave/cli/v2"
)

func newRegisterCommand() *cli.Command {
	return &cli.Command{
		Name:   "register",
		Usage:  "Create a new AnsyCloud account",
		Action: register,
	}
}

func register(c *cli.Context) error {
	address, err := getAPIAddress(c)
	if err != nil {
		return err
	}

	// Passwords typed interactively are confirmed by typing them again.
	promptedForPassword := c.String(flagPassword) == ""
	creds, err := getCredentials(c)
	if err != nil {
		return err
	}
	confirmation := creds.Password
	if promptedForPassword {
		confirmation = ""
		if err = survey.AskOne(
			&survey.Password{Message: "Confirm password"},
			&confirmation,
		); err != nil {
			return err
		}
	}

	if err = creds.ValidateForRegistration(confirmation); err != nil {
		return err
	}

	if err = authn.NewRegistrationClient(
		address,
		c.Bool(flagInsecure),
	).Register(c.Context, creds); err != nil {
		return err
	}

	fmt.Fprintf(
		c.App.Writer,
		"Registered %s. You may now log in.\n",
		creds.Username,
	)

	return nil
}
